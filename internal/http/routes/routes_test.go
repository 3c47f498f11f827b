package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/ecovision/internal/http/handlers"
	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/phambaophuc/ecovision/internal/services/events"
	"github.com/phambaophuc/ecovision/internal/services/identifier"
	"github.com/phambaophuc/ecovision/internal/services/processor"
	"github.com/phambaophuc/ecovision/internal/services/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var oak = models.IdentificationResult{
	CommonName:         "Roble",
	ScientificName:     "Quercus robur",
	Habitat:            "Bosques templados",
	ConservationStatus: "Preocupación menor",
}

type fakeIdentifier struct {
	result     models.IdentificationResult
	err        error
	configured bool
	refs       []models.ImageRef
}

func (f *fakeIdentifier) Identify(ctx context.Context, ref models.ImageRef) (models.IdentificationResult, error) {
	f.refs = append(f.refs, ref)
	return f.result, f.err
}

func (f *fakeIdentifier) Configured() bool { return f.configured }

type testServer struct {
	engine     *gin.Engine
	identifier *fakeIdentifier
	tokens     *tokens.MemoryStore
	logs       *observer.ObservedLogs
}

func newTestServer(t *testing.T, ident *fakeIdentifier) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	store := tokens.NewMemoryStore(time.Minute, 0)

	h := handlers.NewIdentifyHandler(ident, store, events.NewLogPublisher(logger), logger)
	return &testServer{
		engine:     NewRouter(h, logger, 1024).SetupRoutes(),
		identifier: ident,
		tokens:     store,
		logs:       logs,
	}
}

func (s *testServer) issueToken(t *testing.T) string {
	t.Helper()
	token, err := s.tokens.Issue(context.Background())
	require.NoError(t, err)
	return token.Token
}

func (s *testServer) do(method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) identify(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(http.MethodPost, "/api/identify", "application/json", []byte(body))
}

func TestIdentifyURLSuccess(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{result: oak, configured: true})
	token := srv.issueToken(t)

	rec := srv.identify(t, fmt.Sprintf(`{"apiKey":%q,"imageUrl":"http://example/img.png"}`, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{
		"nombre_comun":"Roble",
		"nombre_cientifico":"Quercus robur",
		"habitat":"Bosques templados",
		"estado_conservacion":"Preocupación menor"
	}`, rec.Body.String())
	require.Len(t, srv.identifier.refs, 1)
	assert.Equal(t, models.URLImage{URL: "http://example/img.png"}, srv.identifier.refs[0])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	events := srv.logs.FilterMessage("Identification event").All()
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusCompleted, events[0].ContextMap()["status"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), events[0].ContextMap()["event_id"])
}

func TestIdentifyBase64Success(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{result: oak, configured: true})
	token := srv.issueToken(t)

	rec := srv.identify(t, fmt.Sprintf(`{"apiKey":%q,"imageBase64":"data:image/png;base64,iVBORw0KGgo="}`, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, srv.identifier.refs, 1)
	assert.Equal(t, models.Base64Image{Data: "data:image/png;base64,iVBORw0KGgo="}, srv.identifier.refs[0])
}

func TestIdentifyRejectsBadPayloads(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{result: oak, configured: true})
	token := srv.issueToken(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"both images", fmt.Sprintf(`{"apiKey":%q,"imageBase64":"AAAA","imageUrl":"http://x"}`, token), http.StatusBadRequest},
		{"no image", fmt.Sprintf(`{"apiKey":%q}`, token), http.StatusBadRequest},
		{"not json", `nope`, http.StatusBadRequest},
		{"unknown token", `{"apiKey":"forged","imageUrl":"http://x"}`, http.StatusUnauthorized},
		{"missing token", `{"imageUrl":"http://x"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.identify(t, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var resp models.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
	assert.Empty(t, srv.identifier.refs)
}

func TestIdentifyRequiresJSONContentType(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{result: oak, configured: true})

	rec := srv.do(http.MethodPost, "/api/identify", "text/plain", []byte(`{}`))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestIdentifyBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{result: oak, configured: true})
	token := srv.issueToken(t)

	huge := bytes.Repeat([]byte("A"), 64*1024)
	rec := srv.identify(t, fmt.Sprintf(`{"apiKey":%q,"imageBase64":%q}`, token, huge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestIdentifyMapsPipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"recognizer", fmt.Errorf("%w: boom", identifier.ErrRecognition), http.StatusBadGateway},
		{"fetch", fmt.Errorf("%w: status 404", identifier.ErrFetchImage), http.StatusUnprocessableEntity},
		{"unsupported", fmt.Errorf("%w: text/html", processor.ErrUnsupportedType), http.StatusUnprocessableEntity},
		{"not configured", identifier.ErrNotConfigured, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeIdentifier{err: tt.err, configured: true})
			token := srv.issueToken(t)

			rec := srv.identify(t, fmt.Sprintf(`{"apiKey":%q,"imageUrl":"http://example/img.png"}`, token))
			assert.Equal(t, tt.want, rec.Code)

			events := srv.logs.FilterMessage("Identification event").All()
			require.Len(t, events, 1)
			assert.Equal(t, models.StatusFailed, events[0].ContextMap()["status"])
		})
	}
}

func TestIssueToken(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{configured: true})

	rec := srv.do(http.MethodPost, "/api/token", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var token models.AccessToken
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.After(time.Now()))
	require.NoError(t, srv.tokens.Validate(context.Background(), token.Token))
}

func TestIssueTokenWhenStoreFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := tokens.NewMemoryStore(time.Minute, 1)
	h := handlers.NewIdentifyHandler(&fakeIdentifier{configured: true}, store, events.NewLogPublisher(logger), logger)
	srv := &testServer{engine: NewRouter(h, logger, 1024).SetupRoutes(), tokens: store}

	rec := srv.do(http.MethodPost, "/api/token", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, "/api/token", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{configured: true})
	rec := srv.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv = newTestServer(t, &fakeIdentifier{configured: false})
	rec = srv.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{configured: true})

	rec := srv.do(http.MethodOptions, "/api/identify", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, &fakeIdentifier{configured: true})

	rec := srv.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
