package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const oakJSON = `{"nombre_comun":"Roble","nombre_cientifico":"Quercus robur","habitat":"Bosques templados","estado_conservacion":"Preocupación menor"}`

func TestClientIdentify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/identify" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"apiKey":"tok","imageUrl":"http://example/img.png"}`, string(body))

		_, _ = w.Write([]byte(oakJSON))
	}))
	defer server.Close()

	client := New(server.URL+"/", server.Client(), zap.NewNop())
	result, err := client.Identify(context.Background(), models.IdentificationRequest{
		Credential: "tok",
		Image:      models.URLImage{URL: "http://example/img.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Roble", result.CommonName)
	assert.Equal(t, "Quercus robur", result.ScientificName)
	assert.Equal(t, "Bosques templados", result.Habitat)
	assert.Equal(t, "Preocupación menor", result.ConservationStatus)
}

func TestClientIdentifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"success":false,"error":"boom"}`, http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrUnexpectedStatus)
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
				assert.Contains(t, statusErr.Body, "boom")
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"nombre_comun":"Roble"}`))
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, models.ErrMalformedResult)
			},
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html></html>`))
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, models.ErrMalformedResult)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := New(server.URL, server.Client(), zap.NewNop())
			_, err := client.Identify(context.Background(), models.IdentificationRequest{
				Credential: "tok",
				Image:      models.Base64Image{Data: "data:image/png;base64,AAAA"},
			})
			tt.check(t, err)
		})
	}
}

func TestClientIdentifyRejectsInvalidRequest(t *testing.T) {
	client := New("http://127.0.0.1:1", nil, zap.NewNop())
	_, err := client.Identify(context.Background(), models.IdentificationRequest{Credential: "tok"})
	require.ErrorIs(t, err, models.ErrMissingImage)
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	var issued atomic.Int32
	expires := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/token", r.URL.Path)
		n := issued.Add(1)
		_ = json.NewEncoder(w).Encode(models.AccessToken{
			Token:     "tok-" + string(rune('0'+n)),
			ExpiresAt: expires,
		})
	}))
	defer server.Close()

	now := expires.Add(-10 * time.Minute)
	source := New(server.URL, server.Client(), zap.NewNop()).TokenSource()
	source.now = func() time.Time { return now }

	ctx := context.Background()
	first, err := source.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	again, err := source.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", again)
	assert.Equal(t, int32(1), issued.Load())

	now = expires.Add(-10 * time.Second)
	renewed, err := source.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", renewed)
	assert.Equal(t, int32(2), issued.Load())
}

func TestTokenSourcePropagatesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, server.Client(), zap.NewNop()).TokenSource().Credential(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"data":{"status":"unhealthy","services":{"recognizer":"unhealthy: not configured"}}}`))
	}))
	defer server.Close()

	report, err := New(server.URL, server.Client(), zap.NewNop()).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "unhealthy", report.Status)
	assert.Equal(t, "unhealthy: not configured", report.Services["recognizer"])
}
