package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/phambaophuc/ecovision/pkg/utils"
	"go.uber.org/zap"
)

// Service performs the identification round trip.
type Service interface {
	Identify(ctx context.Context, req models.IdentificationRequest) (models.IdentificationResult, error)
}

// CredentialSource supplies the access token sent with each request.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// Observer is called with every state the session enters, in order. It runs
// without the session lock held, so it may read or change the session. A
// Submit made from an observer is delivered after the current state.
type Observer func(RequestState)

type Option func(*Session)

// WithTimeout bounds each submit so a hung call ends in StatusFailed.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

type Session struct {
	service   Service
	creds     CredentialSource
	logger    *zap.Logger
	timeout   time.Duration
	observers []Observer

	mu     sync.Mutex
	input  Input
	state  RequestState
	gen    uint64
	cancel context.CancelFunc

	// queue holds states not yet delivered to observers. One goroutine at a
	// time drains it, flagged by delivering.
	queue      []RequestState
	delivering bool
}

func New(service Service, creds CredentialSource, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		service: service,
		creds:   creds,
		logger:  logger,
		state:   Idle(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// === INPUT SELECTION ===

// SelectFile makes f the current input and drops any URL.
func (s *Session) SelectFile(f FileInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = f
}

// SelectFilePath reads path and selects it. An empty path is a no-op, like
// closing a file picker without choosing anything. On a read error the
// current input is kept.
func (s *Session) SelectFilePath(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image file: %w", err)
	}
	s.SelectFile(FileInput{
		Name:     path,
		Data:     data,
		MIMEHint: utils.DetectContentType(data),
	})
	return nil
}

// SetURL makes url the current input and drops any file. A blank url
// clears the selection.
func (s *Session) SetURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if url = strings.TrimSpace(url); url == "" {
		s.input = nil
		return
	}
	s.input = URLInput{URL: url}
}

// CurrentInput returns the selection, or nil when nothing is selected.
func (s *Session) CurrentInput() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// CanSubmit reports whether Submit would start a request.
func (s *Session) CanSubmit() bool {
	return s.CurrentInput() != nil
}

func (s *Session) State() RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// === SUBMIT ===

// Pending tracks one accepted submit.
type Pending struct {
	done  chan struct{}
	state RequestState
}

// Done is closed once the submit has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// State is the outcome of this submit. Only valid after Done is closed.
// A superseded submit reports StatusFailed wrapping ErrSuperseded.
func (p *Pending) State() RequestState { return p.state }

// Wait blocks until the submit finishes or ctx ends.
func (p *Pending) Wait(ctx context.Context) (RequestState, error) {
	select {
	case <-p.done:
		return p.state, nil
	case <-ctx.Done():
		return RequestState{}, ctx.Err()
	}
}

// Submit starts an identification for the current input. With nothing
// selected it returns nil and leaves the state untouched. Otherwise the
// session is Loading when Submit returns.
func (s *Session) Submit(ctx context.Context) *Pending {
	s.mu.Lock()
	input := s.input
	if input == nil {
		s.mu.Unlock()
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen

	var reqCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel

	s.state = Loading()
	drain := s.enqueueLocked(s.state)
	s.mu.Unlock()
	if drain {
		s.deliver()
	}

	p := &Pending{done: make(chan struct{})}
	go s.run(reqCtx, cancel, gen, input, p)
	return p
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, input Input, p *Pending) {
	defer close(p.done)
	defer cancel()

	final := s.identify(ctx, input)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("Dropping superseded identification", zap.Uint64("generation", gen))
		p.state = Failed(ErrSuperseded)
		return
	}
	s.state = final
	s.cancel = nil
	drain := s.enqueueLocked(final)
	s.mu.Unlock()
	if drain {
		s.deliver()
	}

	if final.Status == StatusFailed {
		s.logger.Error("Identification failed",
			zap.String("input", input.Kind()),
			zap.Error(final.Err),
		)
	}
	p.state = final
}

// identify performs the suspension points of a submit in order: encoding
// the file, fetching a credential and the network call.
func (s *Session) identify(ctx context.Context, input Input) RequestState {
	var image models.ImageRef
	switch in := input.(type) {
	case FileInput:
		dataURL, err := encodeFile(in)
		if err != nil {
			return Failed(err)
		}
		image = models.Base64Image{Data: dataURL}
	case URLInput:
		image = models.URLImage{URL: in.URL}
	default:
		return Failed(fmt.Errorf("%w: unsupported input %T", ErrDecodeFailure, input))
	}

	credential, err := s.creds.Credential(ctx)
	if err != nil {
		return Failed(fmt.Errorf("%w: obtain access token: %w", ErrNetworkFailure, err))
	}

	result, err := s.service.Identify(ctx, models.IdentificationRequest{
		Credential: credential,
		Image:      image,
	})
	if err != nil {
		return Failed(classify(err))
	}
	return Succeeded(result)
}

// enqueueLocked records state for the observers and reports whether the
// caller has to drain the queue. Callers hold mu.
func (s *Session) enqueueLocked(state RequestState) bool {
	if len(s.observers) == 0 {
		return false
	}
	s.queue = append(s.queue, state)
	if s.delivering {
		return false
	}
	s.delivering = true
	return true
}

// deliver hands queued states to the observers until the queue is empty.
// mu is never held while an observer runs.
func (s *Session) deliver() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		for _, o := range s.observers {
			o(next)
		}
	}
}

// encodeFile renders the file as a data URL, sniffing the MIME type when no
// hint was given.
func encodeFile(f FileInput) (string, error) {
	if len(f.Data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrDecodeFailure, displayName(f))
	}
	mimeType := strings.TrimSpace(f.MIMEHint)
	if mimeType == "" {
		mimeType = utils.DetectContentType(f.Data)
	}
	return utils.MakeDataURL(mimeType, f.Data), nil
}

func displayName(f FileInput) string {
	if f.Name == "" {
		return "file"
	}
	return f.Name
}

func classify(err error) error {
	if errors.Is(err, models.ErrMalformedResult) {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
}
