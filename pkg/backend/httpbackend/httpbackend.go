// Package httpbackend sends submissions to a JSON HTTP backend using the
// hertz client.
package httpbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/submit"
)

// HeaderIdempotencyKey carries the submission id so retries of the same
// submission can be recognised by the server.
const HeaderIdempotencyKey = "Idempotency-Key"

var ErrBaseURLMissing = errors.New("httpbackend: base url is required")

// Doer performs one HTTP exchange. *client.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error
}

// Option configures a Backend.
type Option func(*Backend)

// WithDoer replaces the hertz client.
func WithDoer(doer Doer) Option {
	return func(b *Backend) {
		if doer != nil {
			b.doer = doer
		}
	}
}

// WithDialTimeout sets the dial timeout of the default client.
func WithDialTimeout(d time.Duration) Option {
	return func(b *Backend) {
		b.dialTimeout = d
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(b *Backend) {
		if b.headers == nil {
			b.headers = make(map[string]string)
		}
		b.headers[key] = value
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Backend posts each submission to {base}/{purpose}.
type Backend struct {
	base        string
	doer        Doer
	dialTimeout time.Duration
	headers     map[string]string
	logger      *zap.Logger
}

// New builds a Backend for base.
func New(base string, options ...Option) (*Backend, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, ErrBaseURLMissing
	}
	b := &Backend{
		base:        base,
		dialTimeout: 5 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.doer == nil {
		c, err := client.NewClient(client.WithDialTimeout(b.dialTimeout))
		if err != nil {
			return nil, fmt.Errorf("httpbackend: client: %w", err)
		}
		b.doer = c
	}
	return b, nil
}

// URL returns the endpoint used for purpose.
func (b *Backend) URL(purpose model.Purpose) string {
	return b.base + "/" + string(purpose)
}

// Submit posts req.Payload. 2xx is an acceptance, 400/409/422 a rejection
// with field errors, anything else a transport failure.
func (b *Backend) Submit(ctx context.Context, req submit.Request) (submit.Response, error) {
	if err := ctx.Err(); err != nil {
		return submit.Response{}, fmt.Errorf("%w: %w", submit.ErrTransport, err)
	}

	httpReq := protocol.AcquireRequest()
	httpResp := protocol.AcquireResponse()

	httpReq.SetMethod(consts.MethodPost)
	httpReq.SetRequestURI(b.URL(req.Purpose))
	httpReq.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
	httpReq.Header.Set(HeaderIdempotencyKey, req.ID)
	for key, value := range b.headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.SetBody(req.Payload)

	done := make(chan error, 1)
	go func() {
		done <- b.doer.Do(ctx, httpReq, httpResp)
	}()

	select {
	case <-ctx.Done():
		// The exchange still owns both objects; they are left to the GC.
		return submit.Response{}, fmt.Errorf("%w: %w", submit.ErrTransport, ctx.Err())
	case err := <-done:
		defer protocol.ReleaseRequest(httpReq)
		defer protocol.ReleaseResponse(httpResp)
		if err != nil {
			b.logger.Warn("backend request failed", zap.String("id", req.ID), zap.Error(err))
			return submit.Response{}, fmt.Errorf("%w: %w", submit.ErrTransport, err)
		}
		return b.decode(req, httpResp.StatusCode(), httpResp.Body())
	}
}

type reply struct {
	Message    string              `json:"message"`
	Errors     map[string]messages `json:"errors"`
	FormErrors messages            `json:"formErrors"`
	Record     model.Record        `json:"record"`
}

// messages accepts a single string or a list of strings.
type messages []string

func (m *messages) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*m = messages{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = many
	return nil
}

func (b *Backend) decode(req submit.Request, status int, body []byte) (submit.Response, error) {
	logger := b.logger.With(zap.String("id", req.ID), zap.Int("status", status))

	var parsed reply
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err != nil && rejection(status) {
			return submit.Response{}, fmt.Errorf("%w: decode %d reply: %w", submit.ErrTransport, status, err)
		}
	}

	switch {
	case status >= 200 && status < 300:
		logger.Debug("backend accepted submission")
		return submit.Response{OK: true, Message: parsed.Message, Seed: parsed.Record}, nil
	case rejection(status):
		fields := make(map[string][]string, len(parsed.Errors))
		for path, msgs := range parsed.Errors {
			fields[path] = []string(msgs)
		}
		formErrors := []string(parsed.FormErrors)
		if len(fields) == 0 && len(formErrors) == 0 && parsed.Message != "" {
			formErrors = []string{parsed.Message}
		}
		logger.Debug("backend rejected submission", zap.Int("field_errors", len(fields)))
		return submit.Response{
			FieldErrors: fields,
			FormErrors:  formErrors,
			Message:     parsed.Message,
		}, nil
	default:
		return submit.Response{}, fmt.Errorf("%w: unexpected status %d", submit.ErrTransport, status)
	}
}

func rejection(status int) bool {
	switch status {
	case consts.StatusBadRequest, consts.StatusConflict, consts.StatusUnprocessableEntity:
		return true
	default:
		return false
	}
}
