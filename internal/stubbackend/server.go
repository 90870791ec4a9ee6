// Package stubbackend is an in-memory development backend for the
// recruitment forms. It speaks the same JSON contract as httpbackend.
package stubbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formstate/pkg/model"
)

// HeaderAccount names the account a password change applies to.
const HeaderAccount = "X-Account-Email"

var ErrAccountExists = errors.New("stubbackend: account already exists")

// uniqueFields lists, per purpose, the payload keys that must not repeat
// across registrations, with the backend path used when reporting them.
var uniqueFields = map[model.Purpose][][2]string{
	model.PurposeCandidateRegistration:  {{"email", "email"}},
	model.PurposeEmployerRegistration:   {{"email", "email"}, {"panNumber", "pan_number"}, {"gstin", "gstin"}},
	model.PurposeCollegeRegistration:    {{"email", "email"}, {"collegeCode", "college_code"}},
	model.PurposeExamCenterRegistration: {{"email", "email"}, {"centerCode", "center_code"}},
}

var secretKeys = []string{"password", "confirmPassword", "currentPassword", "newPassword"}

// Option configures a Server.
type Option func(*Server)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Server) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type account struct {
	purpose model.Purpose
	hash    []byte
	profile model.Record
}

type stored struct {
	status int
	body   []byte
}

// Server holds registered accounts in memory.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account
	unique   map[string]string
	replies  map[string]stored
	cost     int
	logger   *zap.Logger
}

// New builds an empty Server.
func New(options ...Option) *Server {
	s := &Server{
		accounts: make(map[string]*account),
		unique:   make(map[string]string),
		replies:  make(map[string]stored),
		cost:     bcrypt.DefaultCost,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register mounts the endpoints on r.
func (s *Server) Register(r route.IRoutes) {
	r.GET("/health", func(_ context.Context, c *app.RequestContext) {
		s.write(c, consts.StatusOK, map[string]any{"status": "ok"})
	})
	for purpose := range uniqueFields {
		r.POST("/"+string(purpose), s.idempotent(s.registration(purpose)))
	}
	r.POST("/"+string(model.PurposeProfileUpdate), s.idempotent(s.profileUpdate))
	r.POST("/"+string(model.PurposePasswordChange), s.idempotent(s.passwordChange))
	r.POST("/"+string(model.PurposeCampaign), s.idempotent(s.campaign))
}

// Hertz returns a hertz server listening on addr with the endpoints mounted.
func (s *Server) Hertz(addr string) *server.Hertz {
	h := server.Default(server.WithHostPorts(addr))
	s.Register(h)
	return h
}

// AddAccount registers an account directly.
func (s *Server) AddAccount(email, password string, profile model.Record) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("stubbackend: hash password: %w", err)
	}
	key := normalize(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, email)
	}
	s.accounts[key] = &account{purpose: model.PurposeCandidateRegistration, hash: hash, profile: withoutSecrets(profile)}
	return nil
}

// Authenticate reports whether password matches the account.
func (s *Server) Authenticate(email, password string) bool {
	s.mu.Lock()
	acct, ok := s.accounts[normalize(email)]
	s.mu.Unlock()
	if !ok || acct.hash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) == nil
}

// Accounts returns the number of stored accounts.
func (s *Server) Accounts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// Profile returns a copy of the stored profile.
func (s *Server) Profile(email string) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[normalize(email)]
	if !ok {
		return nil, false
	}
	return acct.profile.Clone(), true
}

type handler func(ctx context.Context, c *app.RequestContext, body model.Record) (int, any)

// idempotent decodes the body and replays the stored reply for a repeated
// Idempotency-Key.
func (s *Server) idempotent(next handler) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		key := strings.TrimSpace(string(c.GetHeader("Idempotency-Key")))
		if key != "" {
			s.mu.Lock()
			prior, seen := s.replies[key]
			s.mu.Unlock()
			if seen {
				s.logger.Debug("replaying stored reply", zap.String("key", key))
				c.Data(prior.status, consts.MIMEApplicationJSONUTF8, prior.body)
				return
			}
		}

		var body model.Record
		if err := json.Unmarshal(c.Request.Body(), &body); err != nil || body == nil {
			s.write(c, consts.StatusBadRequest, map[string]any{"message": "malformed payload"})
			return
		}

		status, reply := next(ctx, c, body)
		data := s.write(c, status, reply)
		if key != "" && data != nil {
			s.mu.Lock()
			s.replies[key] = stored{status: status, body: data}
			s.mu.Unlock()
		}
	}
}

func (s *Server) registration(purpose model.Purpose) handler {
	return func(_ context.Context, _ *app.RequestContext, body model.Record) (int, any) {
		password := body.String("password")
		if password == "" && purpose != model.PurposeExamCenterRegistration {
			return consts.StatusUnprocessableEntity, fieldErrors("password", "is required")
		}
		var hash []byte
		if password != "" {
			var err error
			if hash, err = bcrypt.GenerateFromPassword([]byte(password), s.cost); err != nil {
				return consts.StatusInternalServerError, map[string]any{"message": "could not store password"}
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		errs := make(map[string][]string)
		for _, pair := range uniqueFields[purpose] {
			value := normalize(body.String(pair[0]))
			if value == "" {
				continue
			}
			if pair[0] == "email" {
				if _, exists := s.accounts[value]; exists {
					errs[pair[1]] = append(errs[pair[1]], "is already registered")
				}
				continue
			}
			if _, exists := s.unique[uniqueKey(purpose, pair[0], value)]; exists {
				errs[pair[1]] = append(errs[pair[1]], "is already registered")
			}
		}
		if len(errs) > 0 {
			s.logger.Info("registration rejected", zap.String("purpose", string(purpose)), zap.Int("fields", len(errs)))
			return consts.StatusUnprocessableEntity, map[string]any{"errors": errs}
		}

		email := normalize(body.String("email"))
		s.accounts[email] = &account{purpose: purpose, hash: hash, profile: withoutSecrets(body)}
		for _, pair := range uniqueFields[purpose] {
			if pair[0] == "email" {
				continue
			}
			if value := normalize(body.String(pair[0])); value != "" {
				s.unique[uniqueKey(purpose, pair[0], value)] = email
			}
		}
		s.logger.Info("registration stored", zap.String("purpose", string(purpose)))
		return consts.StatusCreated, map[string]any{"message": "Registration received"}
	}
}

func (s *Server) profileUpdate(_ context.Context, _ *app.RequestContext, body model.Record) (int, any) {
	email := normalize(body.String("email"))
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return consts.StatusUnprocessableEntity, fieldErrors("email", "no account uses this email")
	}
	acct.profile = acct.profile.Merge(withoutSecrets(body))
	return consts.StatusOK, map[string]any{"message": "Profile updated", "record": acct.profile}
}

func (s *Server) passwordChange(_ context.Context, c *app.RequestContext, body model.Record) (int, any) {
	email := normalize(string(c.GetHeader(HeaderAccount)))
	if email == "" {
		return consts.StatusBadRequest, map[string]any{"message": "Sign in again to change your password"}
	}

	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || acct.hash == nil {
		return consts.StatusBadRequest, map[string]any{"message": "Sign in again to change your password"}
	}

	if bcrypt.CompareHashAndPassword(acct.hash, []byte(body.String("currentPassword"))) != nil {
		return consts.StatusUnprocessableEntity, fieldErrors("current_password", "is incorrect")
	}
	next := body.String("newPassword")
	if next == body.String("currentPassword") {
		return consts.StatusUnprocessableEntity, fieldErrors("new_password", "must differ from the current password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return consts.StatusInternalServerError, map[string]any{"message": "could not store password"}
	}

	s.mu.Lock()
	acct.hash = hash
	s.mu.Unlock()
	return consts.StatusOK, map[string]any{"message": "Password changed"}
}

func (s *Server) campaign(_ context.Context, _ *app.RequestContext, body model.Record) (int, any) {
	if strings.TrimSpace(body.String("name")) == "" {
		return consts.StatusUnprocessableEntity, fieldErrors("name", "is required")
	}
	return consts.StatusCreated, map[string]any{"message": "Campaign scheduled"}
}

func (s *Server) write(c *app.RequestContext, status int, reply any) []byte {
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("encode reply", zap.Error(err))
		c.SetStatusCode(consts.StatusInternalServerError)
		return nil
	}
	c.Data(status, consts.MIMEApplicationJSONUTF8, data)
	return data
}

func fieldErrors(path, msg string) map[string]any {
	return map[string]any{"errors": map[string][]string{path: {msg}}}
}

func withoutSecrets(record model.Record) model.Record {
	out := record.Clone()
	for _, key := range secretKeys {
		delete(out, key)
	}
	return out
}

func uniqueKey(purpose model.Purpose, field, value string) string {
	return string(purpose) + "/" + field + "/" + value
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
