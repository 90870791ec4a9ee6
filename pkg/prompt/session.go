package prompt

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/submit"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Session fills a form controller from terminal prompts, section by section,
// and drives its submission.
type Session struct {
	driver      Driver
	engine      *validation.Engine
	theme       Theme
	maxAttempts int
	maxRounds   int
	logger      *zap.Logger
}

// New builds a Session. Without WithDriver it prompts through survey.
func New(options ...Option) *Session {
	s := &Session{
		theme:       DefaultTheme,
		maxAttempts: 3,
		maxRounds:   5,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}
	if s.engine == nil {
		s.engine = validation.New()
	}
	return s
}

// Fill prompts for keys, or for every field when keys is empty. Disabled
// fields are skipped. Each answer is written through the controller and
// checked before moving on.
func (s *Session) Fill(ctx context.Context, c *state.Controller, keys ...string) error {
	if ctx == nil {
		return errors.New("prompt: context is required")
	}
	schema := c.Schema()
	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		wanted[key] = true
	}

	for _, section := range schema.Sections() {
		var pending []model.Field
		for _, key := range section.Fields {
			if len(wanted) > 0 && !wanted[key] {
				continue
			}
			if field, ok := schema.Field(key); ok {
				pending = append(pending, field)
			}
		}
		if len(pending) == 0 {
			continue
		}
		if err := s.driver.Info(ctx, s.theme.SectionPrefix+section.Title); err != nil {
			return err
		}
		if section.Description != "" {
			if err := s.driver.Info(ctx, s.theme.InfoPrefix+section.Description); err != nil {
				return err
			}
		}
		for _, field := range pending {
			if !s.engine.Enabled(schema, c.Values(), field.Key) {
				continue
			}
			if err := s.promptField(ctx, c, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run submits c through h until the backend accepts it. Fields blocked by
// validation or rejected by the backend are asked again; a transport failure
// asks whether to retry with the same answers.
func (s *Session) Run(ctx context.Context, c *state.Controller, h *submit.Handler) (submit.Result, error) {
	for round := 1; round <= s.maxRounds; round++ {
		pending, err := h.Submit(ctx)
		if errors.Is(err, submit.ErrInvalid) {
			if err := s.refill(ctx, c); err != nil {
				return submit.Result{}, err
			}
			continue
		}
		if err != nil {
			return submit.Result{}, err
		}

		res, err := pending.Wait(ctx)
		if err != nil {
			return res, err
		}
		s.logger.Debug("prompt submission resolved",
			zap.String("id", res.ID),
			zap.String("outcome", string(res.Outcome)),
			zap.Int("round", round),
		)

		switch res.Outcome {
		case submit.OutcomeSucceeded:
			return res, nil
		case submit.OutcomeRejected:
			if len(c.Result()) == 0 {
				if err := s.report(ctx, c); err != nil {
					return res, err
				}
				return res, fmt.Errorf("%w: %s", ErrGaveUp, strings.Join(c.Snapshot().FormErrors, "; "))
			}
			if err := s.refill(ctx, c); err != nil {
				return res, err
			}
		case submit.OutcomeFailed:
			if err := s.driver.Info(ctx, s.theme.ErrorPrefix+res.Err.Error()); err != nil {
				return res, err
			}
			retry, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Retry submission?", Default: true})
			if err != nil {
				return res, err
			}
			if !retry {
				return res, fmt.Errorf("%w: %w", ErrGaveUp, res.Err)
			}
		default:
			return res, res.Err
		}
	}
	return submit.Result{}, ErrGaveUp
}

// refill reports the current issues and asks again for the failing fields.
func (s *Session) refill(ctx context.Context, c *state.Controller) error {
	if err := s.report(ctx, c); err != nil {
		return err
	}
	return s.Fill(ctx, c, c.Result().Keys()...)
}

func (s *Session) promptField(ctx context.Context, c *state.Controller, field model.Field) error {
	for attempt := 1; ; attempt++ {
		value, err := s.ask(ctx, field, c.Values()[field.Key])
		if err != nil {
			return err
		}
		if err := c.Change(field.Key, value); err != nil {
			return fmt.Errorf("prompt: %s: %w", field.Key, err)
		}
		if err := c.Blur(field.Key); err != nil {
			return fmt.Errorf("prompt: %s: %w", field.Key, err)
		}

		issue, failed := s.engine.ValidateField(c.Schema(), c.Values(), field.Key)
		if !failed {
			return nil
		}
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+issue.Message); err != nil {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Key)
		}
	}
}

func (s *Session) ask(ctx context.Context, field model.Field, current any) (any, error) {
	message := field.Label
	if field.Required {
		message += " *"
	}
	help := field.Description

	switch field.Kind {
	case model.FieldKindBoolean:
		on, _ := current.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: on, Help: help})
	case model.FieldKindEnum:
		options := field.Options
		if !field.Required {
			options = append([]string{""}, options...)
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, model.Stringify(current)),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return "", nil
		}
		return options[idx], nil
	case model.FieldKindPassword:
		return s.driver.Password(ctx, InputConfig{Message: message, Help: help})
	case model.FieldKindTextArea:
		return s.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: model.Stringify(current), Help: help})
	case model.FieldKindFile:
		path, err := s.driver.Input(ctx, InputConfig{Message: message + " (path)", Help: help})
		if err != nil {
			return nil, err
		}
		return fileHandle(path), nil
	default:
		return s.driver.Input(ctx, InputConfig{Message: message, Default: model.Stringify(current), Help: help})
	}
}

func (s *Session) report(ctx context.Context, c *state.Controller) error {
	snap := c.Snapshot()
	for _, msg := range snap.FormErrors {
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	schema := c.Schema()
	for _, key := range schema.Keys() {
		issue, ok := snap.Result[key]
		if !ok {
			continue
		}
		field, _ := schema.Field(key)
		if err := s.driver.Info(ctx, fmt.Sprintf("%s%s: %s", s.theme.ErrorPrefix, field.Label, issue.Message)); err != nil {
			return err
		}
	}
	return nil
}

// fileHandle describes a local file. A missing file keeps its name so the
// validator reports the type or size problem instead of a required error.
func fileHandle(path string) model.FileHandle {
	path = strings.TrimSpace(path)
	if path == "" {
		return model.FileHandle{}
	}
	handle := model.FileHandle{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Ref:         path,
	}
	if info, err := os.Stat(path); err == nil {
		handle.Size = info.Size()
	}
	return handle
}
