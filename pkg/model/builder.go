package model

import "github.com/goliatone/go-formstate/internal/model"

// Builder assembles immutable schemas.
type Builder = model.Builder

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler func(string) string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// NewBuilder returns a Builder for the schema id backed by the internal
// implementation.
func NewBuilder(id string, options ...BuilderOption) *Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	internalOpts := model.Options{}
	if cfg.labeler != nil {
		internalOpts.Labeler = cfg.labeler
	}

	return model.NewBuilder(id, internalOpts)
}
