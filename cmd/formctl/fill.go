package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/stubbackend"
	"github.com/goliatone/go-formstate/pkg/backend/httpbackend"
	"github.com/goliatone/go-formstate/pkg/notify"
	"github.com/goliatone/go-formstate/pkg/prompt"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/submit"
)

const stubBaseURL = "http://stub.local"

// backend returns the configured HTTP backend, or the in-process stub when
// no URL is set.
func (a *app) backend() (*httpbackend.Backend, error) {
	opts := []httpbackend.Option{
		httpbackend.WithLogger(a.logger),
		httpbackend.WithDialTimeout(a.cfg.Backend.DialTimeout),
	}
	for key, value := range a.cfg.Backend.Headers {
		opts = append(opts, httpbackend.WithHeader(key, value))
	}
	base := a.cfg.Backend.URL
	if base == "" {
		stub := stubbackend.New(stubbackend.WithLogger(a.logger))
		opts = append(opts, httpbackend.WithDoer(stub.InProcess()))
		base = stubBaseURL
		a.logger.Info("using in-process stub backend")
	}
	return httpbackend.New(base, opts...)
}

func (a *app) fillCmd() *cobra.Command {
	var (
		formID   string
		seedPath string
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a form interactively and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := a.resolveForm(formID)
			if err != nil {
				return err
			}
			seed, err := readRecord(seedPath)
			if err != nil {
				return err
			}
			backend, err := a.backend()
			if err != nil {
				return err
			}

			engine := a.engine()
			controller := state.New(schema, seed,
				state.WithMode(a.cfg.Mode()),
				state.WithEngine(engine),
				state.WithLogger(a.logger),
			)

			queue := notify.NewQueue()
			defer queue.Close()
			handler := submit.New(controller, backend,
				submit.WithNotifier(notify.Fanout(queue, notify.NewLogNotifier(a.logger))),
				submit.WithLogger(a.logger),
				submit.WithTimeout(a.cfg.Backend.Timeout),
			)
			defer handler.Close()

			opts := []prompt.Option{prompt.WithEngine(engine), prompt.WithLogger(a.logger)}
			if a.driver != nil {
				opts = append(opts, prompt.WithDriver(a.driver))
			}
			session := prompt.New(opts...)

			if err := session.Fill(ctx, controller); err != nil {
				return err
			}
			res, runErr := session.Run(ctx, controller, handler)

			out := cmd.OutOrStdout()
			for _, msg := range queue.Drain() {
				fmt.Fprintf(out, "[%s] %s: %s\n", msg.Severity, msg.Title, msg.Description)
			}
			if runErr != nil {
				return runErr
			}
			a.logger.Info("form submitted", zap.String("form", formID), zap.String("id", res.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&formID, "form", "", "form id")
	cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file with initial values")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}
