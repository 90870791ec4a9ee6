package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/stubbackend"
	"github.com/goliatone/go-formstate/pkg/campaign"
)

func (a *app) stubBackendCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "stub-backend",
		Short: "Serve the in-memory development backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stub := stubbackend.New(stubbackend.WithLogger(a.logger))
			h := stub.Hertz(addr)
			a.logger.Info("stub backend listening", zap.String("addr", addr))
			h.Spin()
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8888", "listen address")
	return cmd
}

func (a *app) campaignStatsCmd() *cobra.Command {
	var stats campaign.Stats
	cmd := &cobra.Command{
		Use:   "campaign-stats",
		Short: "Compute campaign open and click rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "open rate: %.2f%%\n", stats.OpenRate())
			fmt.Fprintf(out, "click rate: %.2f%%\n", stats.ClickRate())
			fmt.Fprintf(out, "click-through rate: %.2f%%\n", stats.ClickThroughRate())
			return nil
		},
	}
	cmd.Flags().IntVar(&stats.Sent, "sent", 0, "messages sent")
	cmd.Flags().IntVar(&stats.Opened, "opened", 0, "messages opened")
	cmd.Flags().IntVar(&stats.Clicked, "clicked", 0, "messages clicked")
	return cmd
}
