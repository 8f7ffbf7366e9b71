package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/logging"
	"reelsmith/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" && strings.TrimSpace(cfg.Notifications.AMQPURL) == "" {
				fmt.Fprintln(out, "Notifications not configured (set notifications.ntfy_topic or notifications.amqp_url)")
				return nil
			}

			notifier := notifications.NewService(cfg, logging.NewNop())
			defer notifier.Close()

			sendCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := notifier.Publish(sendCtx, notifications.TestMessage()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
