package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loopguard/internal/notify"
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
			logger, err := ctx.newRunLogger(cfg)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			notifier := notify.New(cfg, logger)
			if notifier.Name() == "noop" {
				fmt.Fprintln(cmd.OutOrStdout(), "No notifier configured; nothing sent")
				return nil
			}

			err = notifier.Send(cmd.Context(), notify.Event{
				Title:   "Loopguard - Test",
				Message: "Notification system test",
			})
			if err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent via %s\n", notifier.Name())
			return nil
		},
	}
}
