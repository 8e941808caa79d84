package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loopguard/internal/logging"
	"loopguard/internal/sab"
)

// newPreQueueCommand builds the SABnzbd pre-queue hook. The command never
// returns an error and always writes a full stdout response: a broken setup
// must accept the job rather than wedge the host's queue.
func newPreQueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "prequeue",
		Short:       "SABnzbd pre-queue hook: reject duplicate submissions",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			env := sab.ReadEnv()
			accept := func() error { return sab.WriteAccept(cmd.OutOrStdout()) }

			cfg, err := ctx.ensureConfig()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "loopguard: config error, accepting: %v\n", err)
				return accept()
			}

			logger, err := ctx.newRunLogger(cfg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "loopguard: logging error: %v\n", err)
				logger = logging.Discard()
			}

			store, err := ctx.openStore()
			if err != nil {
				logger.Error("history unavailable, accepting", "handler", "prequeue", "error", err)
				return accept()
			}
			defer store.Close()

			decision := ctx.newGuard(cfg, store, logger).PreQueue(cmd.Context(), env)
			if decision.Accept {
				return accept()
			}
			return sab.WriteReject(cmd.OutOrStdout())
		},
	}
}
