package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loopguard/internal/logging"
	"loopguard/internal/sab"
)

// newPostProcessCommand builds the SABnzbd post-processing hook. Like the
// pre-queue hook it never fails: a reconciliation problem is logged, not
// surfaced as a script error that would mark the job as failed in the host.
func newPostProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "postprocess",
		Short:       "SABnzbd post-processing hook: record completion status",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			env := sab.ReadEnv()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "loopguard: config error, skipping: %v\n", err)
				return nil
			}

			logger, err := ctx.newRunLogger(cfg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "loopguard: logging error: %v\n", err)
				logger = logging.Discard()
			}

			store, err := ctx.openStore()
			if err != nil {
				logger.Error("history unavailable, completion not recorded", "handler", "postprocess", "error", err)
				return nil
			}
			defer store.Close()

			ctx.newGuard(cfg, store, logger).PostProcess(cmd.Context(), env)
			return nil
		},
	}
}
