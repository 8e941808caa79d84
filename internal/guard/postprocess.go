package guard

import (
	"context"
	"fmt"

	"loopguard/internal/history"
	"loopguard/internal/match"
	"loopguard/internal/notify"
	"loopguard/internal/sab"
)

// PostProcess reconciles a completion event with its pending history entry
// and finalizes the entry's status. The handler never fails the host's
// post-processing: every error path logs and returns.
func (g *Guard) PostProcess(ctx context.Context, env sab.Env) {
	logger := g.logger.With("handler", "postprocess", "job_id", env.JobID, "name", env.Name())

	if g.cfg.CategoryIgnored(env.Category) {
		logger.Info("category exempt from duplicate detection, skipping", "category", env.Category)
		return
	}

	status := history.StatusFailed
	if env.Succeeded() {
		status = history.StatusSuccess
	}
	now := g.now()

	event := match.Completion{
		DisplayName:  env.FinalName,
		Filename:     env.Filename,
		DuplicateKey: env.DuplicateKey,
		Category:     env.Category,
		JobID:        env.JobID,
		CompletedAt:  now,
	}

	var (
		matched match.Match
		found   bool
	)
	err := g.store.Transact(ctx, func(tx *history.Tx) error {
		pending, findErr := tx.FindPending(ctx, now)
		if findErr != nil {
			return findErr
		}
		matched, found = match.Reconcile(event, pending)
		if !found {
			return nil
		}
		return tx.UpdateStatus(ctx, matched.Entry.ID, status, now)
	})
	if err != nil {
		logger.Error("history unavailable, completion not recorded", "error", err)
		return
	}
	if !found {
		// The entry may have expired mid-download or the job was queued
		// before this tool was installed. Nothing to finalize.
		logger.Error("no pending entry matched completion", "status", status)
		return
	}

	if matched.Ambiguous {
		logger.Info("completion matched multiple pending entries, using most recent", "method", matched.Method)
	}
	logger.Info("completion reconciled",
		"method", matched.Method,
		"entry_id", matched.Entry.ID,
		"entry_name", matched.Entry.DisplayName,
		"status", status,
	)

	if status == history.StatusSuccess && g.cfg.NotifyOnComplete {
		g.send(ctx, logger, notify.Event{
			Title:   "Loopguard - Download Complete",
			Message: fmt.Sprintf("Completed: %s", env.Name()),
		})
	}
}
