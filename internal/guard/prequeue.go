package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loopguard/internal/arr"
	"loopguard/internal/history"
	"loopguard/internal/match"
	"loopguard/internal/notify"
	"loopguard/internal/sab"
)

// PreQueueDecision is the outcome of a pre-queue evaluation.
type PreQueueDecision struct {
	Accept bool
	// Reason is a short label for logs and tests, never shown to the host.
	Reason string
}

// PreQueue evaluates a submitted job against active history. Accepted jobs
// are recorded as pending inside the same critical section that read the
// history, so two concurrent submissions of one release cannot both pass.
func (g *Guard) PreQueue(ctx context.Context, env sab.Env) PreQueueDecision {
	logger := g.logger.With("handler", "prequeue", "job_id", env.JobID)

	name := env.Name()
	if name == "" {
		logger.Error("job has no name, accepting")
		return PreQueueDecision{Accept: true, Reason: "missing name"}
	}
	logger = logger.With("name", name)

	if g.cfg.CategoryIgnored(env.Category) {
		logger.Info("category exempt from duplicate detection, accepting", "category", env.Category)
		return PreQueueDecision{Accept: true, Reason: "category ignored"}
	}

	candidate := match.Candidate{
		DisplayName:  name,
		DuplicateKey: env.DuplicateKey,
		Category:     env.Category,
		JobID:        env.JobID,
	}
	identity := match.Identity(candidate, g.cfg.UseDuplicateKey)
	now := g.now()

	var decision match.Decision
	err := g.store.Transact(ctx, func(tx *history.Tx) error {
		entries, findErr := tx.FindActive(ctx, identity, now)
		if findErr != nil {
			return findErr
		}
		decision = match.Evaluate(entries)
		if decision.Block {
			return nil
		}
		return tx.Insert(ctx, &history.Entry{
			Identity:       identity,
			DisplayName:    name,
			NormalizedName: match.NormalizeName(name),
			DuplicateKey:   env.DuplicateKey,
			Category:       env.Category,
			JobID:          env.JobID,
		}, now)
	})
	if err != nil {
		logger.Error("history unavailable, accepting", "error", err)
		return PreQueueDecision{Accept: true, Reason: "history unavailable"}
	}

	if decision.Ambiguous {
		logger.Info("identity matched multiple active entries, using most recent", "identity", identity)
	}

	if !decision.Block {
		if decision.Retry {
			logger.Info("retry after failed attempt, accepting", "identity", identity)
			return PreQueueDecision{Accept: true, Reason: "retry"}
		}
		logger.Info("no active history for identity, accepting", "identity", identity)
		return PreQueueDecision{Accept: true, Reason: "new"}
	}

	matched := decision.Matched
	logger.Info("duplicate submission rejected",
		"identity", identity,
		"matched_name", matched.DisplayName,
		"matched_status", matched.Status,
		"matched_age", matched.Age(now).Round(0).String(),
	)

	// A successful earlier download means the release likely still sits in
	// the indexer manager's queue; remove and blocklist it there so it is
	// not grabbed again. Pending entries stay untouched, the first attempt
	// is still running.
	blockedLine := "Refused at the download host"
	if matched.Status == history.StatusSuccess && g.blocklist != nil {
		kind, blockErr := g.blocklist.Blocklist(ctx, env.Category, name, env.JobID)
		switch {
		case errors.Is(blockErr, arr.ErrNoInstance):
			logger.Debug("no indexer instance for category, skipping blocklist", "category", env.Category)
		case blockErr != nil:
			logger.Error("blocklist request failed", "error", blockErr)
		default:
			logger.Info("release blocklisted on indexer", "instance", kind)
			blockedLine = "Removed and blocklisted on " + kind
		}
	}

	var message strings.Builder
	fmt.Fprintf(&message, "Download: %s\n", name)
	if env.Category != "" {
		fmt.Fprintf(&message, "Category: %s\n", env.Category)
	}
	if env.DuplicateKey != "" {
		fmt.Fprintf(&message, "Duplicate key: %s\n", env.DuplicateKey)
	}
	fmt.Fprintf(&message, "Earlier attempt: %s (%s), first seen %s ago\n", matched.DisplayName, matched.Status, matched.Age(now).Round(time.Second))
	fmt.Fprintf(&message, "%s\nDetection window: %s", blockedLine, g.cfg.TimeWindow())

	g.send(ctx, logger, notify.Event{
		Title:   "Loopguard - Duplicate Blocked",
		Message: message.String(),
		Raw: map[string]string{
			"loopguard_identity":       identity,
			"loopguard_matched_status": string(matched.Status),
			"loopguard_first_seen":     matched.FirstSeenAt.UTC().Format(time.RFC3339),
			"loopguard_action":         blockedLine,
		},
	})
	return PreQueueDecision{Accept: false, Reason: "duplicate"}
}
