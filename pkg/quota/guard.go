// Package quota implements the two-tier entitlement check that gates every
// paid generation call: period quota first, then the prepaid ticket pool,
// then deny.
package quota

import (
	"context"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Outcome of a single source attempt.
type Outcome int

const (
	// OutcomeAllowed means the source consumed one unit.
	OutcomeAllowed Outcome = iota
	// OutcomeDenied means the source applies to this user but is spent.
	OutcomeDenied
	// OutcomeNotApplicable means the source has nothing to offer, the next
	// source in the chain decides.
	OutcomeNotApplicable
)

// Decision is the result of a full check-and-consume pass.
type Decision struct {
	Allowed bool
	// Source names which tier granted the call, empty on deny.
	Source string

	// Period quota metadata, populated regardless of which tier decided so
	// the caller can always render usage state.
	Used      int
	Limit     int
	Remaining int
	ResetAt   time.Time

	// TicketsRemaining is the prepaid pool balance after this call.
	TicketsRemaining int
}

// Source is one entitlement tier. Consuming must be atomic with respect to
// concurrent calls for the same user.
type Source interface {
	Name() string
	TryConsume(ctx context.Context, userId uuid.UUID, feature entity.Feature) (Outcome, *Decision, error)
}

// Guard runs an ordered chain of entitlement sources.
type Guard struct {
	sources []Source
	logger  logger.ILogger
}

func NewGuard(log logger.ILogger, sources ...Source) *Guard {
	return &Guard{
		sources: sources,
		logger:  log,
	}
}

// CheckAndConsume walks the source chain in order and stops at the first
// source that allows. A denied or not-applicable source passes control to
// the next one. When every source declines the returned Decision carries the
// metadata of the last denying source, so the caller can surface limit and
// reset time.
func (g *Guard) CheckAndConsume(ctx context.Context, userId uuid.UUID, feature entity.Feature) (*Decision, error) {
	var lastDenied *Decision

	for _, source := range g.sources {
		outcome, decision, err := source.TryConsume(ctx, userId, feature)
		if err != nil {
			return nil, err
		}

		switch outcome {
		case OutcomeAllowed:
			decision.Allowed = true
			decision.Source = source.Name()
			if lastDenied != nil {
				// Keep the period metadata visible even when a later tier
				// granted the call.
				decision.Used = lastDenied.Used
				decision.Limit = lastDenied.Limit
				decision.Remaining = lastDenied.Remaining
				decision.ResetAt = lastDenied.ResetAt
			}
			g.logger.Info("QuotaGuard", "generation allowed", map[string]interface{}{
				"user_id": userId,
				"feature": string(feature),
				"source":  source.Name(),
			})
			return decision, nil

		case OutcomeDenied:
			lastDenied = decision

		case OutcomeNotApplicable:
			// Fall through to the next source
		}
	}

	if lastDenied == nil {
		lastDenied = &Decision{}
	}
	lastDenied.Allowed = false
	g.logger.Info("QuotaGuard", "generation denied, all sources exhausted", map[string]interface{}{
		"user_id":  userId,
		"feature":  string(feature),
		"limit":    lastDenied.Limit,
		"used":     lastDenied.Used,
		"reset_at": lastDenied.ResetAt,
	})
	return lastDenied, nil
}
