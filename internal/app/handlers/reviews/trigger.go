package reviews

import (
	"context"

	domainreviews "staybook/internal/domain/reviews"
)

// RatingTrigger is notified after each review mutation has been persisted.
// Implementations must not fail the caller.
type RatingTrigger interface {
	OnReviewCreated(ctx context.Context, review *domainreviews.Review)
	OnReviewUpdated(ctx context.Context, review *domainreviews.Review)
	OnReviewDeleted(ctx context.Context, review *domainreviews.Review)
}

type noopTrigger struct{}

func (noopTrigger) OnReviewCreated(context.Context, *domainreviews.Review) {}
func (noopTrigger) OnReviewUpdated(context.Context, *domainreviews.Review) {}
func (noopTrigger) OnReviewDeleted(context.Context, *domainreviews.Review) {}

func triggerOrNoop(t RatingTrigger) RatingTrigger {
	if t == nil {
		return noopTrigger{}
	}
	return t
}
