package uow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/orderdesk-backend/internal/domain"
)

// PublishFunc delivers one domain event to interested handlers.
type PublishFunc func(ctx context.Context, e domain.Event) error

// DispatchEvents publishes every collected event concurrently and waits for
// all publishes to finish. Publish order is unspecified; handlers must not
// depend on it. If any publish fails the first observed failure is returned
// untouched and the enclosing save must not proceed to commit.
func DispatchEvents(ctx context.Context, events []CollectedEvent, publish PublishFunc) error {
	if len(events) == 0 {
		return nil
	}
	if publish == nil {
		return NewError(CodeInvariantViolation, "uow.dispatch", "no event publish capability configured", nil)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, ce := range events {
		ce := ce
		g.Go(func() error {
			return publish(gctx, ce.Event)
		})
	}
	return g.Wait()
}
