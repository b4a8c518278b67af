package recommendation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MayurUbarhande0/recommendations-api/domain"
	"github.com/MayurUbarhande0/recommendations-api/pkg/logger"
)

// GetMany fans out Get for every user id with bounded concurrency so a
// cold batch cannot flood the activity store. One user's failure is
// recorded in its slot and counted, never aborting the batch; the result
// order matches the input order regardless of completion order.
func (s *Service) GetMany(ctx context.Context, userIDs []uint64) (domain.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.BatchResult{}, fmt.Errorf("context error: %w", err)
	}

	items := make([]domain.BatchItem, len(userIDs))

	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			result, tier, err := s.Get(ctx, userID)
			if err != nil {
				items[i] = domain.BatchItem{UserID: userID, Err: err}
				return nil
			}
			items[i] = domain.BatchItem{UserID: userID, Result: &result, Tier: tier}
			return nil
		})
	}

	// per-id failures are captured in items, never returned here
	_ = g.Wait()

	batch := domain.BatchResult{Items: items}
	for _, item := range items {
		if item.Err != nil {
			batch.Failed++
		} else {
			batch.Successful++
		}
	}

	logger.Debug("batch recommendation served",
		"trace_id", TraceIDFromContext(ctx),
		"requested", len(userIDs),
		"successful", batch.Successful,
		"failed", batch.Failed,
	)

	return batch, nil
}
