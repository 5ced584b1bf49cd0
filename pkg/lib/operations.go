package lib

import (
	"context"
	"fmt"
)

// CompleteOperation records the result of an operation, applies its step side effects
// and advances the plan to the next eligible step, or completes the plan when none is left.
//
// Failed side effects don't fail the call, they are returned as warnings and kept for
// [Client.RetrySideEffects]. Returns [ErrConflict] if the operation was already completed.
func (c *Client) CompleteOperation(ctx context.Context, req CompleteRequest) (*AdvanceResult, error) {
	return c.engine.CompleteOperation(ctx, req)
}

// AdvanceOperation runs the step selection past an already completed operation.
//
// Returns [ErrConflict] if the plan is completed or still has an outstanding operation.
func (c *Client) AdvanceOperation(ctx context.Context, req AdvanceRequest) (*AdvanceResult, error) {
	return c.engine.Advance(ctx, req)
}

// OverdueOperations returns the incomplete operations scheduled before today.
func (c *Client) OverdueOperations(ctx context.Context) ([]Operation, error) {
	return c.query.OverdueOperations(ctx)
}

// TodayOperations returns the incomplete operations scheduled for today.
func (c *Client) TodayOperations(ctx context.Context) ([]Operation, error) {
	return c.query.TodayOperations(ctx)
}

// UpcomingOperations returns the incomplete operations scheduled in the next days, today excluded.
func (c *Client) UpcomingOperations(ctx context.Context, days int) ([]Operation, error) {
	return c.query.UpcomingOperations(ctx, days)
}

// OperationsForAnimal returns every operation of an animal, completed or not.
func (c *Client) OperationsForAnimal(ctx context.Context, animalID string) ([]Operation, error) {
	return c.query.OperationsForAnimal(ctx, animalID)
}

// OperationsForPlan returns every operation of a plan, completed or not.
func (c *Client) OperationsForPlan(ctx context.Context, planID string) ([]Operation, error) {
	return c.query.OperationsForPlan(ctx, planID)
}

// PendingSideEffects returns the side effects waiting for reconciliation.
func (c *Client) PendingSideEffects(ctx context.Context) ([]SideEffectFailure, error) {
	return c.reconcile.Pending(ctx)
}

// RetrySideEffects re-applies every pending side effect on the animal registry.
func (c *Client) RetrySideEffects(ctx context.Context) (*RetryResult, error) {
	return c.reconcile.Retry(ctx)
}

// RefreshMetrics updates the gauges of due operations and pending side effects.
// It is a no-op when metrics are disabled.
func (c *Client) RefreshMetrics(ctx context.Context) error {
	overdue, err := c.query.OverdueOperations(ctx)
	if err != nil {
		return fmt.Errorf("could not get overdue operations: %w", err)
	}

	today, err := c.query.TodayOperations(ctx)
	if err != nil {
		return fmt.Errorf("could not get today operations: %w", err)
	}
	c.metrics.SetOperationsDue(ctx, len(overdue), len(today))

	// Pending sets its own gauge.
	if _, err := c.reconcile.Pending(ctx); err != nil {
		return fmt.Errorf("could not get pending side effects: %w", err)
	}

	return nil
}
