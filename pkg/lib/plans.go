package lib

import "context"

// AssignPlan instantiates a template for an animal and schedules its first operation
// on the start date.
//
// Returns [ErrNotFound] if the template doesn't exist, or [ErrNotValid] if the
// template is inactive or has no steps.
func (c *Client) AssignPlan(ctx context.Context, req AssignRequest) (*Assignment, error) {
	return c.plans.Assign(ctx, req)
}

// AssignPlanBulk assigns the same template to many animals. Every animal is
// independent, failures are reported per animal in the result.
func (c *Client) AssignPlanBulk(ctx context.Context, req AssignBulkRequest) (*BulkResult, error) {
	return c.plans.AssignBulk(ctx, req)
}

// CompletePlan marks a plan as completed. Completing a completed plan keeps the
// first completion date.
func (c *Client) CompletePlan(ctx context.Context, id string) (*Plan, error) {
	return c.plans.Complete(ctx, id)
}

// DeletePlan deletes a plan and all its scheduled operations.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.plans.Delete(ctx, id)
}

// GetPlan returns a plan by ID.
func (c *Client) GetPlan(ctx context.Context, id string) (*Plan, error) {
	return c.plans.Get(ctx, id)
}

// ListPlans returns the plans matching the filter, ordered by start date.
func (c *Client) ListPlans(ctx context.Context, filter PlanFilter) ([]Plan, error) {
	return c.plans.List(ctx, filter)
}
