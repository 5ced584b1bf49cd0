package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	storageio "github.com/slok/herdops/internal/storage/io"
)

// CreateTemplate creates a new template without steps.
//
// Returns [ErrNotValid] if the name is empty.
func (c *Client) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	return c.catalog.CreateTemplate(ctx, req)
}

// UpdateTemplate applies a partial update to a template, nil fields are kept.
func (c *Client) UpdateTemplate(ctx context.Context, req UpdateTemplateRequest) (*Template, error) {
	return c.catalog.UpdateTemplate(ctx, req)
}

// DeleteTemplate deletes a template and its steps. Plans already assigned from it are kept.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.catalog.DeleteTemplate(ctx, id)
}

// GetTemplate returns a template by ID.
func (c *Client) GetTemplate(ctx context.Context, id string) (*Template, error) {
	return c.catalog.GetTemplate(ctx, id)
}

// ListTemplates returns the templates ordered by name.
func (c *Client) ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error) {
	return c.catalog.ListTemplates(ctx, activeOnly)
}

// CreateStep adds a step to an existing template.
//
// Returns [ErrNotValid] if the owning template doesn't exist or the step is invalid.
func (c *Client) CreateStep(ctx context.Context, req CreateStepRequest) (*Step, error) {
	return c.catalog.CreateStep(ctx, req)
}

// UpdateStep applies a partial update to a step. Scheduled operations are not touched.
func (c *Client) UpdateStep(ctx context.Context, req UpdateStepRequest) (*Step, error) {
	return c.catalog.UpdateStep(ctx, req)
}

// DeleteStep deletes a step.
func (c *Client) DeleteStep(ctx context.Context, id string) error {
	return c.catalog.DeleteStep(ctx, id)
}

// ListSteps returns the template steps in execution order.
func (c *Client) ListSteps(ctx context.Context, templateID string) ([]Step, error) {
	return c.catalog.ListSteps(ctx, templateID)
}

// ImportTemplate creates a template and its steps in one call.
func (c *Client) ImportTemplate(ctx context.Context, def TemplateDefinition) (*Template, []Step, error) {
	return c.catalog.ImportTemplate(ctx, def)
}

// ImportTemplateFile loads a YAML protocol file and imports it with [Client.ImportTemplate].
func (c *Client) ImportTemplateFile(ctx context.Context, path string) (*Template, []Step, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not resolve path: %w", err)
	}

	loader := storageio.NewTemplateYAMLRepository(os.DirFS(filepath.Dir(abs)))
	def, err := loader.GetTemplateDefinition(ctx, filepath.Base(abs))
	if err != nil {
		return nil, nil, fmt.Errorf("could not load template file: %w", err)
	}

	return c.catalog.ImportTemplate(ctx, def)
}
