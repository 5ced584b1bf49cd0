package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

type stepEntry struct {
	seq  uint64
	step model.OperationStep
}

type planEntry struct {
	seq  uint64
	plan model.AssignedPlan
}

type operationEntry struct {
	seq uint64
	op  model.ScheduledOperation
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	templates  map[string]model.OperationTemplate
	steps      map[string]stepEntry
	plans      map[string]planEntry
	operations map[string]operationEntry
	failures   map[string]model.SideEffectFailure
	seq        uint64
	mu         sync.RWMutex
	logger     log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		templates:  make(map[string]model.OperationTemplate),
		steps:      make(map[string]stepEntry),
		plans:      make(map[string]planEntry),
		operations: make(map[string]operationEntry),
		failures:   make(map[string]model.SideEffectFailure),
		logger:     cfg.Logger,
	}, nil
}

func (r *Repository) nextSeq() uint64 {
	r.seq++
	return r.seq
}

// CreateTemplate creates a new template in the repository.
func (r *Repository) CreateTemplate(ctx context.Context, t model.OperationTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[t.ID]; ok {
		return fmt.Errorf("template with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.templates[t.ID] = t
	r.logger.Debugf("Created template in repository: %s", t.ID)

	return nil
}

// GetTemplate retrieves a template by ID.
func (r *Repository) GetTemplate(ctx context.Context, id string) (*model.OperationTemplate, error) {
	if err := model.ValidateID("template id", id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, model.ErrNotFound)
	}

	return &t, nil
}

// ListTemplates returns all templates ordered by name.
func (r *Repository) ListTemplates(ctx context.Context) ([]model.OperationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]model.OperationTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].ID < templates[j].ID
	})

	return templates, nil
}

// UpdateTemplate updates an existing template.
func (r *Repository) UpdateTemplate(ctx context.Context, t model.OperationTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[t.ID]; !ok {
		return fmt.Errorf("template %s: %w", t.ID, model.ErrNotFound)
	}

	r.templates[t.ID] = t
	r.logger.Debugf("Updated template in repository: %s", t.ID)

	return nil
}

// DeleteTemplate deletes a template and its steps.
func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	if err := model.ValidateID("template id", id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, model.ErrNotFound)
	}

	delete(r.templates, id)
	deleted := 0
	for stepID, e := range r.steps {
		if e.step.TemplateID == id {
			delete(r.steps, stepID)
			deleted++
		}
	}
	r.logger.Debugf("Deleted template from repository: %s (%d steps)", id, deleted)

	return nil
}

// CreateStep creates a new step for an existing template.
func (r *Repository) CreateStep(ctx context.Context, s model.OperationStep) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[s.TemplateID]; !ok {
		return fmt.Errorf("step template %s does not exist: %w", s.TemplateID, model.ErrNotValid)
	}
	if _, ok := r.steps[s.ID]; ok {
		return fmt.Errorf("step with id %s: %w", s.ID, model.ErrAlreadyExists)
	}

	r.steps[s.ID] = stepEntry{seq: r.nextSeq(), step: s}
	r.logger.Debugf("Created step in repository: %s", s.ID)

	return nil
}

// GetStep retrieves a step by ID.
func (r *Repository) GetStep(ctx context.Context, id string) (*model.OperationStep, error) {
	if err := model.ValidateID("step id", id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.steps[id]
	if !ok {
		return nil, fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	s := e.step
	return &s, nil
}

// ListSteps returns the steps of a template ordered by sort order.
func (r *Repository) ListSteps(ctx context.Context, templateID string) ([]model.OperationStep, error) {
	if err := model.ValidateID("template id", templateID); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]stepEntry, 0)
	for _, e := range r.steps {
		if e.step.TemplateID == templateID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].step.SortOrder != entries[j].step.SortOrder {
			return entries[i].step.SortOrder < entries[j].step.SortOrder
		}
		return entries[i].seq < entries[j].seq
	})

	steps := make([]model.OperationStep, 0, len(entries))
	for _, e := range entries {
		steps = append(steps, e.step)
	}

	return steps, nil
}

// UpdateStep updates an existing step keeping its insertion order.
func (r *Repository) UpdateStep(ctx context.Context, s model.OperationStep) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.steps[s.ID]
	if !ok {
		return fmt.Errorf("step %s: %w", s.ID, model.ErrNotFound)
	}
	if _, ok := r.templates[s.TemplateID]; !ok {
		return fmt.Errorf("step template %s does not exist: %w", s.TemplateID, model.ErrNotValid)
	}

	r.steps[s.ID] = stepEntry{seq: e.seq, step: s}
	r.logger.Debugf("Updated step in repository: %s", s.ID)

	return nil
}

// DeleteStep deletes a step.
func (r *Repository) DeleteStep(ctx context.Context, id string) error {
	if err := model.ValidateID("step id", id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.steps[id]; !ok {
		return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	delete(r.steps, id)
	r.logger.Debugf("Deleted step from repository: %s", id)

	return nil
}

// CreatePlan creates a new plan.
func (r *Repository) CreatePlan(ctx context.Context, p model.AssignedPlan) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[p.ID]; ok {
		return fmt.Errorf("plan with id %s: %w", p.ID, model.ErrAlreadyExists)
	}

	r.plans[p.ID] = planEntry{seq: r.nextSeq(), plan: copyPlan(p)}
	r.logger.Debugf("Created plan in repository: %s", p.ID)

	return nil
}

// GetPlan retrieves a plan by ID.
func (r *Repository) GetPlan(ctx context.Context, id string) (*model.AssignedPlan, error) {
	if err := model.ValidateID("plan id", id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}

	p := copyPlan(e.plan)
	return &p, nil
}

// ListPlans returns the plans matching the filter.
func (r *Repository) ListPlans(ctx context.Context, filter model.PlanFilter) ([]model.AssignedPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]planEntry, 0)
	for _, e := range r.plans {
		if filter.Match(e.plan) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].plan.StartDate.Compare(entries[j].plan.StartDate); c != 0 {
			return c < 0
		}
		return entries[i].seq < entries[j].seq
	})

	plans := make([]model.AssignedPlan, 0, len(entries))
	for _, e := range entries {
		plans = append(plans, copyPlan(e.plan))
	}

	return plans, nil
}

// UpdatePlan updates an existing plan.
func (r *Repository) UpdatePlan(ctx context.Context, p model.AssignedPlan) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.plans[p.ID]
	if !ok {
		return fmt.Errorf("plan %s: %w", p.ID, model.ErrNotFound)
	}

	r.plans[p.ID] = planEntry{seq: e.seq, plan: copyPlan(p)}
	r.logger.Debugf("Updated plan in repository: %s", p.ID)

	return nil
}

// AdvancePlan updates a plan that is still active at fromStep.
func (r *Repository) AdvancePlan(ctx context.Context, p model.AssignedPlan, fromStep int) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.plans[p.ID]
	if !ok {
		return fmt.Errorf("plan %s: %w", p.ID, model.ErrNotFound)
	}
	if e.plan.IsCompleted || e.plan.CurrentStep != fromStep {
		return fmt.Errorf("plan %s is not active at step %d: %w", p.ID, fromStep, model.ErrConflict)
	}

	r.plans[p.ID] = planEntry{seq: e.seq, plan: copyPlan(p)}
	r.logger.Debugf("Advanced plan in repository: %s (step %d -> %d)", p.ID, fromStep, p.CurrentStep)

	return nil
}

// DeletePlan deletes a plan and its scheduled operations.
func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	if err := model.ValidateID("plan id", id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[id]; !ok {
		return fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}

	delete(r.plans, id)
	deleted := 0
	for opID, e := range r.operations {
		if e.op.PlanID == id {
			delete(r.operations, opID)
			deleted++
		}
	}
	r.logger.Debugf("Deleted plan from repository: %s (%d operations)", id, deleted)

	return nil
}

// CreateOperation creates a new scheduled operation for an existing plan.
func (r *Repository) CreateOperation(ctx context.Context, o model.ScheduledOperation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[o.PlanID]; !ok {
		return fmt.Errorf("operation plan %s does not exist: %w", o.PlanID, model.ErrNotValid)
	}
	if _, ok := r.operations[o.ID]; ok {
		return fmt.Errorf("operation with id %s: %w", o.ID, model.ErrAlreadyExists)
	}

	r.operations[o.ID] = operationEntry{seq: r.nextSeq(), op: copyOperation(o)}
	r.logger.Debugf("Created operation in repository: %s", o.ID)

	return nil
}

// GetOperation retrieves an operation by ID.
func (r *Repository) GetOperation(ctx context.Context, id string) (*model.ScheduledOperation, error) {
	if err := model.ValidateID("operation id", id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.operations[id]
	if !ok {
		return nil, fmt.Errorf("operation %s: %w", id, model.ErrNotFound)
	}

	o := copyOperation(e.op)
	return &o, nil
}

// ListOperations returns the operations matching the filter.
func (r *Repository) ListOperations(ctx context.Context, filter model.OperationFilter) ([]model.ScheduledOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]operationEntry, 0)
	for _, e := range r.operations {
		if filter.Match(e.op) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].op.ScheduledDate.Compare(entries[j].op.ScheduledDate); c != 0 {
			return c < 0
		}
		return entries[i].seq < entries[j].seq
	})

	ops := make([]model.ScheduledOperation, 0, len(entries))
	for _, e := range entries {
		ops = append(ops, copyOperation(e.op))
	}

	return ops, nil
}

// UpdateOperation updates an existing operation.
func (r *Repository) UpdateOperation(ctx context.Context, o model.ScheduledOperation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.operations[o.ID]
	if !ok {
		return fmt.Errorf("operation %s: %w", o.ID, model.ErrNotFound)
	}

	r.operations[o.ID] = operationEntry{seq: e.seq, op: copyOperation(o)}
	r.logger.Debugf("Updated operation in repository: %s", o.ID)

	return nil
}

// CompleteOperation stores the completion of a pending operation.
func (r *Repository) CompleteOperation(ctx context.Context, o model.ScheduledOperation) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}
	if !o.IsCompleted {
		return fmt.Errorf("operation %s is not completed: %w", o.ID, model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.operations[o.ID]
	if !ok {
		return fmt.Errorf("operation %s: %w", o.ID, model.ErrNotFound)
	}
	if e.op.IsCompleted {
		return fmt.Errorf("operation %s is already completed: %w", o.ID, model.ErrConflict)
	}

	completed := copyOperation(e.op)
	completed.IsCompleted = true
	completed.CompletedDate = o.CompletedDate
	completed.Result = o.Result
	r.operations[o.ID] = operationEntry{seq: e.seq, op: copyOperation(completed)}
	r.logger.Debugf("Completed operation in repository: %s", o.ID)

	return nil
}

// CreateSideEffectFailure stores a failed side effect.
func (r *Repository) CreateSideEffectFailure(ctx context.Context, f model.SideEffectFailure) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid side effect failure: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.failures[f.ID]; ok {
		return fmt.Errorf("side effect failure with id %s: %w", f.ID, model.ErrAlreadyExists)
	}

	r.failures[f.ID] = copyFailure(f)
	r.logger.Debugf("Created side effect failure in repository: %s", f.ID)

	return nil
}

// ListSideEffectFailures returns the stored failures ordered by ID (creation order).
func (r *Repository) ListSideEffectFailures(ctx context.Context, pendingOnly bool) ([]model.SideEffectFailure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failures := make([]model.SideEffectFailure, 0, len(r.failures))
	for _, f := range r.failures {
		if pendingOnly && f.Resolved() {
			continue
		}
		failures = append(failures, copyFailure(f))
	}
	sort.Slice(failures, func(i, j int) bool { return strings.Compare(failures[i].ID, failures[j].ID) < 0 })

	return failures, nil
}

// UpdateSideEffectFailure updates a stored failure.
func (r *Repository) UpdateSideEffectFailure(ctx context.Context, f model.SideEffectFailure) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid side effect failure: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.failures[f.ID]; !ok {
		return fmt.Errorf("side effect failure %s: %w", f.ID, model.ErrNotFound)
	}

	r.failures[f.ID] = copyFailure(f)
	r.logger.Debugf("Updated side effect failure in repository: %s", f.ID)

	return nil
}

func copyPlan(p model.AssignedPlan) model.AssignedPlan {
	if p.CompletedDate != nil {
		d := *p.CompletedDate
		p.CompletedDate = &d
	}
	return p
}

func copyOperation(o model.ScheduledOperation) model.ScheduledOperation {
	if o.CompletedDate != nil {
		d := *o.CompletedDate
		o.CompletedDate = &d
	}
	return o
}

func copyFailure(f model.SideEffectFailure) model.SideEffectFailure {
	if f.ResolvedAt != nil {
		t := *f.ResolvedAt
		f.ResolvedAt = &t
	}
	return f
}
