package plan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/slok/herdops/internal/model"
)

// AssignBulkRequest represents the bulk assignment parameters.
type AssignBulkRequest struct {
	TemplateID string
	AnimalIDs  []string
	StartDate  model.Date
}

// BulkItem is the assignment result of one animal.
type BulkItem struct {
	AnimalID   string
	Assignment *Assignment
	Err        error
}

// BulkResult is the per-animal report of a bulk assignment, in request order.
type BulkResult struct {
	Items []BulkItem
}

// Succeeded returns the number of successful assignments.
func (r BulkResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the failed items.
func (r BulkResult) Failed() []BulkItem {
	failed := []BulkItem{}
	for _, it := range r.Items {
		if it.Err != nil {
			failed = append(failed, it)
		}
	}
	return failed
}

// AssignBulk assigns the template to every animal independently. A failing animal
// doesn't stop the others. Repeated animal IDs are assigned once.
func (s *Service) AssignBulk(ctx context.Context, req AssignBulkRequest) (*BulkResult, error) {
	animalIDs := dedupe(req.AnimalIDs)
	res := &BulkResult{Items: make([]BulkItem, len(animalIDs))}

	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i, animalID := range animalIDs {
		g.Go(func() error {
			item := BulkItem{AnimalID: animalID}
			if err := ctx.Err(); err != nil {
				item.Err = err
			} else {
				item.Assignment, item.Err = s.Assign(ctx, AssignRequest{
					TemplateID: req.TemplateID,
					AnimalID:   animalID,
					StartDate:  req.StartDate,
				})
			}
			if item.Err != nil {
				s.logger.Warningf("could not assign template %s to animal %s: %s", req.TemplateID, animalID, item.Err)
			}
			res.Items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Infof("bulk assigned template %s: %d/%d animals", req.TemplateID, res.Succeeded(), len(animalIDs))
	return res, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
