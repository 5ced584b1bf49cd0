package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/herdops/internal/model"
)

func TestOperationFilterMatch(t *testing.T) {
	today := model.MustParseDate("2024-06-10")
	yes, no := true, false

	op := model.ScheduledOperation{
		PlanID:        "p1",
		AnimalID:      "a1",
		ScheduledDate: today,
	}

	tests := map[string]struct {
		filter model.OperationFilter
		exp    bool
	}{
		"An empty filter matches everything.":        {filter: model.OperationFilter{}, exp: true},
		"Matching animal.":                           {filter: model.OperationFilter{AnimalID: "a1"}, exp: true},
		"Different animal.":                          {filter: model.OperationFilter{AnimalID: "a2"}, exp: false},
		"Different plan.":                            {filter: model.OperationFilter{PlanID: "p2"}, exp: false},
		"Incomplete requested.":                      {filter: model.OperationFilter{Completed: &no}, exp: true},
		"Completed requested.":                       {filter: model.OperationFilter{Completed: &yes}, exp: false},
		"Scheduled before is strict.":                {filter: model.OperationFilter{ScheduledBefore: &today}, exp: false},
		"Scheduled on same day.":                     {filter: model.OperationFilter{ScheduledOn: &today}, exp: true},
		"Scheduled after is strict.":                 {filter: model.OperationFilter{ScheduledAfter: &today}, exp: false},
		"Scheduled until is inclusive.":              {filter: model.OperationFilter{ScheduledUntil: &today}, exp: true},
		"Scheduled before a later day should match.": {filter: model.OperationFilter{ScheduledBefore: ptrDate(today.AddDays(1))}, exp: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.filter.Match(op))
		})
	}
}

func ptrDate(d model.Date) *model.Date { return &d }
