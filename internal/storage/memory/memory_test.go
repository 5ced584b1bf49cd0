package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
	"github.com/slok/herdops/internal/storage/memory"
	"github.com/slok/herdops/internal/storage/storagetest"
)

func newRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
	require.NoError(t, err)
	return repo
}

func TestRepository(t *testing.T) {
	storagetest.TestRepository(t, newRepo)
}

func TestRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	tpl := storagetest.TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))
	plan := storagetest.PlanFixture(tpl.ID, "cow-1", model.MustParseDate("2024-06-01"))
	done := model.MustParseDate("2024-06-02")
	plan.IsCompleted = true
	plan.CompletedDate = &done
	require.NoError(t, repo.CreatePlan(ctx, plan))

	got, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	*got.CompletedDate = model.MustParseDate("2030-01-01")
	got.AnimalID = "changed"

	again, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "cow-1", again.AnimalID)
	assert.Equal(t, "2024-06-02", again.CompletedDate.String())
}

func TestRepositoryConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	tpl := storagetest.TemplateFixture("Ovsynch")
	require.NoError(t, repo.CreateTemplate(ctx, tpl))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.CreateStep(ctx, storagetest.StepFixture(tpl.ID, "step", i%5)))
		}(i)
	}
	wg.Wait()

	steps, err := repo.ListSteps(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Len(t, steps, 50)
	for i := 1; i < len(steps); i++ {
		assert.LessOrEqual(t, steps[i-1].SortOrder, steps[i].SortOrder)
	}
}
