package allocator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district_platform/internals/allocator"
	templateModel "district_platform/internals/features/forms/templates/model"
	"district_platform/internals/testutil"
)

func TestNextAllocatesDistinctIncreasingIDs(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	seen := make(map[int64]bool)
	var prev int64
	for i := 0; i < 50; i++ {
		id, err := alloc.Next(ctx, allocator.EntityTemplates)
		require.NoError(t, err)
		require.Greater(t, id, prev)
		require.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
		prev = id
	}
}

func TestNextConcurrentAllocationsAreDistinct(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	// cold start on purpose: the goroutines also race to seed the counter
	// row, and every loser must adopt the winner's row rather than fail
	const n = 32
	ids := make(chan int64, n)
	errs := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.Next(ctx, allocator.EntityValues)
			if err != nil {
				errs <- err
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent Next failed: %v", err)
	}

	seen := make(map[int64]bool, n)
	for id := range ids {
		require.Greater(t, id, int64(0))
		require.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen[int64(n)], "n allocations from zero end at n")
}

func TestNextStartsAboveExistingIDs(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	// data written before any counter existed
	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 500, Name: "Legacy"}).Error)

	id, err := alloc.Next(ctx, allocator.EntityTemplates)
	require.NoError(t, err)
	assert.Equal(t, int64(501), id)
}

func TestNextHealsNonNumericCounter(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 500, Name: "Legacy"}).Error)
	require.NoError(t, db.Create(&allocator.Counter{ID: allocator.EntityTemplates, Value: "not-a-number"}).Error)

	id, err := alloc.Next(ctx, allocator.EntityTemplates)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, int64(501))

	var c allocator.Counter
	require.NoError(t, db.Where("id = ?", allocator.EntityTemplates).First(&c).Error)
	assert.Equal(t, "501", c.Value)
}

func TestHealthCheckCanonicalizesFloatCounter(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&allocator.Counter{ID: allocator.EntityUsers, Value: "41.9"}).Error)

	require.NoError(t, alloc.HealthCheck(ctx, allocator.EntityUsers))

	var c allocator.Counter
	require.NoError(t, db.Where("id = ?", allocator.EntityUsers).First(&c).Error)
	assert.Equal(t, "41", c.Value)

	id, err := alloc.Next(ctx, allocator.EntityUsers)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestNextLaggingCounterNeverReissuesIDs(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 100, Name: "A"}).Error)
	require.NoError(t, db.Create(&allocator.Counter{ID: allocator.EntityTemplates, Value: "3"}).Error)

	id, err := alloc.Next(ctx, allocator.EntityTemplates)
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)
}

func TestRepairCollectionReKeysMissingAndDuplicateIDs(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 7, Name: "Keep"}).Error)
	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 7, Name: "Dup"}).Error)
	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 0, Name: "Missing"}).Error)

	n, err := alloc.RepairCollection(ctx, allocator.EntityTemplates)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var tpls []templateModel.TemplateModel
	require.NoError(t, db.Find(&tpls).Error)
	require.Len(t, tpls, 3)

	seen := make(map[int64]bool)
	for _, tpl := range tpls {
		assert.Greater(t, tpl.ID, int64(0))
		assert.False(t, seen[tpl.ID], "duplicate id %d survived repair", tpl.ID)
		seen[tpl.ID] = true
	}
	assert.True(t, seen[7], "exactly one row keeps the contested id")
}

func TestRepairAllIsIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&templateModel.TemplateModel{ID: 0, Name: "Broken"}).Error)

	require.NoError(t, alloc.RepairAll(ctx))

	var first templateModel.TemplateModel
	require.NoError(t, db.Where("name = ?", "Broken").First(&first).Error)
	assert.Greater(t, first.ID, int64(0))

	// second run must find nothing to do and change nothing
	require.NoError(t, alloc.RepairAll(ctx))

	var second templateModel.TemplateModel
	require.NoError(t, db.Where("name = ?", "Broken").First(&second).Error)
	assert.Equal(t, first.ID, second.ID)
}

func TestNextUnknownEntity(t *testing.T) {
	db := testutil.OpenTestDB(t)
	alloc := allocator.New(db)

	_, err := alloc.Next(context.Background(), "nope")
	require.Error(t, err)
}
