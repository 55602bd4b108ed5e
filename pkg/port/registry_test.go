package port

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nobletooth/tlist/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry(3)

	t.Run("missing list reads as empty", func(t *testing.T) {
		require.NoError(t, registry.View("missing", func(list *StringList) error {
			assert.Equal(t, 0, list.Count())
			return nil
		}))
		assert.Empty(t, registry.Names())
	})

	t.Run("update creates and empties drop", func(t *testing.T) {
		require.NoError(t, registry.Update("l1", func(list *StringList) error { return list.Add("a") }))
		assert.Equal(t, []string{"l1"}, registry.Names())
		assert.Equal(t, []string{"a"}, registry.Snapshot("l1").ToSlice())

		require.NoError(t, registry.Update("l1", func(list *StringList) error { return list.Remove("a") }))
		assert.Empty(t, registry.Names())
	})

	t.Run("failed update keeps partial effects", func(t *testing.T) {
		failure := errors.New("boom")
		err := registry.Update("l2", func(list *StringList) error {
			_ = list.Add("kept")
			return failure
		})
		assert.ErrorIs(t, err, failure)
		assert.Equal(t, []string{"kept"}, registry.Snapshot("l2").ToSlice())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		snapshot := registry.Snapshot("l2")
		require.NoError(t, snapshot.Add("extra"))
		assert.Equal(t, 1, registry.Snapshot("l2").Count())
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, 1, registry.Delete("l2", "missing"))
		assert.Empty(t, registry.Names())
	})
}

func TestRegistry_NonPositiveShards(t *testing.T) {
	if utils.IsTestMode {
		assert.Panics(t, func() { NewRegistry(0) })
		return
	}
	before := utils.GetMetricValue("registry", "non_positive_shard_count")
	registry := NewRegistry(0)
	assert.Len(t, registry.shards, 1)
	assert.Equal(t, before+1, utils.GetMetricValue("registry", "non_positive_shard_count"))
}

func TestRegistry_ConcurrentUpdates(t *testing.T) {
	registry := NewRegistry(4)
	const workers, perWorker = 8, 100
	var wg sync.WaitGroup
	for worker := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				name := fmt.Sprintf("list-%d", i%5)
				_ = registry.Update(name, func(list *StringList) error {
					return list.Add(fmt.Sprintf("%d-%d", worker, i))
				})
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, name := range registry.Names() {
		snapshot := registry.Snapshot(name)
		require.NoError(t, snapshot.Validate())
		total += snapshot.Count()
	}
	assert.Equal(t, workers*perWorker, total)
}

func TestRegistry_ConcurrentViews(t *testing.T) {
	registry := NewRegistry(1)
	handler, err := NewHandler(registry)
	require.NoError(t, err)
	values := make([]string, 0, 32)
	for i := range 32 {
		values = append(values, fmt.Sprint(i))
	}
	require.Equal(t, "32", handler.Handle("LADD", append([]string{"shared"}, values...)...).String())
	require.Equal(t, "32", handler.Handle("LADD", append([]string{"probes"}, values...)...).String())
	expectedHash := handler.Handle("LHASH", "shared").String()

	const workers = 8
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, expectedHash, handler.Handle("LHASH", "shared").String())
				assert.Equal(t, "1", handler.Handle("LCONTAINSALL", "shared", "probes").String())
				assert.Equal(t, "1", handler.Handle("LCONTAINS", "shared", "7").String())
			}
		}()
	}
	wg.Wait()
}
