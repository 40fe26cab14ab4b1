package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type listInput struct {
	NodeClass string
}

func newCheckpointLoader(calls *int, fail bool) func(ctx context.Context, input listInput) ([]string, error) {
	return func(ctx context.Context, input listInput) ([]string, error) {
		*calls++
		if fail {
			return nil, errors.New("object info fetch failed")
		}
		return []string{"sd15.safetensors", "sdxl.safetensors"}, nil
	}
}

func TestReadThrough_Get_WithCacheDisabled(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, false), true)

	got, err := rt.Get(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"sd15.safetensors", "sdxl.safetensors"}, got)

	// A disabled cache never stores, so every read hits the loader.
	_, err = rt.Get(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestReadThrough_Get_EmptyCachePopulates(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, false), false)

	got, err := rt.Get(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"sd15.safetensors", "sdxl.safetensors"}, got)
	require.Equal(t, 1, calls)

	// Second read is served from the cache.
	got, err = rt.Get(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"sd15.safetensors", "sdxl.safetensors"}, got)
	require.Equal(t, 1, calls)
}

func TestReadThrough_Get_WithValueInCache(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)
	manager.Set(context.Background(), "checkpoints", []string{"cached.safetensors"}, DefaultExpiration)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, false), false)

	got, err := rt.Get(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"cached.safetensors"}, got)
	require.Equal(t, 0, calls)
}

func TestReadThrough_Get_LoaderError(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, true), false)

	_, err := rt.Get(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.Error(t, err)

	// Errors are not cached.
	_, ok := manager.Get(context.Background(), "checkpoints")
	require.False(t, ok)
}

func TestReadThrough_GetWithRefresh_WithValueInCache(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)
	manager.Set(context.Background(), "checkpoints", []string{"cached.safetensors"}, DefaultExpiration)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, false), false)

	got, err := rt.GetWithRefresh(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"cached.safetensors"}, got)
	require.Equal(t, 0, calls)
}

func TestReadThrough_GetWithRefresh_EmptyCache(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, false), false)

	got, err := rt.GetWithRefresh(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"sd15.safetensors", "sdxl.safetensors"}, got)
	require.Equal(t, 1, calls)
}

func TestReadThrough_GetWithRefresh_LoaderError(t *testing.T) {
	manager := NewInMemoryManager[string, []string]("models", DefaultExpiration, DefaultCleanupInterval)

	var calls int
	rt := NewReadThrough[string, []string, listInput](manager, newCheckpointLoader(&calls, true), false)

	_, err := rt.GetWithRefresh(context.Background(), "checkpoints", listInput{NodeClass: "CheckpointLoaderSimple"}, time.Minute)
	require.Error(t, err)
}
