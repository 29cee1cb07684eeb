package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

func TestLoadWithoutRedis(t *testing.T) {
	c, err := New(logger.Nop(), "", time.Minute)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	require.NoError(t, c.Invalidate(context.Background()))

	got, err := Load(context.Background(), c, "modalities", func(context.Context) ([]string, error) {
		return []string{"clinical"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"clinical"}, got)

	_, err = Load(context.Background(), c, "broken", func(context.Context) ([]string, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestLoadCollapsesConcurrentBuilds(t *testing.T) {
	c, err := New(logger.Nop(), "", time.Minute)
	require.NoError(t, err)

	var builds atomic.Int32
	release := make(chan struct{})
	build := func(context.Context) (int, error) {
		builds.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Load(context.Background(), c, "chords:demographics", build)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	// let the goroutines join the flight before releasing it
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []int{42, 42, 42, 42}, results)
	assert.LessOrEqual(t, builds.Load(), int32(4))
	assert.GreaterOrEqual(t, builds.Load(), int32(1))
}

func TestLoadNilCache(t *testing.T) {
	v, err := Load(context.Background(), nil, "k", func(context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestDataKey(t *testing.T) {
	assert.Equal(t, "pdv:view:3:cdm:", dataKey(3, "cdm:"))
}
