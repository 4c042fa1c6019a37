package page

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheStartsWithPlaceholder(t *testing.T) {
	t.Parallel()

	c := NewCache()
	snap := c.Read()
	require.NotNil(t, snap)
	require.NotEmpty(t, snap.Body)
	require.True(t, snap.GeneratedAt.IsZero())
	require.False(t, c.Ready())
}

func TestCachePublishReplacesSnapshot(t *testing.T) {
	t.Parallel()

	c := NewCache()
	snap := &Snapshot{ID: "s1", Body: "<html>v1</html>", GeneratedAt: time.Now()}
	c.Publish(snap)

	require.True(t, c.Ready())
	for i := 0; i < 5; i++ {
		got := c.Read()
		require.Same(t, snap, got)
		require.Equal(t, "<html>v1</html>", got.Body)
	}
}

func TestCacheReadRetainsLastSnapshotUntilNextPublish(t *testing.T) {
	t.Parallel()

	c := NewCache()
	first := &Snapshot{ID: "s1", Body: "first", GeneratedAt: time.Now()}
	c.Publish(first)

	// No publish happens during a failed refresh; readers keep seeing the
	// previous snapshot.
	require.Same(t, first, c.Read())

	second := &Snapshot{ID: "s2", Body: "second", GeneratedAt: time.Now()}
	c.Publish(second)
	require.Same(t, second, c.Read())
}

func TestCacheConcurrentReadersObserveOldOrNew(t *testing.T) {
	t.Parallel()

	c := NewCache()
	old := &Snapshot{ID: "old", Body: "old body", GeneratedAt: time.Now()}
	c.Publish(old)
	newer := &Snapshot{ID: "new", Body: "new body", GeneratedAt: time.Now()}

	const readers = 64
	start := make(chan struct{})
	results := make([][]*Snapshot, readers)

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			for j := 0; j < 1000; j++ {
				results[i] = append(results[i], c.Read())
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		c.Publish(newer)
	}()

	close(start)
	wg.Wait()

	for _, reads := range results {
		for _, snap := range reads {
			if snap != old && snap != newer {
				t.Fatalf("reader observed a snapshot that was never published: %+v", snap)
			}
		}
	}
}
