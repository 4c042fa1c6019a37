// Package page builds, caches, and hot-reloads the rendered APK page.
package page

import (
	"sync/atomic"
	"time"
)

// placeholderBody is served until the first refresh succeeds.
const placeholderBody = `<!DOCTYPE html>
<html lang="sv"><head><meta charset="utf-8"><title>APK-listan</title></head>
<body><p>APK-listan hämtas just nu, ladda om sidan om en stund.</p></body></html>
`

// Snapshot is one immutable rendered page. Snapshots are never mutated
// after creation, only replaced wholesale.
type Snapshot struct {
	ID          string
	Body        string
	GeneratedAt time.Time
}

// Cache holds the snapshot currently served to readers. The refresh
// scheduler is the only writer; it builds each snapshot off to the side and
// swaps a pointer, so readers never block the writer or each other and can
// never observe a partially written page.
type Cache struct {
	current atomic.Pointer[Snapshot]
}

// NewCache returns a cache primed with the placeholder page.
func NewCache() *Cache {
	c := &Cache{}
	c.current.Store(&Snapshot{Body: placeholderBody})
	return c
}

// Read returns the most recently published snapshot. It never blocks on a
// refresh in progress and is safe for unbounded concurrent callers.
func (c *Cache) Read() *Snapshot {
	return c.current.Load()
}

// Publish atomically replaces the current snapshot.
func (c *Cache) Publish(s *Snapshot) {
	c.current.Store(s)
}

// Ready reports whether a real page has ever been published.
func (c *Cache) Ready() bool {
	return !c.Read().GeneratedAt.IsZero()
}
