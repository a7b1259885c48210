// Package catalog holds the decoded media items a smash is composed from.
//
// Items are append-only from the composition engine's point of view: the
// engine only reads, ingestion adds and removes. Every item carries a stable
// unique ID so audio slices can be resolved back to their source buffers
// even after the catalog has changed underneath an in-flight timeline.
package catalog

import (
	"image"
	"sync"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
)

// Kind discriminates the item variants.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindAudio
)

// Item is one decoded media input. Exactly one payload field is set,
// matching Kind.
type Item struct {
	ID    string
	Kind  Kind
	Text  string
	Image image.Image
	Audio *beep.Buffer
}

// AudioDuration returns the audio payload length in seconds, or 0 for
// non-audio items.
func (it Item) AudioDuration() float64 {
	if it.Audio == nil {
		return 0
	}
	return it.Audio.Format().SampleRate.D(it.Audio.Len()).Seconds()
}

// Catalog is a thread-safe collection of input items, ordered by insertion
// within each kind.
type Catalog struct {
	mu    sync.RWMutex
	items []Item
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

func (c *Catalog) add(it Item) Item {
	it.ID = uuid.NewString()
	c.mu.Lock()
	c.items = append(c.items, it)
	c.mu.Unlock()
	return it
}

// AddText adds a text line and returns the stored item with its assigned ID.
func (c *Catalog) AddText(s string) Item {
	return c.add(Item{Kind: KindText, Text: s})
}

// AddImage adds a decoded bitmap.
func (c *Catalog) AddImage(img image.Image) Item {
	return c.add(Item{Kind: KindImage, Image: img})
}

// AddAudio adds a decoded PCM buffer.
func (c *Catalog) AddAudio(buf *beep.Buffer) Item {
	return c.add(Item{Kind: KindAudio, Audio: buf})
}

// Remove deletes the item with the given ID. Removing an item referenced by
// an in-flight timeline is legal; the mix builder skips unresolvable slices.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the item with the given ID.
func (c *Catalog) Lookup(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ListByKind returns all items of one kind in insertion order.
func (c *Catalog) ListByKind(kind Kind) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Item
	for _, it := range c.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the total item count across all kinds.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
