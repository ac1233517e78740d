package session

import (
	"hash/fnv"
	"sync"

	"github.com/RyanBlaney/sonido-lienzo/canvas/annotations"
)

// Color is a hex colour string such as "#88C0D0".
type Color string

// DefaultPalette is the nord accent palette.
var DefaultPalette = []Color{
	"#88C0D0",
	"#BF616A",
	"#A3BE8C",
	"#EBCB8B",
	"#B48EAD",
	"#D08770",
	"#8FBCBB",
	"#81A1C1",
	"#5E81AC",
}

// TagColors assigns every tag a palette colour. The first lookup hashes the
// tag; later lookups hit the cache, and Set pins a colour explicitly.
type TagColors struct {
	mu      sync.Mutex
	palette []Color
	cache   map[string]Color
}

func NewTagColors(palette []Color) *TagColors {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &TagColors{
		palette: append([]Color(nil), palette...),
		cache:   make(map[string]Color),
	}
}

// Get returns the colour for t, assigning one on first use.
func (c *TagColors) Get(t annotations.Tag) Color {
	key := t.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.cache[key]; ok {
		return col
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	col := c.palette[h.Sum32()%uint32(len(c.palette))]
	c.cache[key] = col
	return col
}

// Set pins the colour of t.
func (c *TagColors) Set(t annotations.Tag, col Color) {
	c.mu.Lock()
	c.cache[t.String()] = col
	c.mu.Unlock()
}

// Len returns how many tags have a colour.
func (c *TagColors) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
