// Package sprites holds the built-in sprite atlas and the text compositor.
// Frames are pre-rendered character grids (the "pre-decoded image handles"
// the animation core selects between); the compositor merges the five layer
// selections back-to-front into screen lines.
package sprites

import (
	"fmt"

	"github.com/pawsd/deskcat/internal/anim"
)

// Canvas dimensions in character cells. Every frame is padded to this size
// so layers align without per-sprite offsets.
const (
	Width  = 22
	Height = 9
)

// Frame is one pre-rendered sprite. Spaces are transparent.
type Frame struct {
	ID   anim.SpriteID
	Rows []string
}

// Atlas binds every sprite ID the controller can emit to its frame. It is
// built once at startup; lookups at render time never fail for bound IDs.
type Atlas struct {
	frames map[anim.SpriteID]*Frame
}

// Load builds the built-in atlas. It returns an error if any frame exceeds
// the canvas bounds, which would misalign the composite.
func Load() (*Atlas, error) {
	a := &Atlas{frames: make(map[anim.SpriteID]*Frame, len(artwork))}
	for id, rows := range artwork {
		if len(rows) > Height {
			return nil, fmt.Errorf("sprite %s: %d rows exceeds canvas height %d", id, len(rows), Height)
		}
		for i, row := range rows {
			if len([]rune(row)) > Width {
				return nil, fmt.Errorf("sprite %s row %d: width exceeds canvas width %d", id, i, Width)
			}
		}
		a.frames[id] = &Frame{ID: id, Rows: rows}
	}
	return a, nil
}

// Lookup returns the frame for id.
func (a *Atlas) Lookup(id anim.SpriteID) (*Frame, bool) {
	f, ok := a.frames[id]
	return f, ok
}

// IDs returns the bound sprite IDs, for totality checks.
func (a *Atlas) IDs() []anim.SpriteID {
	ids := make([]anim.SpriteID, 0, len(a.frames))
	for id := range a.frames {
		ids = append(ids, id)
	}
	return ids
}

// Composite merges a layer selection into Height screen lines, overlaying
// non-space cells in Z-order.
func (a *Atlas) Composite(sel anim.Selection) []string {
	c := NewCanvas(a)
	for layer := anim.Layer(0); layer < anim.NumLayers; layer++ {
		if sel[layer] != anim.None {
			c.Draw(layer, sel[layer])
		}
	}
	return c.Lines()
}

// Canvas is a character-cell frame buffer implementing anim.Sink. Draw
// calls arrive in Z-order, so later layers overwrite earlier ones.
type Canvas struct {
	atlas *Atlas
	cells [Height][Width]rune
}

// NewCanvas returns a cleared canvas backed by the given atlas.
func NewCanvas(atlas *Atlas) *Canvas {
	c := &Canvas{atlas: atlas}
	c.Clear()
	return c
}

// Clear resets every cell to transparent.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

// Draw overlays the sprite's non-space cells. Unbound IDs are ignored: the
// controller only emits bound IDs, and a missing binding is an asset-table
// construction bug caught by tests, not a render-time error.
func (c *Canvas) Draw(_ anim.Layer, id anim.SpriteID) {
	frame, ok := c.atlas.Lookup(id)
	if !ok {
		return
	}
	for y, row := range frame.Rows {
		for x, r := range []rune(row) {
			if r != ' ' {
				c.cells[y][x] = r
			}
		}
	}
}

// Lines returns the composited rows.
func (c *Canvas) Lines() []string {
	lines := make([]string, Height)
	for y := range c.cells {
		lines[y] = string(c.cells[y][:])
	}
	return lines
}
