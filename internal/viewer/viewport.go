package viewer

import "math"

const (
	MinScale  = 1.0
	MaxScale  = 4.0
	ScaleStep = 0.5
	// QuickZoom is the scale a double click jumps to from rest.
	QuickZoom = 2.0
)

// ViewportState names the states of the fullscreen zoom/pan machine.
type ViewportState int

const (
	// Idle is the rest state: scale 1, no offset.
	Idle ViewportState = iota
	Zoomed
	Dragging
)

func (s ViewportState) String() string {
	switch s {
	case Zoomed:
		return "zoomed"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Viewport owns zoom scale and pan offset of the fullscreen image.
// Offset is always (0,0) while scale is 1.
type Viewport struct {
	scale      float64
	offset     Point
	dragging   bool
	dragStart  Point
	dragOrigin Point
	loaded     bool
}

// NewViewport returns a viewport at rest.
func NewViewport() *Viewport { return &Viewport{scale: MinScale} }

func (v *Viewport) Scale() float64 { return v.scale }
func (v *Viewport) Offset() Point  { return v.offset }
func (v *Viewport) Loaded() bool   { return v.loaded }
func (v *Viewport) Dragging() bool { return v.dragging }

// State derives the machine state.
func (v *Viewport) State() ViewportState {
	switch {
	case v.scale <= MinScale:
		return Idle
	case v.dragging:
		return Dragging
	default:
		return Zoomed
	}
}

func (v *Viewport) CanZoomIn() bool  { return v.scale < MaxScale }
func (v *Viewport) CanZoomOut() bool { return v.scale > MinScale }
func (v *Viewport) CanReset() bool   { return v.scale != MinScale }

func (v *Viewport) ZoomIn() {
	v.scale = math.Min(v.scale+ScaleStep, MaxScale)
}

// ZoomOut steps the scale down; reaching 1 clears the offset and any drag.
func (v *Viewport) ZoomOut() {
	v.scale = math.Max(v.scale-ScaleStep, MinScale)
	if v.scale == MinScale {
		v.rest()
	}
}

// Reset returns to scale 1 with no offset.
func (v *Viewport) Reset() {
	v.scale = MinScale
	v.rest()
}

// DoubleClick toggles between rest and QuickZoom.
func (v *Viewport) DoubleClick() {
	if v.scale > MinScale {
		v.Reset()
		return
	}
	v.scale = QuickZoom
}

// DragStart begins panning from pointer p. It is a no-op at scale 1.
func (v *Viewport) DragStart(p Point) bool {
	if v.scale <= MinScale {
		return false
	}
	v.dragging = true
	v.dragStart = p
	v.dragOrigin = v.offset
	return true
}

// DragMove pans so the image follows the pointer.
func (v *Viewport) DragMove(p Point) bool {
	if !v.dragging || v.scale <= MinScale {
		return false
	}
	v.offset = Point{
		X: p.X - v.dragStart.X + v.dragOrigin.X,
		Y: p.Y - v.dragStart.Y + v.dragOrigin.Y,
	}
	return true
}

// DragEnd stops panning and keeps the current offset.
func (v *Viewport) DragEnd() { v.dragging = false }

// MarkLoaded records that the current image finished loading.
func (v *Viewport) MarkLoaded() { v.loaded = true }

// ImageChanged resets everything, including the loaded flag. Zoom and pan
// never carry over to another image.
func (v *Viewport) ImageChanged() {
	v.Reset()
	v.loaded = false
}

func (v *Viewport) rest() {
	v.offset = Point{}
	v.dragging = false
}
