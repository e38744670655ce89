package canvas

// Zoom bounds and step. The factor is a uniform visual scale on the
// rendering surface; stored node positions are never rescaled.
const (
	MinZoom  = 0.3
	MaxZoom  = 3.0
	zoomStep = 1.2
)

// Viewport owns the editing surface's zoom factor, independent of the graph
// data it displays.
type Viewport struct {
	factor float64
}

// NewViewport creates a viewport at the neutral 1.0 zoom factor.
func NewViewport() *Viewport {
	return &Viewport{factor: 1.0}
}

// Factor returns the current zoom factor.
func (v *Viewport) Factor() float64 {
	return v.factor
}

// ZoomIn steps the factor up, clamped to MaxZoom.
func (v *Viewport) ZoomIn() {
	v.factor = min(v.factor*zoomStep, MaxZoom)
}

// ZoomOut steps the factor down, clamped to MinZoom.
func (v *Viewport) ZoomOut() {
	v.factor = max(v.factor/zoomStep, MinZoom)
}

// Reset returns the factor to exactly 1.0.
func (v *Viewport) Reset() {
	v.factor = 1.0
}

// Wheel applies a scroll gesture. Only gestures with the platform zoom
// modifier held are treated as zoom input, so normal scrolling is never
// hijacked. Wheel-up (negative delta) zooms in, wheel-down zooms out.
func (v *Viewport) Wheel(deltaY float64, zoomModifier bool) {
	if !zoomModifier || deltaY == 0 {
		return
	}

	if deltaY < 0 {
		v.ZoomIn()
	} else {
		v.ZoomOut()
	}
}
