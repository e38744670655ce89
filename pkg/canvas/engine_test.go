package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehub/floweditor/pkg/graph"
	"github.com/procurehub/floweditor/pkg/models"
)

func newTestEngine(t *testing.T) (*Engine, *graph.Graph, *Viewport) {
	t.Helper()

	g := graph.New()
	viewport := NewViewport()

	return NewEngine(g, viewport), g, viewport
}

func TestDrag_NetDeltaScaledByZoom(t *testing.T) {
	engine, g, viewport := newTestEngine(t)

	node, err := g.AddNode(models.NodeTypeApproval, models.Position{X: 100, Y: 100})
	require.NoError(t, err)

	viewport.ZoomIn()
	viewport.ZoomIn() // factor 1.44
	factor := viewport.Factor()

	require.True(t, engine.PointerDown(node.ID, Point{X: 10, Y: 10}))

	// Three moves summing to a screen delta of (60, 30).
	engine.PointerMove(Point{X: 30, Y: 15})
	engine.PointerMove(Point{X: 50, Y: 25})
	engine.PointerMove(Point{X: 70, Y: 40})
	engine.PointerUp()

	assert.InDelta(t, 100+60/factor, node.Position.X, 1e-9)
	assert.InDelta(t, 100+30/factor, node.Position.Y, 1e-9)
}

func TestDrag_ClampsAtZeroPerAxis(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	node, err := g.AddNode(models.NodeTypeApproval, models.Position{X: 5, Y: 40})
	require.NoError(t, err)

	require.True(t, engine.PointerDown(node.ID, Point{X: 100, Y: 100}))
	engine.PointerMove(Point{X: 40, Y: 90})

	assert.Equal(t, 0.0, node.Position.X, "x clamps at zero")
	assert.InDelta(t, 30.0, node.Position.Y, 1e-9, "y keeps moving independently")
}

func TestDrag_SecondPointerDownIgnored(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	a, _ := g.AddNode(models.NodeTypeApproval, models.Position{X: 100, Y: 100})
	b, _ := g.AddNode(models.NodeTypeCondition, models.Position{X: 300, Y: 100})

	require.True(t, engine.PointerDown(a.ID, Point{}))
	assert.False(t, engine.PointerDown(b.ID, Point{}), "drags are exclusive")

	dragged, active := engine.Dragging()
	assert.True(t, active)
	assert.Equal(t, a.ID, dragged)
}

func TestDrag_UnknownNodeDoesNotStartGesture(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	assert.False(t, engine.PointerDown("approval-gone", Point{}))

	_, active := engine.Dragging()
	assert.False(t, active)
}

func TestDrag_NodeDeletedMidGesture(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	node, _ := g.AddNode(models.NodeTypeApproval, models.Position{X: 100, Y: 100})
	require.True(t, engine.PointerDown(node.ID, Point{X: 0, Y: 0}))

	g.DeleteNode(node.ID)

	assert.NotPanics(t, func() {
		engine.PointerMove(Point{X: 50, Y: 50})
	})

	// The next pointer-up anywhere resolves the gesture.
	engine.PointerUp()
	_, active := engine.Dragging()
	assert.False(t, active)
}

func TestDrag_MoveWithoutGestureIsNoOp(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	node, _ := g.AddNode(models.NodeTypeApproval, models.Position{X: 100, Y: 100})
	engine.PointerMove(Point{X: 500, Y: 500})

	assert.Equal(t, models.Position{X: 100, Y: 100}, node.Position)
}

func TestPath_BezierAnchorsAndControls(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	from, _ := g.AddNode(models.NodeTypeStart, models.Position{X: 100, Y: 300})
	to, _ := g.AddNode(models.NodeTypeEnd, models.Position{X: 700, Y: 500})

	conn, err := g.AddConnection(from.ID, to.ID, "true")
	require.NoError(t, err)

	path, ok := engine.Path(conn)
	require.True(t, ok)

	// Right-center of the source, left-center of the target.
	assert.Equal(t, Point{X: 100 + DefaultNodeSize.Width, Y: 300 + DefaultNodeSize.Height/2}, path.Start)
	assert.Equal(t, Point{X: 700, Y: 500 + DefaultNodeSize.Height/2}, path.End)

	// Control points sit a fixed horizontal offset from each endpoint.
	assert.Equal(t, Point{X: path.Start.X + 100, Y: path.Start.Y}, path.Control1)
	assert.Equal(t, Point{X: path.End.X - 100, Y: path.End.Y}, path.Control2)

	// Marker midpoint is the straight-line midpoint between the anchors.
	assert.Equal(t, Point{X: (path.Start.X + path.End.X) / 2, Y: (path.Start.Y + path.End.Y) / 2}, path.Mid)

	assert.Equal(t, "true", path.Label)
	assert.Contains(t, path.SVG(), "M 300 340 C ")
}

func TestPath_NodeSizeOverride(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	from, _ := g.AddNode(models.NodeTypeStart, models.Position{X: 0, Y: 0})
	to, _ := g.AddNode(models.NodeTypeEnd, models.Position{X: 400, Y: 0})
	conn, err := g.AddConnection(from.ID, to.ID, "")
	require.NoError(t, err)

	engine.SetNodeSize(from.ID, Size{Width: 120, Height: 48})

	path, ok := engine.Path(conn)
	require.True(t, ok)
	assert.Equal(t, Point{X: 120, Y: 24}, path.Start)
	assert.Equal(t, Point{X: 400, Y: DefaultNodeSize.Height / 2}, path.End)
}

func TestPaths_SkipsConnectionsWithMissingEndpoints(t *testing.T) {
	engine, g, _ := newTestEngine(t)

	a, _ := g.AddNode(models.NodeTypeStart, models.Position{})
	b, _ := g.AddNode(models.NodeTypeApproval, models.Position{X: 300, Y: 0})
	c, _ := g.AddNode(models.NodeTypeEnd, models.Position{X: 600, Y: 0})

	_, err := g.AddConnection(a.ID, b.ID, "")
	require.NoError(t, err)
	_, err = g.AddConnection(b.ID, c.ID, "")
	require.NoError(t, err)

	assert.Len(t, engine.Paths(), 2)

	// Cascade removes both connections touching b.
	g.DeleteNode(b.ID)
	assert.Empty(t, engine.Paths())
}

func TestShortcuts(t *testing.T) {
	shortcuts := NewShortcuts()
	viewport := NewViewport()
	shortcuts.BindZoom(viewport)

	assert.True(t, shortcuts.Handle("mod+="))
	assert.InDelta(t, 1.2, viewport.Factor(), 1e-9)

	assert.True(t, shortcuts.Handle("mod+0"))
	assert.Equal(t, 1.0, viewport.Factor())

	assert.False(t, shortcuts.Handle("mod+s"), "unbound chords are reported unhandled")

	shortcuts.Close()
	assert.False(t, shortcuts.Handle("mod+="), "a closed registry ignores input")
	assert.Equal(t, 1.0, viewport.Factor())

	assert.NotPanics(t, func() {
		shortcuts.Close()
		shortcuts.Bind("mod+x", func() {})
	})
}
