// Package canvas translates pointer input into node position mutations and
// computes the rendered geometry of connections. It owns node dimensions
// itself so it stays portable outside any retained-mode UI tree.
package canvas

import (
	"fmt"

	"github.com/procurehub/floweditor/pkg/graph"
	"github.com/procurehub/floweditor/pkg/models"
)

// Point is a screen-space coordinate in pixels.
type Point struct {
	X float64
	Y float64
}

// Size is a node's rendered dimensions in logical units.
type Size struct {
	Width  float64
	Height float64
}

// DefaultNodeSize is used for any node without an explicit size override.
var DefaultNodeSize = Size{Width: 200, Height: 80}

// controlOffset is the horizontal distance of each Bézier control point from
// its endpoint, giving connections a smooth S-curve regardless of relative
// node placement.
const controlOffset = 100.0

// ConnectionPath is the rendered geometry of one connection: a cubic Bézier
// from the source node's right-center anchor to the target node's
// left-center anchor. Mid is the midpoint of the straight line between the
// anchors, where the marker and optional label are drawn; it deliberately
// approximates rather than computes the curve's true midpoint.
type ConnectionPath struct {
	Start    Point
	Control1 Point
	Control2 Point
	End      Point
	Mid      Point
	Label    string
}

// SVG renders the curve as an SVG path definition.
func (p ConnectionPath) SVG() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		p.Start.X, p.Start.Y,
		p.Control1.X, p.Control1.Y,
		p.Control2.X, p.Control2.Y,
		p.End.X, p.End.Y)
}

// Engine maintains per-gesture drag state for one editor instance and maps
// pointer events onto graph position mutations, scaled by the viewport's
// zoom factor. Only one node may be dragged at a time.
type Engine struct {
	graph    *graph.Graph
	viewport *Viewport
	sizes    map[string]Size

	dragging   bool
	dragNodeID string
	anchor     Point
}

// NewEngine creates a layout engine over the given graph and viewport.
func NewEngine(g *graph.Graph, viewport *Viewport) *Engine {
	return &Engine{
		graph:    g,
		viewport: viewport,
		sizes:    make(map[string]Size),
	}
}

// SetNodeSize overrides the rendered dimensions of one node.
func (e *Engine) SetNodeSize(nodeID string, size Size) {
	e.sizes[nodeID] = size
}

func (e *Engine) nodeSize(nodeID string) Size {
	if size, ok := e.sizes[nodeID]; ok {
		return size
	}

	return DefaultNodeSize
}

// Dragging returns the id of the node currently being dragged, if any.
func (e *Engine) Dragging() (string, bool) {
	return e.dragNodeID, e.dragging
}

// PointerDown begins a drag gesture on the given node. A second pointer-down
// while a drag is active is ignored, as is a pointer-down on an unknown
// node. Returns whether a gesture started.
func (e *Engine) PointerDown(nodeID string, at Point) bool {
	if e.dragging {
		return false
	}

	if _, ok := e.graph.Node(nodeID); !ok {
		return false
	}

	e.dragging = true
	e.dragNodeID = nodeID
	e.anchor = at

	return true
}

// PointerMove advances an active drag gesture. The screen-space delta since
// the last event is divided by the zoom factor so drag distance in logical
// coordinates stays consistent at any visual scale, and the result is
// clamped so neither coordinate goes negative. The anchor is reset after
// each application (incremental dragging), which avoids drift when the
// pointer re-enters after leaving the tracked element.
func (e *Engine) PointerMove(at Point) {
	if !e.dragging {
		return
	}

	node, ok := e.graph.Node(e.dragNodeID)
	if !ok {
		// Node deleted mid-drag: nothing to update, the next pointer-up
		// clears the gesture.
		e.anchor = at

		return
	}

	factor := e.viewport.Factor()
	position := models.Position{
		X: max(node.Position.X+(at.X-e.anchor.X)/factor, 0),
		Y: max(node.Position.Y+(at.Y-e.anchor.Y)/factor, 0),
	}

	e.graph.MoveNode(e.dragNodeID, position)
	e.anchor = at
}

// PointerUp ends the drag gesture. It is bound globally, not per node, so a
// gesture always resolves to idle even when the pointer left the tracking
// surface first.
func (e *Engine) PointerUp() {
	e.dragging = false
	e.dragNodeID = ""
}

// Path computes the rendered curve for a connection. Returns false when
// either endpoint node no longer exists.
func (e *Engine) Path(conn *models.Connection) (ConnectionPath, bool) {
	from, ok := e.graph.Node(conn.From)
	if !ok {
		return ConnectionPath{}, false
	}

	to, ok := e.graph.Node(conn.To)
	if !ok {
		return ConnectionPath{}, false
	}

	fromSize := e.nodeSize(from.ID)
	toSize := e.nodeSize(to.ID)

	start := Point{X: from.Position.X + fromSize.Width, Y: from.Position.Y + fromSize.Height/2}
	end := Point{X: to.Position.X, Y: to.Position.Y + toSize.Height/2}

	return ConnectionPath{
		Start:    start,
		Control1: Point{X: start.X + controlOffset, Y: start.Y},
		Control2: Point{X: end.X - controlOffset, Y: end.Y},
		End:      end,
		Mid:      Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2},
		Label:    conn.Label,
	}, true
}

// Paths computes the geometry for every connection whose endpoints still
// resolve, in connection-set order.
func (e *Engine) Paths() []ConnectionPath {
	conns := e.graph.Connections()
	paths := make([]ConnectionPath, 0, len(conns))

	for _, conn := range conns {
		if path, ok := e.Path(conn); ok {
			paths = append(paths, path)
		}
	}

	return paths
}
