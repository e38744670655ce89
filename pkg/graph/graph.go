// Package graph holds the authoritative node and connection set of one
// workflow document and enforces referential integrity across mutations.
package graph

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/procurehub/floweditor/pkg/models"
)

// NodePatch describes a partial update to a node. Nil fields are left
// untouched.
type NodePatch struct {
	Name        *string
	Description *string
	Position    *models.Position
	Mandatory   *bool
	CanDelegate *bool
	Approval    *models.ApprovalConfig
	Condition   *models.ConditionConfig
}

// Graph is the mutable in-memory form of a workflow document's node and
// connection sets. It is not safe for concurrent use; the editor drives it
// from a single event loop.
type Graph struct {
	nodes       map[string]*models.Node
	nodeOrder   []string
	connections []*models.Connection
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*models.Node)}
}

// FromDocument builds a graph from a stored document, rejecting any
// connection whose endpoints are not among the document's nodes or that
// loops a node onto itself.
func FromDocument(doc *models.Workflow) (*Graph, error) {
	g := New()

	for _, node := range doc.Nodes {
		g.insert(node.Clone())
	}

	for _, conn := range doc.Connections {
		if _, ok := g.nodes[conn.From]; !ok {
			return nil, &MutationError{Op: "FromDocument", ID: conn.From, Err: ErrDanglingReference}
		}

		if _, ok := g.nodes[conn.To]; !ok {
			return nil, &MutationError{Op: "FromDocument", ID: conn.To, Err: ErrDanglingReference}
		}

		if conn.From == conn.To {
			return nil, &MutationError{Op: "FromDocument", ID: conn.From, Err: ErrSelfLoop}
		}

		copied := *conn
		g.connections = append(g.connections, &copied)
	}

	return g, nil
}

// FromJSON validates a raw document payload against the workflow schema,
// decodes it and builds a graph from it.
func FromJSON(data []byte) (*Graph, *models.Workflow, error) {
	if err := models.ValidateDocumentJSON(data); err != nil {
		return nil, nil, err
	}

	var doc models.Workflow
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode workflow document: %w", err)
	}

	g, err := FromDocument(&doc)
	if err != nil {
		return nil, nil, err
	}

	return g, &doc, nil
}

func (g *Graph) insert(node *models.Node) {
	g.nodes[node.ID] = node
	g.nodeOrder = append(g.nodeOrder, node.ID)
}

// AddNode creates a node of the given type at the given position with
// variant defaults and adds it to the graph.
func (g *Graph) AddNode(nodeType models.NodeType, position models.Position) (*models.Node, error) {
	if !nodeType.IsValid() {
		return nil, &MutationError{Op: "AddNode", Err: fmt.Errorf("%w: %q", ErrInvalidNodeType, nodeType)}
	}

	node := models.NewNode(nodeType, position)
	g.insert(node)

	return node, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*models.Node, bool) {
	node, ok := g.nodes[id]

	return node, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}

	return nodes
}

// Connections returns the connection set.
func (g *Graph) Connections() []*models.Connection {
	return g.connections
}

// UpdateNode applies a partial update to the node with the given id.
func (g *Graph) UpdateNode(id string, patch NodePatch) (*models.Node, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, &MutationError{Op: "UpdateNode", ID: id, Err: ErrNodeNotFound}
	}

	if patch.Name != nil {
		node.Name = *patch.Name
	}

	if patch.Description != nil {
		node.Description = *patch.Description
	}

	if patch.Position != nil {
		node.Position = *patch.Position
	}

	if patch.Mandatory != nil {
		node.Mandatory = *patch.Mandatory
	}

	if patch.CanDelegate != nil {
		node.CanDelegate = *patch.CanDelegate
	}

	if patch.Approval != nil && node.HasApprovers() {
		node.Approval = patch.Approval
	}

	if patch.Condition != nil && node.Type == models.NodeTypeCondition {
		node.Condition = patch.Condition
	}

	if err := node.Validate(); err != nil {
		return nil, &MutationError{Op: "UpdateNode", ID: id, Err: err}
	}

	return node, nil
}

// MoveNode sets a node's position directly. Unlike UpdateNode it tolerates a
// missing id: the canvas may still be mid-drag on a node that was deleted by
// a concurrent edit, and that must not fail.
func (g *Graph) MoveNode(id string, position models.Position) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}

	node.Position = position
}

// DeleteNode removes the node and every connection referencing it. Deleting
// an absent id is a no-op so double-invocation from racing UI events is safe.
func (g *Graph) DeleteNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}

	delete(g.nodes, id)

	for i, nodeID := range g.nodeOrder {
		if nodeID == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)

			break
		}
	}

	kept := g.connections[:0]

	for _, conn := range g.connections {
		if conn.From != id && conn.To != id {
			kept = append(kept, conn)
		}
	}

	g.connections = kept
}

// AddConnection creates a directed edge between two existing, distinct nodes.
func (g *Graph) AddConnection(from, to, label string) (*models.Connection, error) {
	if _, ok := g.nodes[from]; !ok {
		return nil, &MutationError{Op: "AddConnection", ID: from, Err: ErrInvalidReference}
	}

	if _, ok := g.nodes[to]; !ok {
		return nil, &MutationError{Op: "AddConnection", ID: to, Err: ErrInvalidReference}
	}

	if from == to {
		return nil, &MutationError{Op: "AddConnection", ID: from, Err: ErrSelfLoop}
	}

	conn := &models.Connection{
		ID:    uuid.New().String(),
		From:  from,
		To:    to,
		Label: label,
	}
	g.connections = append(g.connections, conn)

	return conn, nil
}

// DeleteConnection removes the connection with the given id. Idempotent.
func (g *Graph) DeleteConnection(id string) {
	for i, conn := range g.connections {
		if conn.ID == id {
			g.connections = append(g.connections[:i], g.connections[i+1:]...)

			return
		}
	}
}

// Serialize writes the graph's node and connection sets into the document.
// Elements are deep-copied so later graph mutations don't alias the
// serialized document.
func (g *Graph) Serialize(doc *models.Workflow) *models.Workflow {
	doc.Nodes = make([]*models.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		doc.Nodes = append(doc.Nodes, g.nodes[id].Clone())
	}

	doc.Connections = make([]*models.Connection, 0, len(g.connections))

	for _, conn := range g.connections {
		copied := *conn
		doc.Connections = append(doc.Connections, &copied)
	}

	return doc
}
