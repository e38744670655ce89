// Package session mediates user intent between the editor surface and the
// graph, canvas and store layers. A Session owns the currently active
// document and selected node for one editing surface; nothing here survives
// the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/procurehub/floweditor/pkg/canvas"
	"github.com/procurehub/floweditor/pkg/graph"
	"github.com/procurehub/floweditor/pkg/models"
	"github.com/procurehub/floweditor/pkg/persistence"
	"github.com/procurehub/floweditor/pkg/refdata"
)

// Store is the document store a session saves through: plain persistence
// plus the lifecycle operations. The HTTP client satisfies it against the
// remote API; any local persistence backend can be wrapped to as well.
type Store interface {
	persistence.Persistence
	Publish(ctx context.Context, id string) (*models.Workflow, error)
	Clone(ctx context.Context, id, name string) (*models.Workflow, error)
}

// Session errors.
var (
	ErrNoActiveDocument = errors.New("no active workflow document")
	ErrSaveInFlight     = errors.New("a save for this workflow is already in flight")
	ErrNodeNotFound     = graph.ErrNodeNotFound
)

// New-node placement: fresh nodes land on a circle around the canvas center
// so consecutive adds don't stack on one spot.
const (
	canvasCenterX   = 400.0
	canvasCenterY   = 300.0
	placementRadius = 150.0
)

// Session is the editor session controller for one editing surface.
type Session struct {
	logger  *slog.Logger
	store   Store
	catalog *models.FieldCatalog

	viewport  *canvas.Viewport
	shortcuts *canvas.Shortcuts
	engine    *canvas.Engine
	graph     *graph.Graph

	active     *models.Workflow
	selectedID string

	mu     sync.Mutex
	saving map[string]bool
}

// New creates a session over the given store. The catalog seeds condition
// clause validation; pass the one built from live reference data.
func New(logger *slog.Logger, store Store, catalog *models.FieldCatalog) *Session {
	s := &Session{
		logger:    logger,
		store:     store,
		catalog:   catalog,
		viewport:  canvas.NewViewport(),
		shortcuts: canvas.NewShortcuts(),
		saving:    make(map[string]bool),
	}
	s.shortcuts.BindZoom(s.viewport)

	return s
}

// Close releases the session's globally bound resources. The session is
// unusable afterwards; create a new one for the next editing surface.
func (s *Session) Close() {
	if s.engine != nil {
		s.engine.PointerUp()
	}

	s.shortcuts.Close()
}

// Viewport returns the session's zoom controller.
func (s *Session) Viewport() *canvas.Viewport {
	return s.viewport
}

// Shortcuts returns the session's key-binding registry.
func (s *Session) Shortcuts() *canvas.Shortcuts {
	return s.shortcuts
}

// Engine returns the layout engine for the active document, or nil when no
// document is open.
func (s *Session) Engine() *canvas.Engine {
	return s.engine
}

// Graph returns the active document's graph, or nil when no document is open.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Document returns the active document, or nil when none is open.
func (s *Session) Document() *models.Workflow {
	return s.active
}

// NewDraft opens a fresh unsaved draft seeded with start and end nodes.
func (s *Session) NewDraft(name, description string) *models.Workflow {
	doc := models.NewDraft(name, description)

	// The seeded draft is structurally valid, so this cannot fail.
	g, _ := graph.FromDocument(doc)
	s.activate(doc, g)

	return doc
}

// Open loads a stored workflow document into the session.
func (s *Session) Open(ctx context.Context, id string) (*models.Workflow, error) {
	doc, err := s.store.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDocument(doc)
	if err != nil {
		return nil, err
	}

	s.activate(doc, g)
	s.logger.InfoContext(ctx, "Opened workflow", "workflow_id", id, "name", doc.Name)

	return doc, nil
}

func (s *Session) activate(doc *models.Workflow, g *graph.Graph) {
	s.active = doc
	s.graph = g
	s.engine = canvas.NewEngine(g, s.viewport)
	s.selectedID = ""
}

// SelectNode marks a node as the configuration target.
func (s *Session) SelectNode(id string) error {
	if s.graph == nil {
		return ErrNoActiveDocument
	}

	if _, ok := s.graph.Node(id); !ok {
		return fmt.Errorf("select node %s: %w", id, ErrNodeNotFound)
	}

	s.selectedID = id

	return nil
}

// SelectedNode returns the node currently targeted by the configuration
// form, if any.
func (s *Session) SelectedNode() (*models.Node, bool) {
	if s.graph == nil || s.selectedID == "" {
		return nil, false
	}

	return s.graph.Node(s.selectedID)
}

// ClearSelection drops the current node selection.
func (s *Session) ClearSelection() {
	s.selectedID = ""
}

// AddNode creates a node of the given type on a random point of the
// placement circle around the canvas center.
func (s *Session) AddNode(nodeType models.NodeType) (*models.Node, error) {
	if s.graph == nil {
		return nil, ErrNoActiveDocument
	}

	angle := rand.Float64() * 2 * math.Pi
	position := models.Position{
		X: math.Max(canvasCenterX+placementRadius*math.Cos(angle), 0),
		Y: math.Max(canvasCenterY+placementRadius*math.Sin(angle), 0),
	}

	return s.graph.AddNode(nodeType, position)
}

// UpdateNode applies a configuration patch to a node.
func (s *Session) UpdateNode(id string, patch graph.NodePatch) (*models.Node, error) {
	if s.graph == nil {
		return nil, ErrNoActiveDocument
	}

	return s.graph.UpdateNode(id, patch)
}

// DeleteNode removes a node, its connections, and any selection on it.
func (s *Session) DeleteNode(id string) {
	if s.graph == nil {
		return
	}

	if s.selectedID == id {
		s.selectedID = ""
	}

	s.graph.DeleteNode(id)
}

// Connect adds a directed connection between two nodes.
func (s *Session) Connect(from, to, label string) (*models.Connection, error) {
	if s.graph == nil {
		return nil, ErrNoActiveDocument
	}

	return s.graph.AddConnection(from, to, label)
}

// DeleteConnection removes a connection. Idempotent.
func (s *Session) DeleteConnection(id string) {
	if s.graph == nil {
		return
	}

	s.graph.DeleteConnection(id)
}

// AssignApprovers sets an approval node's approvers from full user records,
// reducing each to the minimal reference shape the wire format expects.
func (s *Session) AssignApprovers(nodeID string, users []refdata.User) (*models.Node, error) {
	if s.graph == nil {
		return nil, ErrNoActiveDocument
	}

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("assign approvers to %s: %w", nodeID, ErrNodeNotFound)
	}

	if !node.HasApprovers() {
		return nil, fmt.Errorf("node %s (%s) does not take approvers", nodeID, node.Type)
	}

	approval := *node.Approval
	approval.Approvers = make([]models.Approver, 0, len(users))

	for _, user := range users {
		approval.Approvers = append(approval.Approvers, user.AsApprover())
	}

	return s.graph.UpdateNode(nodeID, graph.NodePatch{Approval: &approval})
}

// AddClause validates and appends a condition clause on the selected field
// catalog and the given condition node.
func (s *Session) AddClause(nodeID string, clause models.ConditionClause) error {
	if s.graph == nil {
		return ErrNoActiveDocument
	}

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return fmt.Errorf("add clause to %s: %w", nodeID, ErrNodeNotFound)
	}

	return s.catalog.AddClause(node, clause)
}

// RemoveClause drops the clause at index from a condition node.
func (s *Session) RemoveClause(nodeID string, index int) error {
	if s.graph == nil {
		return ErrNoActiveDocument
	}

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return fmt.Errorf("remove clause from %s: %w", nodeID, ErrNodeNotFound)
	}

	return models.RemoveClause(node, index)
}

// Save serializes the active graph into the document and writes it through
// the store. Saves on the same document never overlap: a second Save while
// one is in flight fails with ErrSaveInFlight and changes nothing. A failed
// save leaves the in-memory document fully editable.
func (s *Session) Save(ctx context.Context) error {
	if s.active == nil {
		return ErrNoActiveDocument
	}

	key := s.active.ID // Empty for unsaved drafts; they share one slot.

	s.mu.Lock()
	if s.saving[key] {
		s.mu.Unlock()

		return ErrSaveInFlight
	}

	s.saving[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.saving, key)
		s.mu.Unlock()
	}()

	s.graph.Serialize(s.active)

	if err := s.store.SaveWorkflow(ctx, s.active); err != nil {
		s.logger.WarnContext(ctx, "Save failed, document remains editable",
			"workflow_id", key, "error", err)

		return err
	}

	s.logger.InfoContext(ctx, "Saved workflow", "workflow_id", s.active.ID)

	return nil
}

// Publish saves the active document and transitions it to published.
func (s *Session) Publish(ctx context.Context) (*models.Workflow, error) {
	if s.active == nil {
		return nil, ErrNoActiveDocument
	}

	if err := s.Save(ctx); err != nil {
		return nil, err
	}

	published, err := s.store.Publish(ctx, s.active.ID)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDocument(published)
	if err != nil {
		return nil, err
	}

	s.activate(published, g)

	return published, nil
}

// CloneActive asks the store for a draft copy of the active document and
// opens the copy for editing.
func (s *Session) CloneActive(ctx context.Context, name string) (*models.Workflow, error) {
	if s.active == nil || s.active.ID == "" {
		return nil, ErrNoActiveDocument
	}

	clone, err := s.store.Clone(ctx, s.active.ID, name)
	if err != nil {
		return nil, err
	}

	g, err := graph.FromDocument(clone)
	if err != nil {
		return nil, err
	}

	s.activate(clone, g)

	return clone, nil
}

// Delete removes the active document from the store and clears intra-session
// state.
func (s *Session) Delete(ctx context.Context) error {
	if s.active == nil {
		return ErrNoActiveDocument
	}

	if s.active.ID != "" {
		if err := s.store.DeleteWorkflow(ctx, s.active.ID); err != nil {
			return err
		}
	}

	s.active = nil
	s.graph = nil
	s.engine = nil
	s.selectedID = ""

	return nil
}
