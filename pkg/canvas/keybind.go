package canvas

// Shortcuts is a global key-binding registry scoped to one editor mount.
// Bindings live from Bind until Close; a closed registry drops every
// binding and ignores further input, so handlers never leak across editing
// sessions.
type Shortcuts struct {
	bindings map[string]func()
	closed   bool
}

// NewShortcuts creates an empty registry.
func NewShortcuts() *Shortcuts {
	return &Shortcuts{bindings: make(map[string]func())}
}

// Bind registers a handler for a key chord, replacing any previous binding.
func (s *Shortcuts) Bind(chord string, handler func()) {
	if s.closed {
		return
	}

	s.bindings[chord] = handler
}

// Handle dispatches a key chord to its handler. Returns whether the chord
// was bound.
func (s *Shortcuts) Handle(chord string) bool {
	if s.closed {
		return false
	}

	handler, ok := s.bindings[chord]
	if !ok {
		return false
	}

	handler()

	return true
}

// Close unbinds everything. Safe to call more than once.
func (s *Shortcuts) Close() {
	s.closed = true
	s.bindings = nil
}

// BindZoom registers the standard zoom chords against a viewport.
func (s *Shortcuts) BindZoom(viewport *Viewport) {
	s.Bind("mod+=", viewport.ZoomIn)
	s.Bind("mod+-", viewport.ZoomOut)
	s.Bind("mod+0", viewport.Reset)
}
