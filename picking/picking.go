// Package picking implements hit-testing identifiers for rendered
// primitives. Every box and line a projection pass emits carries an ID; the
// renderer draws primitives into an offscreen buffer using the ID's color
// encoding, and reading a pixel back yields the ID of whatever was drawn
// there last.
package picking

import (
	"image/color"
	"sync"

	"honnef.co/go/safeish"
)

type Kind uint8

const (
	KindBox Kind = iota
	KindLine
	KindPickable
)

// BatcherID distinguishes the batchers primitives may come from, so that an
// ID read back from the pick buffer can be routed to the batcher that knows
// its user data.
type BatcherID uint8

const (
	BatcherTimeGraph BatcherID = iota
	BatcherUI
)

// ID identifies one pickable primitive. It packs kind, batcher and element
// index into 32 bits so that it can round-trip through an RGBA8 color
// losslessly.
//
// Layout, from the least significant bit: 28 bits element, 3 bits kind, 1
// bit batcher.
type ID uint32

const elementBits = 28

// MaxElement is the largest element index an ID can carry.
const MaxElement = 1<<elementBits - 1

func MakeID(kind Kind, element uint32, batcher BatcherID) ID {
	return ID(element&MaxElement | uint32(kind)<<elementBits | uint32(batcher)<<31)
}

func (id ID) Kind() Kind         { return Kind(id >> elementBits & 0b111) }
func (id ID) Element() uint32    { return uint32(id) & MaxElement }
func (id ID) Batcher() BatcherID { return BatcherID(id >> 31) }

// Color encodes the ID as the RGBA color to draw into the pick buffer.
func (id ID) Color() color.NRGBA {
	b := safeish.Cast[[4]byte](uint32(id))
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}
}

// FromColor decodes an ID from a pick buffer pixel. It is the inverse of
// ID.Color.
func FromColor(c color.NRGBA) ID {
	return ID(safeish.Cast[uint32]([4]byte{c.R, c.G, c.B, c.A}))
}

// Pickable is an interactive element that can be picked by clicking it.
type Pickable interface {
	OnPick(x, y int)
	OnDrag(x, y int)
	OnRelease()
	// Draggable reports whether the element reacts to being dragged while
	// picked.
	Draggable() bool
}

// Manager allocates IDs for pickable UI elements and tracks which one is
// currently picked. Primitive IDs (boxes and lines) are allocated by the
// batchers instead; the Manager only deals in KindPickable.
type Manager struct {
	mu        sync.Mutex
	idCounter uint32
	pickables map[uint32]Pickable
	picked    Pickable
}

func NewManager() *Manager {
	return &Manager{pickables: map[uint32]Pickable{}}
}

// CreatePickableID registers p and returns the ID whose color p should be
// drawn with in the pick buffer.
func (m *Manager) CreatePickableID(p Pickable, batcher BatcherID) ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idCounter++
	id := MakeID(KindPickable, m.idCounter, batcher)
	m.pickables[m.idCounter] = p
	return id
}

// PickableColor is a convenience that registers p and returns the pick
// buffer color directly.
func (m *Manager) PickableColor(p Pickable, batcher BatcherID) color.NRGBA {
	return m.CreatePickableID(p, batcher).Color()
}

// Reset forgets all registered pickables and restarts ID allocation. Called
// when a capture is cleared.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.pickables)
	m.idCounter = 0
	m.picked = nil
}

func (m *Manager) GetPickableFromID(id ID) (Pickable, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pickables[id.Element()]
	return p, ok
}

// Pick makes the element identified by id the picked element, if any, and
// notifies it of the pick position.
func (m *Manager) Pick(id ID, x, y int) {
	p, _ := m.GetPickableFromID(id)
	if p != nil {
		p.OnPick(x, y)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.picked = p
}

// Release notifies the picked element, if any, and clears the pick.
func (m *Manager) Release() {
	m.mu.Lock()
	p := m.picked
	m.mu.Unlock()
	if p != nil {
		p.OnRelease()
		m.mu.Lock()
		m.picked = nil
		m.mu.Unlock()
	}
}

func (m *Manager) Drag(x, y int) {
	m.mu.Lock()
	p := m.picked
	m.mu.Unlock()
	if p != nil && p.Draggable() {
		p.OnDrag(x, y)
	}
}

func (m *Manager) IsDragging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.picked != nil && m.picked.Draggable()
}

// IsThisElementPicked reports whether p is the currently picked element.
func (m *Manager) IsThisElementPicked(p Pickable) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.picked != nil && m.picked == p
}
