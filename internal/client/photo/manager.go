package photo

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

const handlePrefix = "blob:"

// Manager hands out display handles for photo payloads. Each handle holds
// its payload until released; releasing is idempotent.
type Manager struct {
	mu      sync.Mutex
	handles map[string]models.ProfilePhoto
}

func NewManager() *Manager {
	return &Manager{handles: make(map[string]models.ProfilePhoto)}
}

// IsHandle reports whether s looks like a handle produced by a Manager.
func IsHandle(s string) bool {
	return strings.HasPrefix(s, handlePrefix)
}

// Acquire registers p and returns a new handle for it.
func (m *Manager) Acquire(p models.ProfilePhoto) string {
	h := handlePrefix + uuid.NewString()

	m.mu.Lock()
	m.handles[h] = p
	m.mu.Unlock()
	return h
}

// Open returns the payload behind handle.
func (m *Manager) Open(handle string) (models.ProfilePhoto, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.handles[handle]
	return p, ok
}

// Release frees handle. Strings that are not handles (data URLs, empty
// strings) and handles already released are ignored.
func (m *Manager) Release(handle string) {
	if !IsHandle(handle) {
		return
	}
	m.mu.Lock()
	delete(m.handles, handle)
	m.mu.Unlock()
}

// Live returns the number of outstanding handles.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Binding tracks the single source a display shows: a handle owned by the
// display or an embedded data URL. Replacing the photo releases the previous
// source; Close releases the current one.
type Binding struct {
	m       *Manager
	mu      sync.Mutex
	current string
}

func (m *Manager) Bind() *Binding {
	return &Binding{m: m}
}

// Set shows p through a new handle, or nothing when p is nil, and returns
// the source now in use.
func (b *Binding) Set(p *models.ProfilePhoto) string {
	var next string
	if p != nil {
		next = b.m.Acquire(*p)
	}
	b.swap(next)
	return next
}

// Embed shows p as a data URL, which needs no handle, and returns it.
func (b *Binding) Embed(p *models.ProfilePhoto) string {
	var next string
	if p != nil {
		next = DataURL(*p)
	}
	b.swap(next)
	return next
}

func (b *Binding) swap(next string) {
	b.mu.Lock()
	prev := b.current
	b.current = next
	b.mu.Unlock()

	b.m.Release(prev)
}

// Current returns the source in use, or "".
func (b *Binding) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Binding) Close() {
	b.swap("")
}
