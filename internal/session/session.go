// Package session keeps per-visitor interaction state. A visitor is
// identified by a cookie id; each one gets a private namespace of the shared
// store and its own viewer and contact form.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/clock"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/kv"
	"github.com/Zachkp/folio/internal/reveal"
	"github.com/Zachkp/folio/internal/viewer"
)

// CookieName is the visitor id cookie.
const CookieName = "folio_visitor"

// KeyPrefix is the store prefix under which every visitor namespace lives.
const KeyPrefix = "visitor:"

// Visitor is one browser's state.
type Visitor struct {
	ID      string
	Store   kv.Store
	Viewer  *viewer.Viewer
	Contact *contact.Form
	Reveal  *reveal.Scheduler

	mu       sync.Mutex
	filter   string
	revealed map[string]bool
	lastSeen time.Time
}

// RevealedSet returns a copy of the ids whose animation already ran.
func (v *Visitor) RevealedSet() map[string]bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]bool, len(v.revealed))
	for id := range v.revealed {
		out[id] = true
	}
	return out
}

func (v *Visitor) markRevealed(e reveal.Entry) {
	v.mu.Lock()
	v.revealed[e.ID] = true
	v.mu.Unlock()
}

// Filter is the active works category.
func (v *Visitor) Filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *Visitor) SetFilter(f string) {
	if f == "" {
		f = catalog.All
	}
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// Manager owns the live visitors.
type Manager struct {
	store kv.Store
	clock clock.Clock
	idle  time.Duration
	log   *slog.Logger
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*Visitor
}

// NewManager returns a Manager whose visitors persist into store. Visitors
// unseen for idle are dropped by Sweep; their stored data stays.
func NewManager(store kv.Store, c clock.Clock, idle time.Duration, logger *slog.Logger) *Manager {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		clock:    c,
		idle:     idle,
		log:      logger,
		now:      time.Now,
		visitors: make(map[string]*Visitor),
	}
}

// Namespace returns the store prefix of visitor id.
func Namespace(id string) string { return KeyPrefix + id + ":" }

// Get returns the visitor for id, creating it when id is unknown. An id that
// is not a UUID is replaced by a fresh one; created reports that the caller
// must (re)issue the cookie.
func (m *Manager) Get(id string) (v *Visitor, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		created = true
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.visitors[id]; ok {
		v.touch(now)
		return v, created
	}
	v = &Visitor{
		ID:       id,
		Store:    kv.Namespace(m.store, Namespace(id)),
		Viewer:   viewer.New(m.clock),
		Contact:  &contact.Form{},
		filter:   catalog.All,
		revealed: make(map[string]bool),
		lastSeen: now,
	}
	v.Reveal = reveal.NewScheduler(m.clock, v.markRevealed)
	m.visitors[id] = v
	return v, created
}

// Lookup returns a live visitor without creating one.
func (m *Manager) Lookup(id string) (*Visitor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visitors[id]
	return v, ok
}

// Len is the number of live visitors.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

// Sweep drops visitors idle longer than the idle timeout, closing their
// viewers and reveal schedulers so no timers outlive them. It returns how many were dropped.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idle)
	var stale []*Visitor

	m.mu.Lock()
	for id, v := range m.visitors {
		if v.idleSince().Before(cutoff) {
			stale = append(stale, v)
			delete(m.visitors, id)
		}
	}
	m.mu.Unlock()

	for _, v := range stale {
		v.close()
	}
	if len(stale) > 0 {
		m.log.Debug("swept idle visitors", "count", len(stale), "live", m.Len())
	}
	return len(stale)
}

// CloseAll closes every viewer and reveal scheduler, for shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	vs := make([]*Visitor, 0, len(m.visitors))
	for _, v := range m.visitors {
		vs = append(vs, v)
	}
	m.mu.Unlock()
	for _, v := range vs {
		v.close()
	}
}

func (v *Visitor) close() {
	v.Viewer.Close()
	v.Reveal.Stop()
}
