// Package session owns the per-session state the resolver reads: the
// completed archetype catalog and the source index.
//
// Both are expensive to build and only change when the game publishes a new
// recipe tree. A [Manager] builds them on first use, keeps them while the
// recipe tree digest stays the same, and rebuilds when the digest changes or
// the session is invalidated.
//
// # Concurrency
//
// A [Session] is immutable once published, apart from its source index,
// which fills lazily under its own lock. Builds are serialized; readers never
// block on a build in progress and keep using the previous session until the
// new one is swapped in.
//
// # Usage
//
//	m := session.NewManager(builder, session.Options{Logger: logger})
//	report, sess, err := m.Resolve(ctx, snapshot, nil, needs.Options{OnlyNeeded: true})
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/needs"
	"github.com/matzehuels/equipneeds/pkg/player"
	"github.com/matzehuels/equipneeds/pkg/sources"
)

// ErrNoCatalog is returned when no session has been built yet.
var ErrNoCatalog = errors.New("no catalog loaded")

// Session is one built catalog with its source index.
type Session struct {
	ID      uuid.UUID
	Digest  string
	Catalog *catalog.Catalog
	// AllCrew is the full crew catalog with slot ids reconciled to Catalog.
	AllCrew []player.Crew
	Sources *sources.Index
	Report  catalog.Report
	BuiltAt time.Time
}

// Options configures a [Manager].
type Options struct {
	MaxIterations int         // Expansion bound per pass (default: needs.DefaultMaxIterations)
	Logger        *log.Logger // Defaults to log.Default()
}

// Manager builds and caches sessions.
type Manager struct {
	builder *catalog.Builder
	opts    Options

	mu      sync.RWMutex
	current *Session

	// building serializes builds so concurrent loads of a new digest build
	// once.
	building sync.Mutex
}

// NewManager creates a manager that builds catalogs with b.
func NewManager(b *catalog.Builder, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Manager{builder: b, opts: opts}
}

// Current returns the published session or ErrNoCatalog.
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, ErrNoCatalog
	}
	return m.current, nil
}

// Invalidate drops the published session. The next Load rebuilds.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.opts.Logger.Info("session invalidated", "session", m.current.ID, "digest", m.current.Digest)
	}
	m.current = nil
}

// Load returns a session matching snap's recipe tree digest, building one if
// needed. An empty digest always rebuilds because freshness cannot be
// checked.
func (m *Manager) Load(ctx context.Context, snap *player.Snapshot) (*Session, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	if s := m.reusable(snap.RecipeTreeDigest); s != nil {
		s.Sources.Build(snap.Factions(), snap.CadetMissions())
		return s, nil
	}

	m.building.Lock()
	defer m.building.Unlock()

	// another caller may have finished the build while we waited
	if s := m.reusable(snap.RecipeTreeDigest); s != nil {
		s.Sources.Build(snap.Factions(), snap.CadetMissions())
		return s, nil
	}

	res, err := m.builder.Build(ctx, catalog.Input{
		Digest:  snap.RecipeTreeDigest,
		Live:    snap.ItemArchetypes,
		Roster:  snap.Roster(),
		AllCrew: snap.FullCrewCatalog(),
	})
	if err != nil {
		return nil, err
	}

	idx := sources.New()
	idx.Build(snap.Factions(), snap.CadetMissions())

	s := &Session{
		ID:      uuid.New(),
		Digest:  snap.RecipeTreeDigest,
		Catalog: res.Catalog,
		AllCrew: res.AllCrew,
		Sources: idx,
		Report:  res.Report,
		BuiltAt: time.Now(),
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	cadet, faction := idx.Len()
	m.opts.Logger.Info("session ready",
		"session", s.ID, "digest", s.Digest, "archetypes", s.Catalog.Len(),
		"cadet_items", cadet, "faction_items", faction, "complete", s.Report.Complete)
	return s, nil
}

func (m *Manager) reusable(digest string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current != nil && digest != "" && m.current.Digest == digest {
		return m.current
	}
	return nil
}

// Resolve loads the session for snap and computes the needs report for the
// crew with the given ids (all non-buyback roster crew when ids is empty).
func (m *Manager) Resolve(ctx context.Context, snap *player.Snapshot, ids []int, opts needs.Options) (*needs.Report, *Session, error) {
	s, err := m.Load(ctx, snap)
	if err != nil {
		return nil, nil, err
	}
	return s.Resolve(snap, ids, opts, m.opts.MaxIterations, m.opts.Logger), s, nil
}

// Resolve computes the needs report for snap against this session's
// catalog and source index.
func (s *Session) Resolve(snap *player.Snapshot, ids []int, opts needs.Options, maxIterations int, logger *log.Logger) *needs.Report {
	r := &needs.Resolver{
		Catalog:       s.Catalog,
		Inventory:     snap.Inventory(),
		Sources:       s.Sources,
		AllCrew:       s.AllCrew,
		MaxIterations: maxIterations,
		Logger:        logger,
	}
	crews := needs.SelectCrew(snap.Roster(), s.AllCrew, ids)
	return r.Resolve(crews, opts)
}
