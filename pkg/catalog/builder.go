package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/observability"
	"github.com/matzehuels/equipneeds/pkg/player"
)

const (
	DefaultBatchSize   = 20  // Item descriptions requested per call
	DefaultFetchBudget = 500 // Maximum description calls per build, bisection included
	DefaultMaxRounds   = 100 // Maximum discovery rounds after the crew seed

	snapshotWriteTimeout = 30 * time.Second
)

// DescriptionFetcher loads item descriptions. A call fails as a unit: on
// error the builder bisects the batch to isolate the item that breaks it.
//
// refs are archetype ids (decimal) or symbols; the service accepts both.
type DescriptionFetcher interface {
	FetchItemDescriptions(ctx context.Context, refs []string) ([]archetype.Archetype, error)
}

// Options configures catalog completion.
type Options struct {
	BatchSize   int          // Items per description call (default: 20)
	FetchBudget int          // Description calls per build (default: 500)
	MaxRounds   int          // Discovery rounds per build (default: 100)
	Logger      *log.Logger  // Defaults to log.Default()
	Progress    func(string) // Progress callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FetchBudget <= 0 {
		opts.FetchBudget = DefaultFetchBudget
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Progress == nil {
		opts.Progress = func(string) {}
	}
	return opts
}

// Input is everything a build reads.
type Input struct {
	Digest  string                // Recipe tree digest; empty disables snapshots
	Live    []archetype.Archetype // Archetypes shipped with the player payload
	Roster  []player.Crew         // Player crew; their slots must resolve
	AllCrew []player.Crew         // Full crew catalog; not modified
}

// Report summarizes one build.
type Report struct {
	FromSnapshot int      `json:"from_snapshot"`        // Archetypes merged from the digest snapshot
	Fetches      int      `json:"fetches"`              // Description calls issued, bisection included
	Loaded       int      `json:"loaded"`               // Archetypes added by fetches
	Rounds       int      `json:"rounds"`               // Discovery rounds run after the crew seed
	Dropped      []string `json:"dropped,omitempty"`    // Refs whose description failed even on their own
	Unresolved   []int    `json:"unresolved,omitempty"` // Ids requested but never returned by the service
	Missing      []int    `json:"missing,omitempty"`    // Ids still missing when the build gave up
	Complete     bool     `json:"complete"`             // Discovery converged
	GaveUp       bool     `json:"gave_up"`              // Round or fetch budget ran out first
}

// Result is the output of [Builder.Build].
type Result struct {
	Catalog *Catalog
	// AllCrew is a copy of Input.AllCrew with slot ids reconciled against
	// Catalog.
	AllCrew []player.Crew
	Report  Report
}

// Builder completes a catalog against the item description service.
// A Builder may be reused; builds do not share state.
type Builder struct {
	fetcher   DescriptionFetcher
	snapshots SnapshotStore
	opts      Options
	writes    sync.WaitGroup
}

// NewBuilder creates a builder. snapshots may be nil to disable snapshot
// reads and writes.
func NewBuilder(fetcher DescriptionFetcher, snapshots SnapshotStore, opts Options) *Builder {
	return &Builder{fetcher: fetcher, snapshots: snapshots, opts: opts.WithDefaults()}
}

// Build assembles a complete catalog for in.
//
// Completion runs as an explicit work queue. Every round collects the ids
// referenced by recipe demands and roster slots that are still absent,
// fetches the first batch, and marks ids the service did not return as
// unresolved so they are not requested again. The build stops when nothing
// is missing or when the round or fetch budget is exhausted; the latter
// yields a partial catalog with Report.GaveUp set.
//
// Only a complete catalog is written back to the snapshot store. The write
// runs in the background and is never awaited by Build; see [Builder.Wait].
//
// Fetch failures never fail the build. The only error is ctx cancellation.
func (b *Builder) Build(ctx context.Context, in Input) (*Result, error) {
	c := &completion{
		ctx:        ctx,
		opts:       b.opts,
		fetcher:    b.fetcher,
		cat:        New(in.Live...),
		unresolved: make(map[int]bool),
	}

	if b.snapshots != nil && in.Digest != "" {
		cached, ok, err := b.snapshots.Get(ctx, in.Digest)
		switch {
		case err != nil:
			c.opts.Logger.Warn("catalog snapshot unavailable", "digest", in.Digest, "err", err)
		case ok:
			c.report.FromSnapshot = c.cat.AddAll(cached)
			c.opts.Logger.Debug("merged catalog snapshot", "digest", in.Digest, "added", c.report.FromSnapshot)
		}
	}

	allCrew := player.CloneCrews(in.AllCrew)
	if err := c.seedCrewSymbols(allCrew); err != nil {
		return nil, err
	}
	ReconcileCrewSlots(c.cat, allCrew, c.opts.Logger)

	if err := c.discover(in.Roster); err != nil {
		return nil, err
	}

	observability.Catalog().OnCatalogBuilt(ctx, in.Digest, c.cat.Len(), c.report.Complete)
	if c.report.GaveUp {
		c.opts.Logger.Warn("catalog incomplete, proceeding with partial data",
			"missing", len(c.report.Missing), "rounds", c.report.Rounds, "fetches", c.report.Fetches)
	}

	if c.report.Complete && b.snapshots != nil && in.Digest != "" {
		b.store(ctx, in.Digest, c.cat.Archetypes())
	}

	return &Result{Catalog: c.cat, AllCrew: allCrew, Report: c.report}, nil
}

// Wait blocks until background snapshot writes have finished.
func (b *Builder) Wait() {
	b.writes.Wait()
}

func (b *Builder) store(ctx context.Context, digest string, archetypes []archetype.Archetype) {
	b.writes.Add(1)
	go func() {
		defer b.writes.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotWriteTimeout)
		defer cancel()
		if err := b.snapshots.Put(wctx, digest, archetypes); err != nil {
			b.opts.Logger.Warn("catalog snapshot write failed", "digest", digest, "err", err)
			return
		}
		b.opts.Logger.Debug("stored catalog snapshot", "digest", digest, "size", len(archetypes))
	}()
}

// completion is the state of one Build call.
type completion struct {
	ctx     context.Context
	opts    Options
	fetcher DescriptionFetcher

	cat        *Catalog
	report     Report
	unresolved map[int]bool
	exhausted  bool
}

// seedCrewSymbols loads every full-catalog slot archetype the catalog does
// not know by symbol.
func (c *completion) seedCrewSymbols(crews []player.Crew) error {
	pending := slotSymbols(c.cat, crews)
	for len(pending) > 0 && !c.exhausted {
		if err := c.ctx.Err(); err != nil {
			return err
		}
		c.opts.Progress(fmt.Sprintf("Loading all crew equipment... (%d remaining)", len(pending)))
		n := min(c.opts.BatchSize, len(pending))
		c.report.Loaded += c.cat.AddAll(c.load(pending[:n]))
		pending = pending[n:]
	}
	return c.ctx.Err()
}

func (c *completion) discover(roster []player.Crew) error {
	for {
		if err := c.ctx.Err(); err != nil {
			return err
		}

		missing := c.missing(roster)
		c.opts.Progress(fmt.Sprintf("Loading equipment... (%d remaining)", len(missing)))
		if len(missing) == 0 {
			c.report.Complete = true
			return nil
		}
		if c.report.Rounds >= c.opts.MaxRounds || c.exhausted {
			c.report.GaveUp = true
			c.report.Missing = missing
			return nil
		}

		batch := missing[:min(c.opts.BatchSize, len(missing))]
		refs := make([]string, len(batch))
		for i, id := range batch {
			refs[i] = archetype.Ref(id)
		}
		c.report.Loaded += c.cat.AddAll(c.load(refs))
		c.report.Rounds++

		if c.exhausted {
			// the batch may not have been attempted in full
			continue
		}
		for _, id := range batch {
			if !c.cat.Has(id) && !c.unresolved[id] {
				c.unresolved[id] = true
				c.report.Unresolved = append(c.report.Unresolved, id)
			}
		}
	}
}

// missing lists ids referenced by recipe demands or roster slots that are
// neither in the catalog nor known to be unresolvable.
func (c *completion) missing(roster []player.Crew) []int {
	seen := make(map[int]bool)
	var out []int
	add := func(id int) {
		if id <= 0 || seen[id] || c.unresolved[id] || c.cat.Has(id) {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range c.cat.MissingDemands() {
		add(id)
	}
	for _, crew := range roster {
		for _, slot := range crew.EquipmentSlots {
			add(slot.Archetype)
		}
	}
	return out
}

// load fetches refs, bisecting on failure down to single items. A single
// item that still fails is logged and dropped.
func (c *completion) load(refs []string) []archetype.Archetype {
	if len(refs) == 0 || c.ctx.Err() != nil {
		return nil
	}
	if c.report.Fetches >= c.opts.FetchBudget {
		c.exhausted = true
		return nil
	}

	c.report.Fetches++
	start := time.Now()
	got, err := c.fetcher.FetchItemDescriptions(c.ctx, refs)
	observability.Catalog().OnFetchBatch(c.ctx, len(refs), time.Since(start), err)
	if err == nil {
		return got
	}
	if c.ctx.Err() != nil {
		return nil
	}

	if len(refs) == 1 {
		c.opts.Logger.Warn("item description failed to load", "ref", refs[0], "err", err)
		observability.Catalog().OnFetchDropped(c.ctx, refs[0], err)
		c.report.Dropped = append(c.report.Dropped, refs[0])
		return nil
	}

	mid := (len(refs) + 1) / 2
	c.opts.Logger.Debug("description batch failed, bisecting", "size", len(refs), "err", err)
	left := c.load(refs[:mid])
	right := c.load(refs[mid:])
	return append(left, right...)
}
