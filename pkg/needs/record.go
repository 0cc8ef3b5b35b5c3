package needs

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/player"
	"github.com/matzehuels/equipneeds/pkg/sources"
)

// Requester identifies the crew member a need is attributed to.
type Requester struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

// RequesterOf returns the requester identity of c.
func RequesterOf(c *player.Crew) Requester {
	return Requester{ID: c.ID, Name: c.Name, Symbol: c.Symbol}
}

// Count is the quantity of one material attributed to one requester.
type Count struct {
	Requester Requester `json:"crew"`
	Count     int       `json:"count"`
}

// Record is the aggregated need for one leaf material.
type Record struct {
	// Archetype is a private copy with sources sorted best first.
	Archetype archetype.Archetype `json:"equipment"`
	Needed    int                 `json:"needed"`
	Have      int                 `json:"have"`
	// Counts is keyed by requester id.
	Counts         map[int]Count           `json:"counts"`
	CadetSources   []sources.CadetSource   `json:"cadet_sources,omitempty"`
	FactionSources []sources.FactionSource `json:"faction_sources,omitempty"`

	DisputeMission bool `json:"is_dispute_mission_obtainable"`
	ShipBattle     bool `json:"is_ship_battle_obtainable"`
	Faction        bool `json:"is_faction_obtainable"`
	Cadetable      bool `json:"is_cadetable"`
}

// add attributes n more units to r.
func (r *Record) add(req Requester, n int) {
	r.Needed = satAdd(r.Needed, n)
	c, ok := r.Counts[req.ID]
	if !ok {
		c = Count{Requester: req}
	}
	c.Count = satAdd(c.Count, n)
	r.Counts[req.ID] = c
}

// Clone returns a copy that shares no mutable state with r.
func (r *Record) Clone() *Record {
	out := *r
	out.Archetype = r.Archetype.Clone()
	out.Counts = maps.Clone(r.Counts)
	out.CadetSources = slices.Clone(r.CadetSources)
	out.FactionSources = slices.Clone(r.FactionSources)
	return &out
}

// SortedCounts returns the per-requester counts, largest first, ties by
// requester name.
func (r *Record) SortedCounts() []Count {
	out := slices.Collect(maps.Values(r.Counts))
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Requester.Name, b.Requester.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Requester.ID, b.Requester.ID)
	})
	return out
}

// satAdd returns a+b clamped at math.MaxInt.
func satAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// satMul returns a*b clamped at math.MaxInt. A non-positive operand
// yields 0.
func satMul(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// Table maps archetype ids to records.
type Table map[int]*Record

// Merge adds every record of source into target and returns target.
//
// Totals are summed and per-requester counts are summed per requester id.
// Records new to target are cloned, so later merges never write through to
// source. A nil target is allocated.
func Merge(target, source Table) Table {
	if target == nil {
		target = make(Table, len(source))
	}
	for id, rec := range source {
		t, ok := target[id]
		if !ok {
			target[id] = rec.Clone()
			continue
		}
		t.Needed = satAdd(t.Needed, rec.Needed)
		for rid, c := range rec.Counts {
			tc, ok := t.Counts[rid]
			if !ok {
				t.Counts[rid] = c
				continue
			}
			tc.Count = satAdd(tc.Count, c.Count)
			t.Counts[rid] = tc
		}
	}
	return target
}
