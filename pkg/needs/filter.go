package needs

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Predicate selects records for the report.
type Predicate func(*Record) bool

// StillNeeded keeps records where the stock is short of the total need.
func StillNeeded(r *Record) bool {
	return r.Have < r.Needed
}

// FactionOnly keeps records obtainable from faction transmissions and from
// no mission source.
func FactionOnly(r *Record) bool {
	return r.Faction && !r.DisputeMission && !r.ShipBattle
}

// CadetOnly keeps records some cadet challenge drops.
func CadetOnly(r *Record) bool {
	return r.Cadetable
}

// MatchText builds the free-text predicate. A query that parses as an
// integer matches rarity, needed, have, or any per-requester count exactly.
// Anything else is a case-insensitive substring match against the item
// name, requester names, source names, and cadet quest and episode names.
// A blank query returns nil.
func MatchText(query string) Predicate {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	if n, err := strconv.Atoi(q); err == nil {
		return matchNumber(n)
	}
	return matchSubstring(strings.ToLower(q))
}

func matchNumber(n int) Predicate {
	return func(r *Record) bool {
		if r.Archetype.Rarity == n || r.Needed == n || r.Have == n {
			return true
		}
		for _, c := range r.Counts {
			if c.Count == n {
				return true
			}
		}
		return false
	}
}

func matchSubstring(q string) Predicate {
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	}
	return func(r *Record) bool {
		if contains(r.Archetype.Name) {
			return true
		}
		for _, c := range r.Counts {
			if contains(c.Requester.Name) {
				return true
			}
		}
		for _, s := range r.Archetype.ItemSources {
			if contains(s.Name) {
				return true
			}
		}
		for _, s := range r.CadetSources {
			if contains(s.QuestName) || contains(s.EpisodeTitle) {
				return true
			}
		}
		return false
	}
}

// Predicates returns the filters selected by opts in application order.
func Predicates(opts Options) []Predicate {
	var ps []Predicate
	if opts.OnlyNeeded {
		ps = append(ps, StillNeeded)
	}
	if opts.OnlyFaction {
		ps = append(ps, FactionOnly)
	}
	if opts.Cadetable {
		ps = append(ps, CadetOnly)
	}
	if p := MatchText(opts.Text); p != nil {
		ps = append(ps, p)
	}
	return ps
}

// Apply keeps the records every predicate accepts, preserving order.
func Apply(records []*Record, preds ...Predicate) []*Record {
	out := records[:0:0]
	for _, r := range records {
		keep := true
		for _, p := range preds {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records by total need, largest first. Ties are broken by
// archetype id so reports are stable between runs.
func Sort(records []*Record) {
	slices.SortFunc(records, func(a, b *Record) int {
		if c := cmp.Compare(b.Needed, a.Needed); c != 0 {
			return c
		}
		return cmp.Compare(a.Archetype.ID, b.Archetype.ID)
	})
}

// Project flattens t into a sorted, filtered report.
func Project(t Table, opts Options) []*Record {
	records := make([]*Record, 0, len(t))
	for _, r := range t {
		records = append(records, r)
	}
	Sort(records)
	return Apply(records, Predicates(opts)...)
}
