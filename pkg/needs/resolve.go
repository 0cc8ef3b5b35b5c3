package needs

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/equipneeds/pkg/player"
)

// Options selects what a resolution covers and which records it reports.
type Options struct {
	OnlyNeeded  bool   // keep only records with have < needed
	OnlyFaction bool   // keep only faction-exclusive records
	Cadetable   bool   // keep only cadet-obtainable records
	AllLevels   bool   // include equipment for levels above each crew's current one
	Text        string // free-text filter, see MatchText
}

// Report is the outcome of one resolution.
type Report struct {
	Records []*Record `json:"records"`
	Crew    int       `json:"crew"`
	Stats   Stats     `json:"stats"`
}

// Resolver computes the needs report for a set of crew.
type Resolver struct {
	Catalog   Catalog
	Inventory Inventory
	Sources   SourceIndex
	// AllCrew is the full crew catalog with slot ids reconciled to Catalog.
	// It supplies the equipment of levels a crew has not reached yet.
	AllCrew       []player.Crew
	MaxIterations int
	Logger        *log.Logger
}

// Resolve expands the equipment of crews and returns the projected report.
//
// Unowned slots of every crew form one shared worklist, so partly owned
// intermediates are netted once across the whole roster. With
// opts.AllLevels, each non-external crew additionally gets a separate pass
// over the slots of its full-catalog twin above its current level. That pass
// nets against the full inventory again, so an item can be counted in both
// passes; the future-level total is a buy-ahead estimate.
func (r *Resolver) Resolve(crews []player.Crew, opts Options) *Report {
	e := &Expander{
		Catalog:       r.Catalog,
		Inventory:     r.Inventory,
		Sources:       r.Sources,
		MaxIterations: r.MaxIterations,
		Logger:        r.Logger,
	}

	var (
		primary []Demand
		total   Table
		stats   Stats
	)
	for i := range crews {
		c := &crews[i]
		req := RequesterOf(c)
		for _, s := range c.EquipmentSlots {
			if !s.Have {
				primary = append(primary, Demand{ArchetypeID: s.Archetype, Need: 1, Requester: req})
			}
		}

		if !opts.AllLevels || c.IsExternal {
			continue
		}
		future := r.futureDemands(c, req)
		if len(future) == 0 {
			continue
		}
		t, st := e.Expand(future)
		total = Merge(total, t)
		stats.add(st)
	}

	t, st := e.Expand(primary)
	total = Merge(total, t)
	stats.add(st)

	return &Report{
		Records: Project(total, opts),
		Crew:    len(crews),
		Stats:   stats,
	}
}

// futureDemands seeds one demand per twin slot above c's current level.
func (r *Resolver) futureDemands(c *player.Crew, req Requester) []Demand {
	twin, ok := r.twin(c.Symbol)
	if !ok {
		return nil
	}
	level := c.MaxSlotLevel()
	var out []Demand
	for _, s := range twin.EquipmentSlots {
		if s.Level > level {
			out = append(out, Demand{ArchetypeID: s.Archetype, Need: 1, Requester: req})
		}
	}
	return out
}

func (r *Resolver) twin(symbol string) (*player.Crew, bool) {
	for i := range r.AllCrew {
		if r.AllCrew[i].Symbol == symbol {
			return &r.AllCrew[i], true
		}
	}
	return nil, false
}

// SelectCrew picks the crew to resolve. With no ids it returns the roster
// minus crew in the buyback pool. Otherwise each id is looked up in the
// roster, then in the full catalog; unknown ids are skipped.
func SelectCrew(roster, allCrew []player.Crew, ids []int) []player.Crew {
	if len(ids) == 0 {
		var out []player.Crew
		for _, c := range roster {
			if !c.Buyback {
				out = append(out, c)
			}
		}
		return out
	}

	out := make([]player.Crew, 0, len(ids))
	for _, id := range ids {
		if c, ok := findCrew(roster, id); ok {
			out = append(out, c)
		} else if c, ok := findCrew(allCrew, id); ok {
			out = append(out, c)
		}
	}
	return out
}

func findCrew(crews []player.Crew, id int) (player.Crew, bool) {
	for _, c := range crews {
		if c.ID == id {
			return c, true
		}
	}
	return player.Crew{}, false
}
