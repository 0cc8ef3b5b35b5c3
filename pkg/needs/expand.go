package needs

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/observability"
	"github.com/matzehuels/equipneeds/pkg/sources"
)

// DefaultMaxIterations bounds one expansion pass.
const DefaultMaxIterations = 10000

// Demand is one unit of expansion work: need units of an archetype on
// behalf of a requester.
type Demand struct {
	ArchetypeID int
	Need        int
	Requester   Requester
}

// Catalog looks up archetypes by id. *catalog.Catalog implements it.
type Catalog interface {
	Lookup(id int) (archetype.Archetype, bool)
}

// Inventory reports owned quantities. *player.Inventory implements it.
type Inventory interface {
	Quantity(id int) int
}

// SourceIndex reports cadet and faction sources. *sources.Index
// implements it.
type SourceIndex interface {
	Cadet(id int) []sources.CadetSource
	Faction(id int) []sources.FactionSource
}

// Stats describes one or more expansion passes.
type Stats struct {
	Passes     int  `json:"passes"`     // Expand calls
	Iterations int  `json:"iterations"` // Demands processed
	Dropped    int  `json:"dropped"`    // Demands dropped as dead ends
	Pending    int  `json:"pending"`    // Demands left unprocessed by truncated passes
	Truncated  bool `json:"truncated"`
}

func (s *Stats) add(o Stats) {
	s.Passes += o.Passes
	s.Iterations += o.Iterations
	s.Dropped += o.Dropped
	s.Pending += o.Pending
	s.Truncated = s.Truncated || o.Truncated
}

// Expander turns demands into leaf material records. It holds only
// read-only collaborators, so one Expander may run passes concurrently.
type Expander struct {
	Catalog       Catalog
	Inventory     Inventory   // nil means nothing is owned
	Sources       SourceIndex // nil means no cadet or faction sources
	MaxIterations int         // default: DefaultMaxIterations
	Logger        *log.Logger // default: log.Default()
}

// Expand processes worklist depth first and returns the leaf records it
// reached.
//
// worklist is not modified. The ownership tally used for netting partly
// owned intermediates lives for this call only, so separate calls net
// against the full inventory independently.
//
// Expand never fails. Hitting the iteration limit ends the pass early with
// Stats.Truncated set and whatever was recorded so far. Quantities saturate
// at math.MaxInt, so runaway recipe cycles never wrap around.
func (e *Expander) Expand(worklist []Demand) (Table, Stats) {
	start := time.Now()
	limit := e.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}

	x := &expansion{
		Expander:   e,
		logger:     e.Logger,
		stack:      make([]Demand, len(worklist)),
		inProgress: make(map[int]int),
		out:        make(Table),
	}
	if x.logger == nil {
		x.logger = log.Default()
	}
	copy(x.stack, worklist)

	for len(x.stack) > 0 {
		if x.stats.Iterations >= limit {
			x.stats.Truncated = true
			x.stats.Pending = len(x.stack)
			x.logger.Warn("recipe expansion hit iteration limit, result is partial",
				"limit", limit, "pending", len(x.stack))
			observability.Resolve().OnIterationLimit(limit, len(x.stack))
			break
		}
		d := x.stack[len(x.stack)-1]
		x.stack = x.stack[:len(x.stack)-1]
		x.stats.Iterations++
		x.step(d)
	}

	x.stats.Passes = 1
	observability.Resolve().OnExpandComplete(len(worklist), len(x.out), x.stats.Iterations, time.Since(start))
	return x.out, x.stats
}

// expansion is the state of one Expand call.
type expansion struct {
	*Expander
	logger *log.Logger

	stack []Demand
	// inProgress holds, per partly owned intermediate, the demand
	// accumulated so far minus the owned quantity.
	inProgress map[int]int
	out        Table
	stats      Stats
}

func (x *expansion) step(d Demand) {
	a, ok := x.Catalog.Lookup(d.ArchetypeID)
	if !ok {
		x.drop(d, "archetype not in catalog")
		return
	}

	if a.HasRecipe() {
		x.expandRecipe(a, d)
		return
	}

	cadet := x.cadet(a.ID)
	if !a.HasSources() && len(cadet) == 0 {
		x.drop(d, "archetype has no recipe and no sources")
		return
	}
	x.record(a, d, cadet)
}

// expandRecipe pushes the recipe children of a, scaled by the part of d
// not covered by owned stock.
func (x *expansion) expandRecipe(a archetype.Archetype, d Demand) {
	have := x.quantity(a.ID)
	if have <= 0 {
		x.push(a, d.Need, d.Requester)
		return
	}

	tally, seen := x.inProgress[a.ID]
	if seen {
		tally = satAdd(tally, d.Need)
	} else {
		tally = d.Need - have
	}
	x.inProgress[a.ID] = tally

	// Once the tally is positive, the stock is used up. The outstanding
	// share of this demand is the part above the stock, at most all of it.
	outstanding := 0
	if tally > 0 {
		outstanding = min(d.Need, tally)
	}
	x.push(a, outstanding, d.Requester)
}

func (x *expansion) push(a archetype.Archetype, need int, req Requester) {
	for _, dm := range a.Demands() {
		x.stack = append(x.stack, Demand{
			ArchetypeID: dm.ArchetypeID,
			Need:        satMul(dm.Count, need),
			Requester:   req,
		})
	}
}

func (x *expansion) record(a archetype.Archetype, d Demand, cadet []sources.CadetSource) {
	if rec, ok := x.out[a.ID]; ok {
		rec.add(d.Requester, d.Need)
		return
	}

	sorted := a.Clone()
	sorted.ItemSources = a.SortedSources()
	rec := &Record{
		Archetype:      sorted,
		Have:           x.quantity(a.ID),
		Counts:         make(map[int]Count, 1),
		CadetSources:   cadet,
		FactionSources: x.faction(a.ID),
		DisputeMission: a.HasSourceType(archetype.SourceDisputeMission),
		ShipBattle:     a.HasSourceType(archetype.SourceShipBattle),
		Faction:        a.HasSourceType(archetype.SourceFaction),
		Cadetable:      len(cadet) > 0,
	}
	rec.add(d.Requester, d.Need)
	x.out[a.ID] = rec
}

func (x *expansion) drop(d Demand, reason string) {
	x.stats.Dropped++
	x.logger.Warn(reason, "archetype", d.ArchetypeID, "requester", d.Requester.Name)
	observability.Resolve().OnDataInconsistency(d.ArchetypeID, reason)
}

func (x *expansion) quantity(id int) int {
	if x.Inventory == nil {
		return 0
	}
	return x.Inventory.Quantity(id)
}

func (x *expansion) cadet(id int) []sources.CadetSource {
	if x.Sources == nil {
		return nil
	}
	return x.Sources.Cadet(id)
}

func (x *expansion) faction(id int) []sources.FactionSource {
	if x.Sources == nil {
		return nil
	}
	return x.Sources.Faction(id)
}
