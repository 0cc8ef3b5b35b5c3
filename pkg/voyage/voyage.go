// Package voyage holds the voyage helpers that sit next to the needs
// resolver: ranking owned ships for a voyage slot and the narrative
// returned when a running voyage is refreshed.
package voyage

import (
	"cmp"
	"slices"

	"github.com/matzehuels/equipneeds/pkg/player"
)

// DefaultTraitBonus is added to a ship's score when one of its traits
// matches the voyage's ship trait.
const DefaultTraitBonus = 150

// Candidate is a ship scored for a voyage.
type Candidate struct {
	Ship  player.Ship `json:"ship"`
	Score int         `json:"score"`
}

// Options tune [BestShips].
type Options struct {
	// TraitBonus overrides DefaultTraitBonus when positive.
	TraitBonus int
}

// BestShips ranks the owned ships (id > 0) for desc by antimatter plus the
// trait bonus, best first. Ships with equal scores keep their input order.
func BestShips(ships []player.Ship, desc player.VoyageDescription, opts Options) []Candidate {
	bonus := opts.TraitBonus
	if bonus <= 0 {
		bonus = DefaultTraitBonus
	}

	var out []Candidate
	for _, s := range ships {
		if s.ID <= 0 {
			continue
		}
		score := s.Antimatter
		if desc.ShipTrait != "" && slices.Contains(s.Traits, desc.ShipTrait) {
			score += bonus
		}
		out = append(out, Candidate{Ship: s, Score: score})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// Event is one entry of a voyage narrative.
type Event struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	EventTime float64 `json:"event_time,omitempty"`
	Encounter string  `json:"encounter_type,omitempty"`
	SkillPass bool    `json:"skill_check_passed,omitempty"`
}

// Status is the voyage state carried in a refresh response.
type Status struct {
	ID           int    `json:"id"`
	State        string `json:"state"`
	Hp           int    `json:"hp"`
	MaxHp        int    `json:"max_hp"`
	VoyageLength int    `json:"voyage_duration,omitempty"`
}

// Refresh is the result of refreshing a running voyage.
type Refresh struct {
	Status    *Status `json:"status,omitempty"`
	Narrative []Event `json:"narrative"`
}
