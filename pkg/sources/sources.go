// Package sources indexes where materials can be obtained outside the
// recipe graph: cadet challenge rewards and faction store offers.
//
// The [Index] is built lazily from the player's missions and factions and
// memoized. Each map is populated at most once per session; [Index.Reset]
// is the only way to rebuild it.
package sources

import (
	"sync"

	"github.com/matzehuels/equipneeds/pkg/player"
)

// CadetSource is one cadet challenge that can drop an item.
type CadetSource struct {
	QuestID      int    `json:"quest_id"`
	QuestName    string `json:"quest_name"`
	MissionID    int    `json:"mission_id"`
	EpisodeTitle string `json:"episode_title"`
	MasteryLevel int    `json:"mastery_level"`
}

// FactionSource is one faction store offer selling an item.
type FactionSource struct {
	Currency    string `json:"currency"`
	Amount      int    `json:"amount"`
	FactionID   int    `json:"faction_id"`
	FactionName string `json:"faction_name"`
}

// Index maps archetype ids to cadet and faction sources.
// It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	cadet   map[int][]CadetSource
	faction map[int][]FactionSource
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Build populates whichever maps are still empty. Calling it again once
// both maps hold entries is a no-op.
func (x *Index) Build(factions []player.Faction, missions []player.Mission) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(x.cadet) == 0 {
		x.cadet = cadetSources(missions)
	}
	if len(x.faction) == 0 {
		x.faction = factionSources(factions)
	}
}

// Reset drops both maps so the next Build starts over.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.cadet = nil
	x.faction = nil
}

// Cadet returns the cadet sources for id. The slice must not be modified.
func (x *Index) Cadet(id int) []CadetSource {
	if x == nil {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.cadet[id]
}

// Faction returns the faction store sources for id. The slice must not be
// modified.
func (x *Index) Faction(id int) []FactionSource {
	if x == nil {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.faction[id]
}

// IsCadetable reports whether any cadet challenge drops id.
func (x *Index) IsCadetable(id int) bool {
	return len(x.Cadet(id)) > 0
}

// Len returns the number of items with cadet and faction sources.
func (x *Index) Len() (cadet, faction int) {
	if x == nil {
		return 0, 0
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.cadet), len(x.faction)
}

// cadetSources scans cadet missions. Advanced episodes are skipped because
// they repeat the standard rewards.
func cadetSources(missions []player.Mission) map[int][]CadetSource {
	out := make(map[int][]CadetSource)
	for _, m := range missions {
		if !m.IsCadet() || m.IsAdvanced() {
			continue
		}
		for _, q := range m.Quests {
			for _, ml := range q.MasteryLevels {
				for _, r := range ml.Rewards {
					if r.Type != player.RewardTypeItem {
						continue
					}
					for _, pr := range r.PotentialRewards {
						out[pr.ID] = append(out[pr.ID], CadetSource{
							QuestID:      q.ID,
							QuestName:    q.Name,
							MissionID:    m.ID,
							EpisodeTitle: m.EpisodeTitle,
							MasteryLevel: ml.ID,
						})
					}
				}
			}
		}
	}
	return out
}

// factionSources scans store offers that sell equipment or components.
func factionSources(factions []player.Faction) map[int][]FactionSource {
	out := make(map[int][]FactionSource)
	for _, f := range factions {
		for _, si := range f.StoreItems {
			if !si.IsMaterial() {
				continue
			}
			id := si.Offer.GameItem.ID
			out[id] = append(out[id], FactionSource{
				Currency:    si.Offer.Cost.Currency,
				Amount:      si.Offer.Cost.Amount,
				FactionID:   f.ID,
				FactionName: f.Name,
			})
		}
	}
	return out
}
