// Package player models the player-side data the needs resolver reads:
// inventory, crew roster, the full crew catalog, factions with their store
// offers, cadet missions, ships and voyage descriptions.
//
// A [Snapshot] is a read-only view of that data as returned by the game API
// (or saved to disk with the same JSON shape). The resolver never mutates a
// snapshot; id reconciliation works on clones (see [CloneCrews]).
package player

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/errors"
)

// Reward and store offer codes used by the game API.
const (
	// RewardTypeItem is the mastery reward kind that carries item drops.
	RewardTypeItem = 0

	// GameItemTypeItem is the store offer game_item.type for inventory items.
	GameItemTypeItem = 2

	// ItemTypeEquipment and ItemTypeComponent are the store offer item_type
	// values that count as crafting material.
	ItemTypeEquipment = 2
	ItemTypeComponent = 3
)

// Item is one inventory stack.
type Item struct {
	ArchetypeID int    `json:"archetype_id"`
	Symbol      string `json:"symbol,omitempty"`
	Name        string `json:"name,omitempty"`
	Quantity    int    `json:"quantity"`
}

// EquipmentSlot is one equipment position on a crew member.
type EquipmentSlot struct {
	Level     int    `json:"level"`
	Archetype int    `json:"archetype"`
	Symbol    string `json:"symbol,omitempty"`
	Have      bool   `json:"have"`
}

// Crew is a crafting-capable entity. Roster crew are owned by the player;
// catalog crew describe every crew member at every level.
type Crew struct {
	ID             int                   `json:"id"`
	Symbol         string                `json:"symbol"`
	Name           string                `json:"name"`
	Level          int                   `json:"level,omitempty"`
	Buyback        bool                  `json:"buyback,omitempty"`
	IsExternal     bool                  `json:"is_external,omitempty"`
	EquipmentSlots []EquipmentSlot       `json:"equipment_slots"`
	Archetypes     []archetype.Archetype `json:"archetypes,omitempty"`
}

// MaxSlotLevel returns the highest equipment slot level, or 1 when the crew
// has no slots.
func (c *Crew) MaxSlotLevel() int {
	level := 1
	for _, s := range c.EquipmentSlots {
		level = max(level, s.Level)
	}
	return level
}

// EmbeddedArchetype looks up one of the archetypes shipped inline with a
// catalog crew entry.
func (c *Crew) EmbeddedArchetype(id int) (archetype.Archetype, bool) {
	for _, a := range c.Archetypes {
		if a.ID == id {
			return a, true
		}
	}
	return archetype.Archetype{}, false
}

// Clone returns a copy whose slot and archetype slices are not shared.
func (c Crew) Clone() Crew {
	out := c
	out.EquipmentSlots = slices.Clone(c.EquipmentSlots)
	out.Archetypes = slices.Clone(c.Archetypes)
	return out
}

// CloneCrews clones every crew in crews.
func CloneCrews(crews []Crew) []Crew {
	if crews == nil {
		return nil
	}
	out := make([]Crew, len(crews))
	for i, c := range crews {
		out[i] = c.Clone()
	}
	return out
}

// Cost is the price of a store offer.
type Cost struct {
	Currency string `json:"currency"`
	Amount   int    `json:"amount"`
}

// GameItem describes what a store offer grants.
type GameItem struct {
	ID       int    `json:"id"`
	Type     int    `json:"type"`
	ItemType int    `json:"item_type"`
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
}

// Offer is a single store listing.
type Offer struct {
	GameItem GameItem `json:"game_item"`
	Cost     Cost     `json:"cost"`
}

// StoreItem wraps an offer as laid out in a faction store grid.
type StoreItem struct {
	Offer Offer `json:"offer"`
}

// IsMaterial reports whether the offer sells equipment or components.
func (s StoreItem) IsMaterial() bool {
	g := s.Offer.GameItem
	return g.Type == GameItemTypeItem && (g.ItemType == ItemTypeEquipment || g.ItemType == ItemTypeComponent)
}

// Faction is a player faction with its (lazily loaded) store.
type Faction struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	ShopLayout string      `json:"shop_layout"`
	StoreItems []StoreItem `json:"storeItems,omitempty"`
}

// PotentialReward is one item a mastery reward may drop.
type PotentialReward struct {
	ID     int    `json:"id"`
	Symbol string `json:"symbol,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Reward groups potential drops of one kind.
type Reward struct {
	Type             int               `json:"type"`
	PotentialRewards []PotentialReward `json:"potential_rewards"`
}

// MasteryLevel is one difficulty tier of a quest.
type MasteryLevel struct {
	ID      int      `json:"id"`
	Rewards []Reward `json:"rewards"`
}

// Quest is a single mission node.
type Quest struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Cadet         bool           `json:"cadet,omitempty"`
	MasteryLevels []MasteryLevel `json:"mastery_levels"`
}

// Mission is an episode made of quests.
type Mission struct {
	ID           int     `json:"id"`
	EpisodeTitle string  `json:"episode_title"`
	Quests       []Quest `json:"quests"`
}

// IsCadet reports whether any quest in the mission is a cadet challenge.
func (m *Mission) IsCadet() bool {
	for _, q := range m.Quests {
		if q.Cadet {
			return true
		}
	}
	return false
}

// IsAdvanced reports whether the mission is an "Advanced" cadet variant.
// Advanced challenges repeat the standard rewards.
func (m *Mission) IsAdvanced() bool {
	return strings.Contains(m.EpisodeTitle, "Adv")
}

// Ship is a player-owned (id > 0) or schematic ship.
type Ship struct {
	ID         int      `json:"id"`
	Symbol     string   `json:"symbol,omitempty"`
	Name       string   `json:"name"`
	Antimatter int      `json:"antimatter"`
	Traits     []string `json:"traits"`
}

// VoyageDescription is an available voyage slot.
type VoyageDescription struct {
	ID          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	ShipTrait   string `json:"ship_trait"`
	SkillsPrime string `json:"primary_skill,omitempty"`
}

// Character is the player's own state.
type Character struct {
	ID                 int                 `json:"id"`
	DisplayName        string              `json:"display_name,omitempty"`
	Items              []Item              `json:"items"`
	Crew               []Crew              `json:"crew"`
	Factions           []Faction           `json:"factions"`
	Ships              []Ship              `json:"ships,omitempty"`
	VoyageDescriptions []VoyageDescription `json:"voyage_descriptions,omitempty"`
}

// Snapshot bundles everything the resolver consumes for one session.
type Snapshot struct {
	Character        Character             `json:"character"`
	AllCrew          []Crew                `json:"all_crew"`
	Missions         []Mission             `json:"missions"`
	ItemArchetypes   []archetype.Archetype `json:"item_archetypes"`
	RecipeTreeDigest string                `json:"recipe_tree_digest"`
}

// Roster returns the player's own crew.
func (s *Snapshot) Roster() []Crew { return s.Character.Crew }

// FullCrewCatalog returns every crew member at every level.
func (s *Snapshot) FullCrewCatalog() []Crew { return s.AllCrew }

// Factions returns the player's factions.
func (s *Snapshot) Factions() []Faction { return s.Character.Factions }

// CadetMissions returns the missions that contain at least one cadet quest.
func (s *Snapshot) CadetMissions() []Mission {
	var out []Mission
	for _, m := range s.Missions {
		if m.IsCadet() {
			out = append(out, m)
		}
	}
	return out
}

// Inventory builds an inventory lookup over the character's items.
func (s *Snapshot) Inventory() *Inventory {
	return NewInventory(s.Character.Items)
}

// Validate rejects snapshots that carry no usable payload at all. This is
// the fail-fast counterpart to the resolver's tolerance of partial data.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSession, "empty player snapshot")
	}
	if s.Character.ID == 0 && len(s.Character.Crew) == 0 && len(s.Character.Items) == 0 {
		return errors.New(errors.ErrCodeInvalidSession, "player snapshot has no character data")
	}
	return nil
}

// Decode reads a JSON snapshot from r and validates it.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSession, err, "decode player snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a JSON snapshot from path.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open player snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Source supplies player snapshots. The file loader and the game API client
// both implement it.
type Source interface {
	Player(ctx context.Context) (*Snapshot, error)
}

// FileSource reads a snapshot from disk on every call.
type FileSource struct {
	Path string
}

// Player implements [Source].
func (f FileSource) Player(ctx context.Context) (*Snapshot, error) {
	return Load(f.Path)
}

// StaticSource always returns the same snapshot.
type StaticSource struct {
	Snapshot *Snapshot
}

// Player implements [Source].
func (s StaticSource) Player(ctx context.Context) (*Snapshot, error) {
	if err := s.Snapshot.Validate(); err != nil {
		return nil, err
	}
	return s.Snapshot, nil
}
