package voyage

import (
	"testing"

	"github.com/matzehuels/equipneeds/pkg/player"
)

func TestBestShips(t *testing.T) {
	ships := []player.Ship{
		{ID: 1, Name: "Enterprise", Antimatter: 2500, Traits: []string{"federation", "explorer"}},
		{ID: 2, Name: "Defiant", Antimatter: 2600, Traits: []string{"federation", "warship"}},
		{ID: 0, Name: "Schematic", Antimatter: 9000, Traits: []string{"explorer"}},
		{ID: -4, Name: "Unowned", Antimatter: 9000},
		{ID: 3, Name: "Runabout", Antimatter: 1000},
	}
	desc := player.VoyageDescription{ShipTrait: "explorer"}

	got := BestShips(ships, desc, Options{})

	want := []struct {
		name  string
		score int
	}{
		{"Enterprise", 2650},
		{"Defiant", 2600},
		{"Runabout", 1000},
	}
	if len(got) != len(want) {
		t.Fatalf("BestShips() returned %d ships, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Ship.Name != w.name || got[i].Score != w.score {
			t.Errorf("BestShips()[%d] = %s/%d, want %s/%d", i, got[i].Ship.Name, got[i].Score, w.name, w.score)
		}
	}
}

func TestBestShipsTraitBonus(t *testing.T) {
	ships := []player.Ship{
		{ID: 1, Name: "A", Antimatter: 1000, Traits: []string{"cloaking"}},
		{ID: 2, Name: "B", Antimatter: 1200},
	}
	desc := player.VoyageDescription{ShipTrait: "cloaking"}

	tests := []struct {
		name  string
		bonus int
		first string
	}{
		{"default bonus is too small", 0, "B"},
		{"larger bonus wins", 300, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BestShips(ships, desc, Options{TraitBonus: tt.bonus})
			if got[0].Ship.Name != tt.first {
				t.Errorf("first = %s, want %s", got[0].Ship.Name, tt.first)
			}
		})
	}
}

func TestBestShipsStableOnTies(t *testing.T) {
	ships := []player.Ship{
		{ID: 5, Name: "first", Antimatter: 100},
		{ID: 6, Name: "second", Antimatter: 100},
	}
	got := BestShips(ships, player.VoyageDescription{}, Options{})
	if got[0].Ship.Name != "first" || got[1].Ship.Name != "second" {
		t.Errorf("tie order = %s, %s", got[0].Ship.Name, got[1].Ship.Name)
	}
}

func TestBestShipsEmpty(t *testing.T) {
	if got := BestShips(nil, player.VoyageDescription{}, Options{}); len(got) != 0 {
		t.Errorf("BestShips(nil) = %v, want empty", got)
	}
}
