package archetype

import "testing"

func TestHasRecipe(t *testing.T) {
	tests := []struct {
		name string
		a    Archetype
		want bool
	}{
		{"nil recipe", Archetype{ID: 1}, false},
		{"empty demands", Archetype{ID: 1, Recipe: &Recipe{}}, false},
		{"with demands", Archetype{ID: 1, Recipe: &Recipe{Demands: []Demand{{ArchetypeID: 2, Count: 1}}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.HasRecipe(); got != tt.want {
				t.Errorf("HasRecipe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortedSources(t *testing.T) {
	a := Archetype{ItemSources: []ItemSource{
		{Name: "low", EnergyQuotient: 1},
		{Name: "high", EnergyQuotient: 5},
		{Name: "mid", EnergyQuotient: 3},
	}}

	got := a.SortedSources()
	want := []string{"high", "mid", "low"}
	for i, s := range got {
		if s.Name != want[i] {
			t.Errorf("SortedSources()[%d] = %q, want %q", i, s.Name, want[i])
		}
	}

	if a.ItemSources[0].Name != "low" {
		t.Error("SortedSources() should not reorder the receiver")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Archetype{
		ID:          1,
		Recipe:      &Recipe{Demands: []Demand{{ArchetypeID: 2, Count: 3}}},
		ItemSources: []ItemSource{{Name: "x"}},
	}
	c := a.Clone()
	c.Recipe.Demands[0].Count = 99
	c.ItemSources[0].Name = "y"

	if a.Recipe.Demands[0].Count != 3 {
		t.Error("Clone() shares recipe demands with the original")
	}
	if a.ItemSources[0].Name != "x" {
		t.Error("Clone() shares item sources with the original")
	}
}

func TestSourceTypeString(t *testing.T) {
	if SourceFaction.String() != "faction" {
		t.Errorf("SourceFaction.String() = %q", SourceFaction.String())
	}
	if SourceType(9).String() != "source(9)" {
		t.Errorf("SourceType(9).String() = %q", SourceType(9).String())
	}
}
