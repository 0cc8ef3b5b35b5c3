package cli

import (
	"slices"
	"testing"

	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/player"
)

var (
	testRoster = []player.Crew{
		{ID: 7, Symbol: "kirk_captain", Name: "James T. Kirk"},
		{ID: 8, Symbol: "spock_command", Name: "Spock"},
	}
	testAllCrew = []player.Crew{
		{ID: 7, Symbol: "kirk_captain", Name: "James T. Kirk"},
		{ID: 8, Symbol: "spock_command", Name: "Spock"},
		{ID: 9, Symbol: "uhura_comms", Name: "Uhura"},
	}
)

func TestResolveCrew(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []int
	}{
		{"none", nil, nil},
		{"numeric", []string{"7"}, []int{7}},
		{"numeric not owned", []string{"42"}, []int{42}},
		{"symbol", []string{"spock_command"}, []int{8}},
		{"name case-insensitive", []string{"james t. kirk"}, []int{7}},
		{"full catalog fallback", []string{"Uhura"}, []int{9}},
		{"mixed and blank", []string{"Spock", " ", "7"}, []int{8, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveCrew(tt.args, testRoster, testAllCrew)
			if err != nil {
				t.Fatalf("resolveCrew() error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("resolveCrew() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCrewErrors(t *testing.T) {
	if _, err := resolveCrew([]string{"-3"}, testRoster, testAllCrew); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative id error = %v, want INVALID_INPUT", err)
	}
	_, err := resolveCrew([]string{"Uhra"}, testRoster, testAllCrew)
	if !errors.Is(err, errors.ErrCodeCrewNotFound) {
		t.Fatalf("unknown name error = %v, want CREW_NOT_FOUND", err)
	}
	if got := errors.UserMessage(err); got != `no crew named "Uhra"; did you mean Uhura?` {
		t.Errorf("message = %q", got)
	}
}

func TestSuggestCrew(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"typo", "Spcok", []string{"Spock"}},
		{"symbol typo", "uhura_coms", []string{"Uhura"}},
		{"nothing close", "Picard", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestCrew(tt.query, testRoster, testAllCrew)
			if !slices.Equal(got, tt.want) {
				t.Errorf("suggestCrew(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSuggestCrewLimitAndOrder(t *testing.T) {
	crews := []player.Crew{
		{ID: 1, Name: "Data"},
		{ID: 2, Name: "Dala"},
		{ID: 3, Name: "Date"},
		{ID: 4, Name: "Dana"},
		{ID: 5, Name: "Dax"},
	}
	got := suggestCrew("Data", crews)
	if len(got) != maxSuggestions {
		t.Fatalf("suggestCrew() = %v, want %d entries", got, maxSuggestions)
	}
	if got[0] != "Data" {
		t.Errorf("exact match should come first, got %v", got)
	}
}

func TestDistanceLimit(t *testing.T) {
	tests := []struct{ length, want int }{{3, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3}, {20, 3}}
	for _, tt := range tests {
		if got := distanceLimit(tt.length); got != tt.want {
			t.Errorf("distanceLimit(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}
