package cli

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/player"
)

// maxSuggestions caps the "did you mean" list.
const maxSuggestions = 3

// resolveCrew maps --crew arguments to crew ids. Each argument is a numeric
// id, a symbol or a display name (case-insensitive). Names are looked up in
// the roster first, then in the full crew catalog.
func resolveCrew(args []string, roster, allCrew []player.Crew) ([]int, error) {
	var ids []int
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if id, err := strconv.Atoi(arg); err == nil {
			if id <= 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "invalid crew id %d", id)
			}
			ids = append(ids, id)
			continue
		}
		c, ok := findCrewByName(arg, roster)
		if !ok {
			c, ok = findCrewByName(arg, allCrew)
		}
		if !ok {
			return nil, unknownCrewError(arg, roster, allCrew)
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func findCrewByName(name string, crews []player.Crew) (player.Crew, bool) {
	for _, c := range crews {
		if strings.EqualFold(c.Symbol, name) || strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return player.Crew{}, false
}

func unknownCrewError(name string, roster, allCrew []player.Crew) error {
	err := errors.New(errors.ErrCodeCrewNotFound, "no crew named %q", name)
	if s := suggestCrew(name, roster, allCrew); len(s) > 0 {
		err.Message += "; did you mean " + strings.Join(s, ", ") + "?"
	}
	return err
}

// suggestCrew returns up to maxSuggestions crew names within a typo's edit
// distance of name, closest first.
func suggestCrew(name string, crewLists ...[]player.Crew) []string {
	type match struct {
		name string
		dist int
	}

	query := strings.ToLower(name)
	seen := make(map[string]bool)
	var matches []match
	for _, crews := range crewLists {
		for _, c := range crews {
			if c.Name == "" || seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			dist := min(
				levenshtein.ComputeDistance(query, strings.ToLower(c.Name)),
				levenshtein.ComputeDistance(query, strings.ToLower(c.Symbol)),
			)
			if dist <= distanceLimit(len(c.Name)) {
				matches = append(matches, match{name: c.Name, dist: dist})
			}
		}
	}

	slices.SortFunc(matches, func(a, b match) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches[:min(len(matches), maxSuggestions)] {
		out = append(out, m.name)
	}
	return out
}

// distanceLimit scales the accepted edit distance with the name length.
func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
