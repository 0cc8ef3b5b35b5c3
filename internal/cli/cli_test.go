package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/needs"
)

const testPlayer = `{
  "character": {
    "id": 1,
    "crew": [
      {"id": 7, "symbol": "kirk", "name": "James T. Kirk",
       "equipment_slots": [{"level": 1, "archetype": 1}]},
      {"id": 8, "symbol": "spock", "name": "Spock",
       "equipment_slots": [{"level": 1, "archetype": 2}]}
    ],
    "items": [{"archetype_id": 2, "quantity": 1}],
    "ships": [
      {"id": 1, "name": "Enterprise", "antimatter": 2500, "traits": ["explorer"]},
      {"id": 2, "name": "Defiant", "antimatter": 2600, "traits": []}
    ],
    "voyage_descriptions": [{"id": 1, "ship_trait": "explorer"}]
  },
  "item_archetypes": [
    {"id": 1, "symbol": "phaser", "name": "Phaser", "rarity": 2,
     "recipe": {"demands": [{"archetype_id": 2, "count": 3}]}}
  ],
  "recipe_tree_digest": "digest-1"
}`

// descriptionServer serves item descriptions for id 2 and counts calls.
func descriptionServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/item/description" {
			http.NotFound(w, r)
			return
		}
		var out []archetype.Archetype
		for _, ref := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if ref == "2" || ref == "crystal" {
				out = append(out, archetype.Archetype{
					ID: 2, Symbol: "crystal", Name: "Crystal", Rarity: 1,
					ItemSources: []archetype.ItemSource{{Type: archetype.SourceFaction, Name: "Romulan", EnergyQuotient: 1}},
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"item_archetype_cache": map[string]any{"archetypes": out},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// fixture writes the player snapshot and a config pointing at srv.
func fixture(t *testing.T, srv *httptest.Server) (playerPath, configPath string) {
	t.Helper()
	t.Setenv("EQUIPNEEDS_TOKEN", "")
	dir := t.TempDir()
	playerPath = filepath.Join(dir, "player.json")
	if err := os.WriteFile(playerPath, []byte(testPlayer), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath = writeConfig(t, "[api]\nbase_url = \""+srv.URL+"\"\n\n[cache]\nbackend = \"none\"\n")
	return playerPath, configPath
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"needs", "catalog", "tree", "voyage", "serve", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestNeedsJSON(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)

	out, err := execute(t, "--config", cfg, "needs", "--player", playerPath, "--json")
	if err != nil {
		t.Fatalf("needs error: %v", err)
	}

	var report needs.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Crew != 2 || len(report.Records) != 1 {
		t.Fatalf("report = %+v", report)
	}
	r := report.Records[0]
	if r.Archetype.ID != 2 || r.Needed != 4 || r.Have != 1 || !r.Faction {
		t.Errorf("record = %+v", r)
	}
	if got := r.Counts[7].Count; got != 3 {
		t.Errorf("Kirk's share = %d, want 3", got)
	}
}

func TestNeedsCrewByName(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)

	out, err := execute(t, "--config", cfg, "needs", "--player", playerPath, "--json", "--crew", "spock")
	if err != nil {
		t.Fatalf("needs error: %v", err)
	}
	var report needs.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if report.Crew != 1 || len(report.Records) != 1 || report.Records[0].Needed != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestNeedsUnknownCrewSuggests(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)

	_, err := execute(t, "--config", cfg, "needs", "--player", playerPath, "--crew", "Spokc")
	if !errors.Is(err, errors.ErrCodeCrewNotFound) {
		t.Fatalf("error = %v, want CREW_NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "did you mean Spock?") {
		t.Errorf("error = %q, want a suggestion", err)
	}
}

func TestNeedsWithoutPlayerSource(t *testing.T) {
	srv, _ := descriptionServer(t)
	_, cfg := fixture(t, srv)

	_, err := execute(t, "--config", cfg, "needs")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestTreeDOT(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)

	out, err := execute(t, "--config", cfg, "tree", "phaser", "--player", playerPath)
	if err != nil {
		t.Fatalf("tree error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") || !strings.Contains(out, `"a1" -> "a2"`) {
		t.Errorf("tree output = %s", out)
	}
}

func TestTreeToFile(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)
	dst := filepath.Join(t.TempDir(), "phaser.dot")

	if _, err := execute(t, "--config", cfg, "tree", "1", "--player", playerPath, "--have", "-o", dst); err != nil {
		t.Fatalf("tree error: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "have: 1") {
		t.Errorf("tree with --have should annotate owned counts:\n%s", data)
	}
}

func TestTreeErrors(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"tree", "phaser", "--format", "png"}, errors.ErrCodeInvalidFormat},
		{"negative depth", []string{"tree", "phaser", "--depth", "-1"}, errors.ErrCodeInvalidInput},
		{"unknown item", []string{"tree", "photon_torpedo", "--player", playerPath}, errors.ErrCodeArchetypeNotFound},
		{"unknown id", []string{"tree", "999", "--player", playerPath}, errors.ErrCodeArchetypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg}, tt.args...)
			if _, err := execute(t, args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestVoyageShips(t *testing.T) {
	srv, _ := descriptionServer(t)
	playerPath, cfg := fixture(t, srv)

	out, err := execute(t, "--config", cfg, "voyage", "ships", "--player", playerPath)
	if err != nil {
		t.Fatalf("voyage ships error: %v", err)
	}
	enterprise := strings.Index(out, "Enterprise")
	defiant := strings.Index(out, "Defiant")
	if enterprise < 0 || defiant < 0 || enterprise > defiant {
		t.Errorf("Enterprise should rank above Defiant:\n%s", out)
	}
	if !strings.Contains(out, "2650") {
		t.Errorf("trait bonus missing from score:\n%s", out)
	}
}

func TestVoyageRefreshNeedsToken(t *testing.T) {
	srv, _ := descriptionServer(t)
	_, cfg := fixture(t, srv)

	if _, err := execute(t, "--config", cfg, "voyage", "refresh", "12"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
	if _, err := execute(t, "--config", cfg, "voyage", "refresh", "x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCatalogSyncUsesSnapshotCache(t *testing.T) {
	srv, calls := descriptionServer(t)
	playerPath, _ := fixture(t, srv)
	cfg := writeConfig(t, "[api]\nbase_url = \""+srv.URL+"\"\n\n[cache]\ndir = \""+t.TempDir()+"\"\n")

	if _, err := execute(t, "--config", cfg, "catalog", "sync", "--player", playerPath); err != nil {
		t.Fatalf("first sync error: %v", err)
	}
	first := calls.Load()
	if first == 0 {
		t.Fatal("first sync should fetch descriptions")
	}

	if _, err := execute(t, "--config", cfg, "catalog", "sync", "--player", playerPath); err != nil {
		t.Fatalf("second sync error: %v", err)
	}
	if calls.Load() != first {
		t.Errorf("second sync fetched again (%d calls, want %d)", calls.Load(), first)
	}
}

func TestNeedsFlagsOptions(t *testing.T) {
	f := needsFlags{onlyNeeded: true, cadet: true, query: "4"}
	got := f.options()
	want := needs.Options{OnlyNeeded: true, Cadetable: true, Text: "4"}
	if got != want {
		t.Errorf("options() = %+v, want %+v", got, want)
	}
}

func TestLookupArchetype(t *testing.T) {
	cat := catalog.New(archetype.Archetype{ID: 5, Symbol: "tricorder", Name: "Tricorder"})

	for _, target := range []string{"5", "tricorder"} {
		a, err := lookupArchetype(cat, target)
		if err != nil || a.ID != 5 {
			t.Errorf("lookupArchetype(%q) = %+v, %v", target, a, err)
		}
	}
	if _, err := lookupArchetype(cat, "6"); !errors.Is(err, errors.ErrCodeArchetypeNotFound) {
		t.Errorf("lookupArchetype(6) error = %v", err)
	}
}
