package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/cache"
	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/player"
)

var (
	_ catalog.DescriptionFetcher = (*Client)(nil)
	_ player.Source              = (*Client)(nil)
)

func testClient(t *testing.T, serverURL string, backend cache.Cache) *Client {
	t.Helper()
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return NewClient(backend, serverURL, "secret", time.Hour)
}

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), "", "", time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}

func TestClient_FetchItemDescriptions(t *testing.T) {
	var gotIDs, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item/description" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotIDs = r.URL.Query().Get("ids")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"item_archetype_cache":{"archetypes":[
			{"id":101,"symbol":"tricorder","name":"Tricorder","rarity":2,
			 "recipe":{"demands":[{"archetype_id":7,"count":3}]}},
			{"id":7,"symbol":"circuit","name":"Circuit","rarity":1,
			 "item_sources":[{"type":1,"energy_quotient":0.5,"name":"Romulan Transmission"}]}
		]}}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	got, err := c.FetchItemDescriptions(context.Background(), []string{"101", "7"})
	if err != nil {
		t.Fatalf("FetchItemDescriptions() error: %v", err)
	}
	if gotIDs != "101,7" {
		t.Errorf("ids = %q, want %q", gotIDs, "101,7")
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(got) != 2 {
		t.Fatalf("got %d archetypes, want 2", len(got))
	}
	if !got[0].HasRecipe() || got[0].Demands()[0].Count != 3 {
		t.Errorf("recipe not decoded: %+v", got[0].Recipe)
	}
	if !got[1].HasSourceType(archetype.SourceFaction) {
		t.Errorf("sources not decoded: %+v", got[1].ItemSources)
	}
}

func TestClient_FetchItemDescriptionsMissingEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	got, err := testClient(t, server.URL, nil).FetchItemDescriptions(context.Background(), []string{"1"})
	if err != nil {
		t.Fatalf("FetchItemDescriptions() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestClient_FetchItemDescriptionsEmptyRefs(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0", nil)
	got, err := c.FetchItemDescriptions(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("FetchItemDescriptions(nil) = %v, %v", got, err)
	}
}

func TestClient_FetchItemDescriptionsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL, nil).FetchItemDescriptions(context.Background(), []string{"1", "2"})
	if !errors.Is(err, errors.ErrCodeFetchFailed) {
		t.Errorf("error = %v, want FETCH_FAILED", err)
	}
}

func TestClient_FetchItemDescriptionsCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"item_archetype_cache":{"archetypes":[{"id":1,"symbol":"a"}]}}`))
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, server.URL, backend)

	for range 2 {
		got, err := c.FetchItemDescriptions(context.Background(), []string{"1"})
		if err != nil {
			t.Fatalf("FetchItemDescriptions() error: %v", err)
		}
		if len(got) != 1 || got[0].Symbol != "a" {
			t.Fatalf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}

	fresh := c.WithRefresh(true)
	if fresh == c {
		t.Fatal("WithRefresh should return a copy")
	}
	if _, err := fresh.FetchItemDescriptions(context.Background(), []string{"1"}); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("server calls after refresh = %d, want 2", calls)
	}

	// the original client still reads through the cache
	if _, err := c.FetchItemDescriptions(context.Background(), []string{"1"}); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("server calls on original client = %d, want 2", calls)
	}
}

func TestClient_FetchItemDescriptionsReorderedBatchCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"item_archetype_cache":{"archetypes":[{"id":1,"symbol":"a"},{"id":2,"symbol":"b"}]}}`))
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, server.URL, backend)

	for _, refs := range [][]string{{"1", "2"}, {"2", "1"}, {"2", "1", "2"}} {
		got, err := c.FetchItemDescriptions(context.Background(), refs)
		if err != nil {
			t.Fatalf("FetchItemDescriptions(%v) error: %v", refs, err)
		}
		if len(got) != 2 {
			t.Fatalf("FetchItemDescriptions(%v) = %+v", refs, got)
		}
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestClient_BisectingBuilder(t *testing.T) {
	// A poisoned id makes the whole batch fail; the catalog builder isolates it.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		var resp descriptionResponse
		resp.ItemArchetypeCache = &struct {
			Archetypes []archetype.Archetype `json:"archetypes"`
		}{}
		for _, id := range ids {
			if id == "3" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			resp.ItemArchetypeCache.Archetypes = append(resp.ItemArchetypeCache.Archetypes,
				archetype.Archetype{ID: atoi(id), Symbol: "item_" + id})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	b := catalog.NewBuilder(c, nil, catalog.Options{})

	roster := []player.Crew{{ID: 1, Symbol: "kirk", EquipmentSlots: []player.EquipmentSlot{
		{Level: 1, Archetype: 1}, {Level: 1, Archetype: 2}, {Level: 1, Archetype: 3}, {Level: 1, Archetype: 4},
	}}}
	res, err := b.Build(context.Background(), catalog.Input{Digest: "d1", Roster: roster})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, id := range []int{1, 2, 4} {
		if !res.Catalog.Has(id) {
			t.Errorf("catalog missing %d", id)
		}
	}
	if res.Catalog.Has(3) {
		t.Error("poisoned id 3 should not be in the catalog")
	}
	if len(res.Report.Dropped) != 1 || res.Report.Dropped[0] != "3" {
		t.Errorf("dropped = %v, want [3]", res.Report.Dropped)
	}
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func TestClient_Player(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"character":{"id":9,"items":[{"archetype_id":7,"quantity":4}],
			"crew":[{"id":1,"symbol":"kirk","name":"Kirk","equipment_slots":[]}]},
			"recipe_tree_digest":"abc"}`))
	}))
	defer server.Close()

	snap, err := testClient(t, server.URL, nil).Player(context.Background())
	if err != nil {
		t.Fatalf("Player() error: %v", err)
	}
	if snap.RecipeTreeDigest != "abc" || snap.Inventory().Quantity(7) != 4 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestClient_PlayerEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := testClient(t, server.URL, nil).Player(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidSession) {
		t.Errorf("error = %v, want INVALID_SESSION", err)
	}
}

func TestClient_LoadFactionStore(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"grids":[
			{"primary_content":[{"offer":{"game_item":{"id":7,"type":2,"item_type":3},"cost":{"currency":"honor","amount":40}}},
			                    {"offer":{"game_item":{"id":8,"type":2,"item_type":3}}}]},
			{"primary_content":[]},
			{"primary_content":[{"offer":{"game_item":{"id":9,"type":1,"item_type":0}}}]}
		]}]`))
	}))
	defer server.Close()

	f := player.Faction{ID: 3, Name: "Romulan", ShopLayout: "romulan_store"}
	if err := testClient(t, server.URL, nil).LoadFactionStore(context.Background(), &f); err != nil {
		t.Fatalf("LoadFactionStore() error: %v", err)
	}
	if gotPath != "/commerce/store_layout_v2/romulan_store" {
		t.Errorf("path = %q", gotPath)
	}
	if len(f.StoreItems) != 2 {
		t.Fatalf("store items = %d, want 2", len(f.StoreItems))
	}
	if f.StoreItems[0].Offer.GameItem.ID != 7 || !f.StoreItems[0].IsMaterial() {
		t.Errorf("first item = %+v", f.StoreItems[0])
	}
	if f.StoreItems[1].IsMaterial() {
		t.Error("second item should not be material")
	}
}

func TestClient_LoadFactionStoreErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	tests := []struct {
		name    string
		faction player.Faction
		code    errors.Code
	}{
		{"no layout", player.Faction{ID: 1}, errors.ErrCodeInvalidInput},
		{"empty response", player.Faction{ID: 2, ShopLayout: "x"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.LoadFactionStore(context.Background(), &tt.faction)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestClient_LoadFactionStoresSkipsLoaded(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[{"grids":[{"primary_content":[{"offer":{"game_item":{"id":1,"type":2,"item_type":2}}}]}]}]`))
	}))
	defer server.Close()

	factions := []player.Faction{
		{ID: 1, ShopLayout: "a", StoreItems: []player.StoreItem{}},
		{ID: 2, ShopLayout: "b"},
	}
	if err := testClient(t, server.URL, nil).LoadFactionStores(context.Background(), factions); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(factions[1].StoreItems) != 1 {
		t.Errorf("faction 2 items = %v", factions[1].StoreItems)
	}
}

func TestClient_RefreshVoyage(t *testing.T) {
	var got refreshRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/voyage/refresh" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`[
			{"character":{"voyage":[{"id":55,"state":"started","hp":900,"max_hp":1000}]}},
			{"voyage_narrative":[{"index":0,"text":"Departed."},{"index":1,"text":"Found a nebula."}]}
		]`))
	}))
	defer server.Close()

	res, err := testClient(t, server.URL, nil).RefreshVoyage(context.Background(), 55, true)
	if err != nil {
		t.Fatalf("RefreshVoyage() error: %v", err)
	}
	if got.VoyageStatusID != 55 || !got.NewOnly {
		t.Errorf("request = %+v", got)
	}
	if res.Status == nil || res.Status.Hp != 900 {
		t.Errorf("status = %+v", res.Status)
	}
	if len(res.Narrative) != 2 || res.Narrative[1].Text != "Found a nebula." {
		t.Errorf("narrative = %+v", res.Narrative)
	}
}

func TestClient_RefreshVoyageInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null", "null"},
		{"empty list", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(t, server.URL, nil).RefreshVoyage(context.Background(), 1, false)
			if !errors.Is(err, errors.ErrCodeInvalidVoyage) {
				t.Errorf("error = %v, want INVALID_VOYAGE", err)
			}
			if !errors.IsFailFast(err) {
				t.Error("invalid voyage should be fail-fast")
			}
		})
	}
}

func TestClient_RefreshVoyageBadID(t *testing.T) {
	_, err := testClient(t, "http://127.0.0.1:0", nil).RefreshVoyage(context.Background(), 0, false)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
