package stt

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"time"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/cache"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/integrations"
	"github.com/matzehuels/equipneeds/pkg/player"
	"github.com/matzehuels/equipneeds/pkg/voyage"
)

// DefaultBaseURL is the game API root used when none is configured.
const DefaultBaseURL = "https://app.startrektimelines.com"

const userAgent = "equipneeds/1.0 (https://github.com/matzehuels/equipneeds)"

// Client provides access to the game API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	refresh bool
}

// NewClient creates a game API client with the given cache backend.
// An empty baseURL selects DefaultBaseURL; an empty token sends no
// Authorization header.
func NewClient(backend cache.Cache, baseURL, token string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"User-Agent": userAgent}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "stt:", cacheTTL, headers),
		baseURL: baseURL,
	}
}

// WithRefresh returns a copy of c whose cached endpoints bypass the cache
// when refresh is set. c itself is unchanged.
func (c *Client) WithRefresh(refresh bool) *Client {
	cp := *c
	cp.refresh = refresh
	return &cp
}

type descriptionResponse struct {
	ItemArchetypeCache *struct {
		Archetypes []archetype.Archetype `json:"archetypes"`
	} `json:"item_archetype_cache"`
}

// FetchItemDescriptions loads archetype definitions for refs, which may be
// ids or symbols. A response without an archetype cache yields an empty
// result, not an error.
func (c *Client) FetchItemDescriptions(ctx context.Context, refs []string) ([]archetype.Archetype, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	ids := integrations.JoinIDs(refs)

	var out []archetype.Archetype
	err := c.Cached(ctx, "item/description:"+cache.RefSetKey(refs), c.refresh, &out, func() error {
		var data descriptionResponse
		u := fmt.Sprintf("%s/item/description?ids=%s", c.baseURL, integrations.URLEncode(ids))
		if err := c.Get(ctx, u, &data); err != nil {
			return err
		}
		out = nil
		if data.ItemArchetypeCache != nil {
			out = data.ItemArchetypeCache.Archetypes
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "item descriptions (%d refs)", len(refs))
	}
	return out, nil
}

// Player fetches the current player snapshot.
func (c *Client) Player(ctx context.Context) (*player.Snapshot, error) {
	var snap player.Snapshot
	if err := c.Get(ctx, c.baseURL+"/player", &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch player data")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

type storeLayout struct {
	Grids []struct {
		PrimaryContent []player.StoreItem `json:"primary_content"`
	} `json:"grids"`
}

// LoadFactionStore fetches the faction's store layout and sets its
// StoreItems to the primary offer of every grid cell.
func (c *Client) LoadFactionStore(ctx context.Context, f *player.Faction) error {
	if f.ShopLayout == "" {
		return errors.New(errors.ErrCodeInvalidInput, "faction %d has no shop layout", f.ID)
	}

	var layouts []storeLayout
	err := c.Cached(ctx, "store:"+f.ShopLayout, c.refresh, &layouts, func() error {
		u := fmt.Sprintf("%s/commerce/store_layout_v2/%s", c.baseURL, url.PathEscape(f.ShopLayout))
		return c.Get(ctx, u, &layouts)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "store layout %s", f.ShopLayout)
	}
	if len(layouts) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "store layout %s is empty", f.ShopLayout)
	}

	items := make([]player.StoreItem, 0, len(layouts[0].Grids))
	for _, g := range layouts[0].Grids {
		if len(g.PrimaryContent) > 0 {
			items = append(items, g.PrimaryContent[0])
		}
	}
	f.StoreItems = items
	return nil
}

// LoadFactionStores loads the store of every faction that does not have
// one yet. Failures for individual factions are joined; factions that
// loaded keep their items.
func (c *Client) LoadFactionStores(ctx context.Context, factions []player.Faction) error {
	var errs []error
	for i := range factions {
		if factions[i].StoreItems != nil {
			continue
		}
		if err := c.LoadFactionStore(ctx, &factions[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

type refreshRequest struct {
	VoyageStatusID int  `json:"voyage_status_id"`
	NewOnly        bool `json:"new_only"`
}

type refreshAction struct {
	Character *struct {
		Voyage []voyage.Status `json:"voyage"`
	} `json:"character,omitempty"`
	VoyageNarrative []voyage.Event `json:"voyage_narrative,omitempty"`
}

// RefreshVoyage fetches the narrative of a running voyage. When newOnly
// is set the server returns only events not seen before. An empty
// response fails with errors.ErrCodeInvalidVoyage.
func (c *Client) RefreshVoyage(ctx context.Context, voyageID int, newOnly bool) (*voyage.Refresh, error) {
	if voyageID <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid voyage id %d", voyageID)
	}

	var actions []refreshAction
	req := refreshRequest{VoyageStatusID: voyageID, NewOnly: newOnly}
	if err := c.PostJSON(ctx, c.baseURL+"/voyage/refresh", req, &actions); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "refresh voyage %d", voyageID)
	}
	if len(actions) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidVoyage, "invalid data for voyage %d", voyageID)
	}

	out := &voyage.Refresh{}
	for _, a := range actions {
		switch {
		case a.Character != nil:
			if len(a.Character.Voyage) > 0 {
				s := a.Character.Voyage[0]
				out.Status = &s
			}
		case a.VoyageNarrative != nil:
			out.Narrative = a.VoyageNarrative
		}
	}
	return out, nil
}
