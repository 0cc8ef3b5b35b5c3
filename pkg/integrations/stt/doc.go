// Package stt provides an HTTP client for the game API.
//
// # Overview
//
// The client covers the handful of endpoints the needs resolver and its
// helpers consume:
//
//   - item/description: archetype definitions by id or symbol, used by
//     catalog completion (implements catalog.DescriptionFetcher)
//   - player: the player snapshot (implements player.Source)
//   - commerce/store_layout_v2: faction store contents
//   - voyage/refresh: the narrative of a running voyage
//
// # Usage
//
//	client := stt.NewClient(backend, "https://api.example.com", token, 24*time.Hour)
//
//	snap, err := client.Player(ctx)
//	archetypes, err := client.FetchItemDescriptions(ctx, []string{"1001", "1002"})
//
// Item descriptions and store layouts are cached through the backend.
// Player data and voyage refreshes are always fetched live.
//
// # Failure handling
//
// A failing description batch is returned as an error; bisecting the batch
// to isolate a bad id is the caller's job. An empty voyage refresh is
// reported as errors.ErrCodeInvalidVoyage and must not be ignored.
package stt
