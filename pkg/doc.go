// Package pkg provides the core libraries for equipneeds, the equipment
// needs calculator.
//
// # Overview
//
// equipneeds answers one question: which base items does a crew roster
// still need to fully equip every member, given what the player already
// owns? The pkg directory is organized into four areas:
//
//  1. Data model: [archetype] (item definitions) and [player] (snapshot of
//     inventory, roster, crew catalog, factions and missions)
//  2. Domain logic: [catalog] (archetype catalog and its completion),
//     [sources] (cadet and faction source index), [needs] (demand
//     expansion, aggregation and filtering), [voyage]
//  3. Infrastructure: [cache], [session], [integrations], [observability]
//  4. Output: [render]
//
// # Architecture
//
//	player snapshot (game API or file)
//	         ↓
//	    [catalog] builder (snapshot by digest, fetch missing descriptions)
//	         ↓
//	    [session] (catalog + source index, rebuilt on digest change)
//	         ↓
//	    [needs] resolver (expand recipes, net against inventory)
//	         ↓
//	    filtered records (CLI table, TUI, JSON API)
//
// # Quick Start
//
//	snap, _ := player.Load("player.json")
//	mgr := session.NewManager(catalog.NewBuilder(client, store, catalog.Options{}), session.Options{})
//	report, _, _ := mgr.Resolve(ctx, snap, nil, needs.Options{OnlyNeeded: true})
//	for _, rec := range report.Records {
//	    fmt.Println(rec.Archetype.Name, rec.Needed)
//	}
//
// [archetype]: github.com/matzehuels/equipneeds/pkg/archetype
// [player]: github.com/matzehuels/equipneeds/pkg/player
// [catalog]: github.com/matzehuels/equipneeds/pkg/catalog
// [sources]: github.com/matzehuels/equipneeds/pkg/sources
// [needs]: github.com/matzehuels/equipneeds/pkg/needs
// [voyage]: github.com/matzehuels/equipneeds/pkg/voyage
// [cache]: github.com/matzehuels/equipneeds/pkg/cache
// [session]: github.com/matzehuels/equipneeds/pkg/session
// [integrations]: github.com/matzehuels/equipneeds/pkg/integrations
// [observability]: github.com/matzehuels/equipneeds/pkg/observability
// [render]: github.com/matzehuels/equipneeds/pkg/render
package pkg
