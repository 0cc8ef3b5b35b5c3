// Package needs resolves the leaf crafting materials a crew roster still
// needs.
//
// Resolution runs in three stages:
//
//   - [Expander] walks a worklist of [Demand] values through the recipe
//     graph, netting out owned intermediate items, and records every leaf
//     (source-obtainable) material it reaches in a [Table].
//   - [Merge] combines tables from separate expansion passes by summing
//     totals and per-requester counts.
//   - [Resolver] seeds worklists from crew equipment slots, runs the passes,
//     and projects the merged table into a sorted, filtered report.
//
// # Ownership netting
//
// An intermediate item that the player partly owns is netted once per
// expansion pass, not once per occurrence. The first demand for it
// subtracts the owned quantity; later demands in the same pass only add to
// the running total. Children are still pushed with zero need when the
// owned stock covers a demand, so requesters are attributed even when
// nothing further is needed.
//
// # Bad data
//
// Recipe data is crowdsourced and may reference unknown archetypes or
// contain cycles. Neither is an error: unknown items are logged and
// dropped, and every expansion is bounded by [Expander.MaxIterations]. A
// truncated pass still returns everything recorded so far.
package needs
