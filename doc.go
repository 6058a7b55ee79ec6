// Package ksplit infers phylogenetic splits of a set of genomes from the
// k-mers they share, without aligning them.
//
// Every k-mer of every genome is recorded together with the set of genomes
// (its colors) it occurs in. A color set and its complement describe the
// same bipartition of the genomes, a split. The number of k-mers supporting
// each side of a split is turned into a weight, and the heaviest splits are
// kept in a bounded list.
//
// # Pipeline
//
// An [Engine] is created once for a fixed set of genome names and runs in
// two phases:
//
// Ingestion: any number of goroutines call [Engine.AddSequence] with their
// own worker index. K-mers are stored in a sharded hash table where each
// shard is guarded by its own spin lock, so workers only contend when they
// hit the same shard. K-mers seen in a single genome are kept apart until a
// second genome reports them.
//
// Post-processing: after every worker has returned, [Engine.Compile] turns
// the stored colors into weighted splits, [Engine.Filter] optionally reduces
// them to a compatible subset, and the Write methods render the result.
// Post-processing is single-threaded and must not overlap with ingestion.
//
// # Filters
//
// The filter is selected with [Options.Filter]:
//
//   - "strict" (or "tree") keeps splits that form a single tree, heaviest
//     first.
//   - "weakly" keeps a weakly compatible set, which may form a network.
//   - "<n>tree" keeps splits that fit into one of n trees.
//   - "gdac" builds one tree by divide and conquer over all splits rather
//     than only the top of the list.
//
// Newick output needs a filter that produces trees.
//
// # Widths
//
// K-mers and color sets are fixed-width bit vectors. [New] picks the
// smallest width that holds k symbols and one bit per genome: 64, 128 or 256
// bits for k-mers and 64, 128, 256 or 512 bits for colors.
package ksplit
