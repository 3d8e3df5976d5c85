// Package topk selects the k smallest distances per query.
//
// The selector is a bounded 4-ary max-heap keyed by (distance, sequence),
// where sequence is the enumeration order of the candidate. A candidate is
// admitted only when its distance is strictly smaller than the current k-th
// best, so among equal distances the earlier-enumerated candidate keeps its
// rank. Finalize writes the selection in ascending order and pads unfilled
// slots with PadLabel and PadDistance.
package topk
