// Package testutil provides testing utilities for binvec.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random binary codes, computing exact
// nearest neighbors, and verifying search recall.
//
// # Random Code Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Codes(1000, 8)    // 1000 random 64-bit codes
//	q := rng.Near(data[:8], 3)    // Hamming distance 3 from code 0
//
// # Exact Search (Ground Truth)
//
//	results := testutil.ExactTopK(query, data, ids, 8, k, distance.Hamming)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(exact, approx)
package testutil
