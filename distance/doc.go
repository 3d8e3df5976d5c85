// Package distance provides the integer distance oracles used by binary indexes.
//
// All oracles operate on two codes of equal length and return a non-negative
// int32 that is symmetric and zero only for identical codes.
//
// # Supported Metrics
//
//   - MetricHamming: number of differing bits (default)
//   - MetricManhattan: sum of absolute byte-wise differences
//
// # Kernel Selection
//
// The Hamming kernel is chosen once at init from the CPU features reported by
// golang.org/x/sys/cpu. Set BINVEC_KERNEL=generic or BINVEC_KERNEL=word to
// force a kernel.
//
// # Usage
//
//	dist := distance.Hamming(a, b)
//	fn, _ := distance.Provider(distance.MetricHamming)
package distance
