package distance

import (
	"fmt"
	"strings"
)

// Hamming calculates the Hamming distance between two codes.
// Assumes codes are the same length (caller's responsibility).
func Hamming(a, b []byte) int32 {
	return int32(kernelHamming(a, b))
}

// Manhattan calculates the sum of absolute byte-wise differences between two codes.
// Assumes codes are the same length (caller's responsibility).
func Manhattan(a, b []byte) int32 {
	var sum int32
	for i := range a {
		d := int32(a[i]) - int32(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// Metric identifies the distance used by an index.
type Metric int

const (
	MetricHamming Metric = iota
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricHamming:
		return "Hamming"
	case MetricManhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric parses the name of a metric (case-insensitive).
func ParseMetric(s string) (Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hamming":
		return MetricHamming, true
	case "manhattan", "l1":
		return MetricManhattan, true
	default:
		return 0, false
	}
}

// CodeFunc is the distance oracle over two codes.
type CodeFunc func(a, b []byte) int32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (CodeFunc, error) {
	switch m {
	case MetricHamming:
		return Hamming, nil
	case MetricManhattan:
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("unsupported metric for codes: %v", m)
	}
}
