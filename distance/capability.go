package distance

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Kernel identifies a Hamming kernel implementation.
type Kernel uint8

const (
	// KernelGeneric counts bits one byte at a time.
	KernelGeneric Kernel = iota
	// KernelWord counts bits over 64-bit words using hardware popcount.
	KernelWord
)

// String returns the string representation of a Kernel.
func (k Kernel) String() string {
	switch k {
	case KernelGeneric:
		return "generic"
	case KernelWord:
		return "word"
	default:
		return "unknown"
	}
}

// ParseKernel parses a string into a Kernel value.
func ParseKernel(s string) (Kernel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return KernelGeneric, true
	case "word":
		return KernelWord, true
	default:
		return KernelGeneric, false
	}
}

// Package-level state, initialized once at package init.
var (
	activeKernel Kernel
	hasOverride  bool
)

func init() {
	initCapabilities()
}

func initCapabilities() {
	if override := os.Getenv("BINVEC_KERNEL"); override != "" {
		if k, ok := ParseKernel(override); ok {
			hasOverride = true
			setKernel(k)
			return
		}
	}
	setKernel(selectBestKernel())
}

// selectBestKernel picks the word kernel when the CPU has a popcount instruction.
func selectBestKernel() Kernel {
	if HasPopcount() {
		return KernelWord
	}
	return KernelGeneric
}

func setKernel(k Kernel) {
	activeKernel = k
	switch k {
	case KernelWord:
		kernelHamming = hammingWord
	default:
		kernelHamming = hammingGeneric
	}
}

// HasPopcount reports whether the CPU provides a hardware popcount instruction.
func HasPopcount() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasPOPCNT
	case "arm64":
		return cpu.ARM64.HasASIMD
	case "ppc64", "ppc64le", "s390x", "riscv64", "loong64":
		return true
	default:
		return false
	}
}

// ActiveKernel returns the Hamming kernel in use.
func ActiveKernel() Kernel {
	return activeKernel
}

// IsOverridden reports whether BINVEC_KERNEL selected the kernel.
func IsOverridden() bool {
	return hasOverride
}
