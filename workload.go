package fastpath

import "fmt"

// WorkloadPattern names a synthetic LBA stream shape used to exercise and
// benchmark kernels. Generation is pure: the same (pattern, base, count)
// always yields the same addresses, so replay comparisons stay exact.
type WorkloadPattern string

const (
	// WorkloadSequential emits base, base+1, base+2, ... (streaming reads).
	WorkloadSequential WorkloadPattern = "SEQUENTIAL"

	// WorkloadRandom emits pseudo-random addresses below 100000 from a
	// 64-bit LCG seeded with base (database page reads).
	WorkloadRandom WorkloadPattern = "RANDOM"

	// WorkloadBursty emits sequential runs with a 1000-block jump every
	// 5th element (file-to-file scans).
	WorkloadBursty WorkloadPattern = "BURSTY"

	// WorkloadHFTTick emits unit strides with a 64-block jump every 10th
	// element, the cache-line-aligned shape of tick-data feeds.
	WorkloadHFTTick WorkloadPattern = "HFT_TICK"
)

const (
	// Knuth's MMIX multiplier; with the +1 increment the LCG is full-period
	// over 64 bits.
	lcgMultiplier = 6364136223846793005
	lcgRange      = 100000

	burstyJump   = 1000
	burstyEvery  = 5
	hftTickJump  = 64
	hftTickEvery = 10
)

// Validate rejects unknown pattern names.
func (p WorkloadPattern) Validate() error {
	switch p {
	case WorkloadSequential, WorkloadRandom, WorkloadBursty, WorkloadHFTTick:
		return nil
	}
	return fmt.Errorf(
		"unknown workload pattern %q\n"+
			"  OPTIONS: [%s %s %s %s]",
		p, WorkloadSequential, WorkloadRandom, WorkloadBursty, WorkloadHFTTick)
}

// Generate returns count addresses of this pattern starting from base.
func (p WorkloadPattern) Generate(base uint64, count int) []uint64 {
	return p.AppendTo(make([]uint64, 0, count), base, count)
}

// AppendTo appends count addresses to dst and returns the extended slice,
// allocating only if dst lacks capacity. Unknown patterns append nothing;
// call Validate first when the pattern comes from user input.
func (p WorkloadPattern) AppendTo(dst []uint64, base uint64, count int) []uint64 {
	switch p {
	case WorkloadSequential:
		for i := 0; i < count; i++ {
			dst = append(dst, base+uint64(i))
		}
	case WorkloadRandom:
		rng := base
		for i := 0; i < count; i++ {
			rng = rng*lcgMultiplier + 1
			dst = append(dst, rng%lcgRange)
		}
	case WorkloadBursty:
		pos := base
		for i := 0; i < count; i++ {
			if i%burstyEvery == 0 {
				pos += burstyJump
			}
			dst = append(dst, pos)
			pos++
		}
	case WorkloadHFTTick:
		pos := base
		for i := 0; i < count; i++ {
			if i%hftTickEvery == 0 {
				pos += hftTickJump
			}
			dst = append(dst, pos)
			pos++
		}
	}
	return dst
}
