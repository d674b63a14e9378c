// Package fastpath provides an adaptive fast-path decision kernel for I/O
// dispatch.
//
// # Overview
//
// fastpath decides, per I/O cycle, whether the next access should take an
// optimized fast path (prefetch, cache bypass, direct dispatch) or the
// standard path. It watches a sliding window of recent logical block
// addresses, compresses the window into six bounded features, and runs a
// fixed-cost decision gate over them. The gate adapts its own threshold and
// phase from the observables it produces: no training data, no allocation,
// no unbounded state.
//
// # Architecture
//
// The package components:
//
//   - telemetry.go  - window feature extraction (span, velocity, variance,
//     spectral correlation, temporal weight, context)
//   - fastmath.go   - bounded approximations (atan, sigmoid, inverse sqrt)
//   - kernel.go     - the decision gate and its adaptive state
//   - config.go     - construction profiles, validation, YAML tune files
//   - registry.go   - named preset resolution
//   - window.go     - fixed-capacity LBA ring buffer
//   - dispatch.go   - multi-stream fan-out with per-stream kernels
//   - latency.go    - cycle-cost percentile tracking
//   - advisor.go    - tuning verdicts over kernel snapshots
//   - trajectory.go - state-orbit recording and period detection
//   - bench.go      - lane-scaling harness with USL fitting
//   - assertions.go - test helpers for kernel and scaling properties
//
// # Quick Start
//
// Create a kernel and feed it windows of recent addresses:
//
//	kernel, err := fastpath.NewKernel(fastpath.DefaultKernelConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var buf fastpath.WindowBuffer
//	var scratch [fastpath.MaxWindow]uint64
//
//	for lba := range addresses {
//	    buf.Observe(lba)
//
//	    prefetch, err := kernel.ProcessIOCycle(buf.Window(scratch[:0]))
//	    if err != nil {
//	        log.Fatal(err) // only possible on an empty window
//	    }
//	    if prefetch {
//	        // Take the fast path: issue the prefetch, bypass the cache.
//	    }
//	}
//
// # The Decision Cycle
//
// Every cycle runs the same fixed sequence. Features become angles, angles
// become observables, observables become a probability:
//
//	θ_i = 2·atan(feature_i)            (each θ_i bounded within ±π)
//	s   = θ_0 + θ_1                    (span + velocity phase sum)
//	O1  = cos(s + φ)
//	O2  = sin(s/2 - φ)
//	O3  = cos(θ_2 · φ)
//	P   = sigmoid(λ[2]·O3 + bias)
//	decision = P > ε                   (ties favor the standard path)
//
// The decision uses the state as it stood when the window arrived. Only
// afterwards does the kernel adapt:
//
//	φ ← wrap(φ + λ[1]·O2)   into [0, 2π)
//	ε ← clamp(ε + λ[0]·O1)  into [0.1, 0.9]
//
// Decide first, adapt second: replaying the same windows through the same
// configuration reproduces every decision bit for bit.
//
// # Presets
//
// Three shipped profiles encode a risk posture:
//
//   - conservative: ε starts at 0.65, small rates, negative bias. For
//     latency-deterministic pipelines (market data) where a wrong prefetch
//     costs more than a missed one.
//   - default: ε starts at 0.5, moderate rates. For unknown workloads.
//   - aggressive: ε starts at 0.40, large rates, positive bias. For
//     throughput streaming (asset loading) where missed prefetches are the
//     expensive case.
//
// Operators resolve profiles by name through the preset registry and tune
// them per deployment with YAML files (LoadKernelConfig).
//
// # Multi-Stream Dispatch
//
// One kernel follows one stream. For multi-queue workloads the Dispatcher
// owns a kernel and a window buffer per stream:
//
//	d, err := fastpath.NewDispatcher(4, fastpath.AggressiveKernelConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d.Observe(queueID, lba)
//	prefetch, err := d.Decide(queueID)
//
// Streams never share adaptive state, so per-stream decisions match what a
// standalone kernel would have produced.
//
// # Scalability
//
// The lane-scaling harness measures aggregate decision throughput at
// several lane counts and fits the Universal Scalability Law:
//
//	C(N) = λN / (1 + α(N-1) + βN(N-1))
//
// Where:
//   - λ (lambda): Single-lane throughput (cycles/sec at N=1)
//   - α (alpha): Contention coefficient
//   - β (beta): Coordination coefficient
//
// Kernels share nothing, so a healthy deployment fits α ≈ 0, β ≈ 0. A
// contention coefficient that climbs points at the harness, the allocator,
// or the machine, never at cross-kernel locks (there are none).
//
// # Testing
//
// Use the assertion helpers to pin the kernel's contract in your own tests:
//
//	func TestMyWorkload(t *testing.T) {
//	    k, _ := fastpath.NewKernel(fastpath.DefaultKernelConfig())
//
//	    for _, window := range myWindows {
//	        k.ProcessIOCycle(window)
//	        fastpath.AssertKernelInvariants(t, k) // ε and φ stay in range
//	    }
//
//	    // Identical inputs must reproduce identical decisions.
//	    fastpath.AssertDeterministicReplay(t, fastpath.DefaultKernelConfig(), myWindows)
//	}
//
// # Philosophy
//
// Static prefetch heuristics answer: "did the last two strides match?"
// fastpath answers: "what do the window's dynamics say about the next
// access?"
//
//   - Bounded state: two adaptive scalars, both clamped, forever.
//   - Fixed cost: every cycle runs the same arithmetic, no allocation.
//   - Deterministic: same configuration + same windows = same decisions.
//   - Honest ties: when the evidence is exactly ambiguous, take the
//     standard path.
//
// This shifts prefetch control from hand-tuned stride tables to a small
// dynamical system whose behavior is observable (Snapshot, RunTrajectory)
// and testable (deterministic replay).
//
// # Production Usage
//
// A dispatch loop with cost tracking and periodic tuning advice:
//
//	kernel, _ := fastpath.NewKernel(cfg)
//	costs := fastpath.NewCycleLatencyTracker(1000)
//	advisor, _ := fastpath.NewTuningAdvisor(fastpath.DefaultAdvisorConfig())
//
//	var buf fastpath.WindowBuffer
//	var scratch [fastpath.MaxWindow]uint64
//
//	for lba := range queue {
//	    buf.Observe(lba)
//
//	    start := time.Now()
//	    prefetch, _ := kernel.ProcessIOCycle(buf.Window(scratch[:0]))
//	    costs.Record(time.Since(start))
//
//	    if prefetch {
//	        prefetcher.Issue(lba)
//	    }
//
//	    if kernel.Cycles()%4096 == 0 {
//	        advice := advisor.Advise(kernel.Snapshot())
//	        if advice.Decision != fastpath.TuningStable {
//	            slog.Warn("kernel tuning", "verdict", advice.Decision, "ratio", advice.Ratio)
//	        }
//	    }
//	}
//
// # See Also
//
//   - examples/streaming/ - paired demos: the same workloads with the
//     kernel and with a static stride heuristic
package fastpath
