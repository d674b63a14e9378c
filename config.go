package fastpath

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Clamp band for the adaptive threshold. The runtime update can never move
// epsilon outside this range, so an initial value outside it would be
// unreachable dead state.
const (
	EpsilonMin = 0.1
	EpsilonMax = 0.9
)

// KernelConfig carries the four construction parameters of a decision
// kernel. Lambda and Bias are frozen into the kernel at construction;
// Epsilon and Phi are only the starting points of the adaptive trajectory.
type KernelConfig struct {
	// Epsilon is the initial decision threshold in [0.1, 0.9]. Higher
	// values make the kernel more reluctant to take the fast path.
	Epsilon float64 `yaml:"epsilon"`

	// Phi is the initial measurement phase in [0, 2π).
	Phi float64 `yaml:"phi"`

	// Lambda holds the three non-negative rate coefficients:
	//   Lambda[0]: threshold adaptation rate
	//   Lambda[1]: phase rotation rate
	//   Lambda[2]: fetch probability scaling
	Lambda [3]float64 `yaml:"lambda,flow"`

	// Bias shifts the sigmoid argument of the fetch probability.
	Bias float64 `yaml:"bias"`
}

// DefaultKernelConfig is the balanced profile: moderate threshold, moderate
// rates. A reasonable starting point when the workload is unknown.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{Epsilon: 0.5, Phi: 0.1, Lambda: [3]float64{0.1, 0.2, 0.3}, Bias: 0.05}
}

// ConservativeKernelConfig favors the standard path: high initial threshold
// and small rates, minimizing false fast-path decisions. Suited to
// latency-deterministic pipelines such as market-data feeds.
func ConservativeKernelConfig() KernelConfig {
	return KernelConfig{Epsilon: 0.65, Phi: 0.05, Lambda: [3]float64{0.03, 0.08, 0.15}, Bias: -0.02}
}

// AggressiveKernelConfig favors the fast path: low initial threshold and
// large rates, maximizing bypass usage. Suited to throughput-oriented
// streaming such as asset or model-weight loading.
func AggressiveKernelConfig() KernelConfig {
	return KernelConfig{Epsilon: 0.4, Phi: 0.2, Lambda: [3]float64{0.15, 0.25, 0.35}, Bias: 0.05}
}

// Validate rejects parameter sets the kernel could not safely adopt. This is
// the package's only error class: a kernel that constructs successfully can
// never fail on a well-formed cycle.
func (c KernelConfig) Validate() error {
	for i, l := range c.Lambda {
		if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
			return fmt.Errorf(
				"invalid lambda[%d] = %v: rate coefficients must be finite and non-negative\n"+
					"  Risk: a negative rate inverts the adaptation direction, a non-finite rate corrupts state\n"+
					"  Action: start from a preset (conservative [0.03 0.08 0.15], aggressive [0.15 0.25 0.35]) and scale from there",
				i, l)
		}
	}
	if math.IsNaN(c.Epsilon) || c.Epsilon < EpsilonMin || c.Epsilon > EpsilonMax {
		return fmt.Errorf(
			"invalid epsilon %.4f: initial threshold must lie in [%.2f, %.2f]\n"+
				"  Risk: the runtime clamp keeps epsilon inside this band, so an outside start is unreachable state\n"+
				"  Action: conservative profiles start near 0.65, aggressive near 0.40",
			c.Epsilon, EpsilonMin, EpsilonMax)
	}
	if math.IsNaN(c.Phi) || c.Phi < 0 || c.Phi >= twoPi {
		return fmt.Errorf(
			"invalid phi %.4f: initial phase must lie in [0, 2π)\n"+
				"  Risk: the phase is wrapped modulo 2π after every cycle; an out-of-range start breaks replay comparisons\n"+
				"  Action: wrap the value into [0, 2π) before construction",
			c.Phi)
	}
	if math.IsNaN(c.Bias) || math.IsInf(c.Bias, 0) {
		return fmt.Errorf(
			"invalid bias %v: must be finite\n"+
				"  Risk: a non-finite bias makes every fetch probability undefined\n"+
				"  Action: presets use biases in [-0.02, 0.05]; any finite value is accepted",
			c.Bias)
	}
	return nil
}

// tuneFile is the on-disk shape of a kernel tune file. Every field is
// optional: a preset name resolves through the package preset registry
// first, then explicit fields override it.
type tuneFile struct {
	Preset  string      `yaml:"preset"`
	Epsilon *float64    `yaml:"epsilon"`
	Phi     *float64    `yaml:"phi"`
	Lambda  *[3]float64 `yaml:"lambda"`
	Bias    *float64    `yaml:"bias"`
}

// LoadKernelConfig reads a YAML tune file and returns the merged, validated
// configuration:
//
//	preset: conservative
//	epsilon: 0.7
//	lambda: [0.02, 0.05, 0.12]
//
// An absent preset means the default profile. Operators can ship tuned
// parameter sets per deployment without recompiling callers.
func LoadKernelConfig(path string) (KernelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return KernelConfig{}, fmt.Errorf("reading tune file: %w", err)
	}
	var tf tuneFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return KernelConfig{}, fmt.Errorf("parsing tune file %s: %w", path, err)
	}

	cfg := DefaultKernelConfig()
	if tf.Preset != "" {
		base, ok := LookupPreset(tf.Preset)
		if !ok {
			return KernelConfig{}, fmt.Errorf(
				"unknown preset %q in %s\n"+
					"  OPTIONS: %v",
				tf.Preset, path, PresetNames())
		}
		cfg = base
	}
	if tf.Epsilon != nil {
		cfg.Epsilon = *tf.Epsilon
	}
	if tf.Phi != nil {
		cfg.Phi = *tf.Phi
	}
	if tf.Lambda != nil {
		cfg.Lambda = *tf.Lambda
	}
	if tf.Bias != nil {
		cfg.Bias = *tf.Bias
	}
	if err := cfg.Validate(); err != nil {
		return KernelConfig{}, fmt.Errorf("tune file %s: %w", path, err)
	}
	return cfg, nil
}
