package fastpath

import (
	"fmt"
	"sort"
	"sync"
)

// PresetRegistry maps profile names to validated kernel configurations, so
// deployments can resolve tuned parameter sets by name (tune files, flags,
// service config). The zero value is not usable; NewPresetRegistry seeds the
// built-in profiles.
type PresetRegistry struct {
	mu      sync.RWMutex
	presets map[string]KernelConfig
}

// NewPresetRegistry returns a registry pre-loaded with the built-in
// profiles: "default", "conservative", "aggressive".
func NewPresetRegistry() *PresetRegistry {
	return &PresetRegistry{presets: map[string]KernelConfig{
		"default":      DefaultKernelConfig(),
		"conservative": ConservativeKernelConfig(),
		"aggressive":   AggressiveKernelConfig(),
	}}
}

// Register adds or replaces a named profile. The configuration is validated
// first, so the registry only ever hands out constructible parameter sets.
func (r *PresetRegistry) Register(name string, cfg KernelConfig) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("preset %q rejected: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[name] = cfg
	return nil
}

// Lookup resolves a profile name.
func (r *PresetRegistry) Lookup(name string) (KernelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.presets[name]
	return cfg, ok
}

// Names lists the registered profiles, sorted.
func (r *PresetRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry backs the package-level preset functions.
var defaultRegistry = NewPresetRegistry()

// RegisterPreset adds a profile to the package-level registry.
func RegisterPreset(name string, cfg KernelConfig) error {
	return defaultRegistry.Register(name, cfg)
}

// LookupPreset resolves a name against the package-level registry.
func LookupPreset(name string) (KernelConfig, bool) {
	return defaultRegistry.Lookup(name)
}

// PresetNames lists the package-level profiles, sorted.
func PresetNames() []string {
	return defaultRegistry.Names()
}
