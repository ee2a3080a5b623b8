// Package navworld ties the navigation core's components together into
// one handle, replacing the teacher's global singletons (§9 Design
// notes: g_navPathNodeMgr/g_ndConfig become a single navworld.World a
// caller constructs and owns), and carries the runtime-tunables config
// surface every component's constructor needs (§4.8).
//
// Grounded on the teacher's cmd/recast/cmd/config.go/utils.go YAML
// workflow (gopkg.in/yaml.v2), ported from a one-shot build-settings file
// to a runtime config a World loads once at startup.
package navworld

import (
	"fmt"
	"io"
	"io/ioutil"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/ironspire/navcore/search"
)

// GraphConfig sizes C1's node/link slab.
type GraphConfig struct {
	MaxNodes int `yaml:"maxNodes"`
	MaxLinks int `yaml:"maxLinks"`
}

// ActionPackConfig sizes C2's registry.
type ActionPackConfig struct {
	MaxPacks                int `yaml:"maxPacks"`
	MaxRegistrationsPerTick int `yaml:"maxRegistrationsPerTick"`
	MaxAuxLinksPerSide      int `yaml:"maxAuxLinksPerSide"`
}

// SearchConfig tunes C3's engine.
type SearchConfig struct {
	MaxVisitedFull    int     `yaml:"maxVisitedFull"`
	MaxVisitedTrivial int     `yaml:"maxVisitedTrivial"`
	OpenListStrategy  string  `yaml:"openListStrategy"` // bruteForce | robinHood | agnostic
	AgnosticThreshold int     `yaml:"agnosticThreshold"`
	HeuristicScale    float32 `yaml:"heuristicScale"`
}

// Strategy builds the OpenListStrategy factory this config names (§4.3
// Open list strategies).
func (c SearchConfig) Strategy() func() search.OpenListStrategy {
	switch c.OpenListStrategy {
	case "bruteForce":
		return search.NewBruteForce
	case "robinHood":
		return search.NewRobinHood
	default:
		threshold := c.AgnosticThreshold
		if threshold <= 0 {
			threshold = 256
		}
		return func() search.OpenListStrategy { return search.NewAgnostic(threshold) }
	}
}

// Duration wraps time.Duration with YAML (un)marshaling to and from its
// usual "2ms"-style string form; gopkg.in/yaml.v2 has no built-in
// support for time.Duration (it would otherwise decode as a bare integer
// nanosecond count), so this carries the §4.8 "2ms" config syntax.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("navworld: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// PathBuildConfig tunes C4's builder.
type PathBuildConfig struct {
	MaxWaypoints             int      `yaml:"maxWaypoints"`
	PortalShrink             float32  `yaml:"portalShrink"`
	FinalizeProbeMinDist     float32  `yaml:"finalizeProbeMinDist"`
	FinalizeProbeMaxDist     float32  `yaml:"finalizeProbeMaxDist"`
	FinalizeProbeMaxDuration Duration `yaml:"finalizeProbeMaxDuration"`
}

// RadialConfig holds C5's engine tunables; New does not apply them to
// any engine.
type RadialConfig struct {
	LinkDist               float32 `yaml:"linkDist"`
	LegacyWedgeElimination bool    `yaml:"legacyWedgeElimination"`
}

// RequestsConfig holds C6's manager tunables; New does not pass them to
// the manager, whose slab sizing and priority rates are fixed in
// pathrequest.
type RequestsConfig struct {
	MaxStatic        int     `yaml:"maxStatic"`
	MaxUndirected    int     `yaml:"maxUndirected"`
	MaxDistance      int     `yaml:"maxDistance"`
	HighPriorityHz   float64 `yaml:"highPriorityHz"`
	NormalPriorityHz float64 `yaml:"normalPriorityHz"`
	LowPriorityHz    float64 `yaml:"lowPriorityHz"`
}

// Config is the navigation core's complete runtime-tunables surface
// (§4.8), YAML-serializable via gopkg.in/yaml.v2.
type Config struct {
	Graph       GraphConfig      `yaml:"graph"`
	ActionPacks ActionPackConfig `yaml:"actionpacks"`
	Search      SearchConfig     `yaml:"search"`
	PathBuild   PathBuildConfig  `yaml:"pathbuild"`
	Radial      RadialConfig     `yaml:"radial"`
	Requests    RequestsConfig   `yaml:"requests"`
}

// DefaultConfig is the config a fresh World is built from absent an
// override, matching the YAML block quoted in full in SPEC_FULL.md §4.8.
func DefaultConfig() Config {
	return Config{
		Graph: GraphConfig{MaxNodes: 65536, MaxLinks: 262144},
		ActionPacks: ActionPackConfig{
			MaxPacks: 4096, MaxRegistrationsPerTick: 16, MaxAuxLinksPerSide: 4,
		},
		Search: SearchConfig{
			MaxVisitedFull: 8192, MaxVisitedTrivial: 65536,
			OpenListStrategy: "agnostic", AgnosticThreshold: 256, HeuristicScale: 0.999,
		},
		PathBuild: PathBuildConfig{
			MaxWaypoints: 32, PortalShrink: 0.05,
			FinalizeProbeMinDist: 0.5, FinalizeProbeMaxDist: 8.0,
			FinalizeProbeMaxDuration: Duration(2 * time.Millisecond),
		},
		Radial: RadialConfig{LinkDist: 0.0001, LegacyWedgeElimination: false},
		Requests: RequestsConfig{
			MaxStatic: 512, MaxUndirected: 128, MaxDistance: 128,
			HighPriorityHz: 8, NormalPriorityHz: 4, LowPriorityHz: 1.3,
		},
	}
}

// LoadConfig reads and parses a Config from r, starting from
// DefaultConfig so a partial YAML document only overrides the fields it
// names (mirrors the teacher's unmarshalYAMLFile, generalized from
// "unmarshal into a bare struct" to "unmarshal over seeded defaults").
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("navworld: reading config: %w", err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("navworld: parsing config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes DefaultConfig's YAML encoding to w, ignoring the
// receiver's own values (mirrors cmd/recast/cmd/config.go's "create a
// build settings file, prefilled with default values").
func (Config) WriteDefault(w io.Writer) error {
	buf, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("navworld: encoding config: %w", err)
	}
	_, err = w.Write(buf)
	return err
}
