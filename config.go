package offload

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

type (
	// configFile is the top-level JSON structure.
	configFile struct {
		Limiters map[string]LimiterConfig `json:"limiters"`
	}

	// LimiterConfig holds the decoded configuration for a single named
	// limiter. Export it to embed in your own app config structs for
	// JSON or YAML unmarshaling, then call [BuildRegistry] to obtain a
	// populated [Registry].
	LimiterConfig struct {
		// Capacity is the maximum number of concurrently admitted
		// callers. Required. Example: 10.
		Capacity int `json:"capacity" yaml:"capacity"`
	}
)

// LoadConfig reads a JSON configuration file of the form
//
//	{"limiters": {"db": {"capacity": 10}, "docker": {"capacity": 4}}}
//
// and returns a fresh [Registry] with one limiter registered per entry.
// All entries are validated eagerly so errors surface at load time.
func LoadConfig(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("offload: read config: %w", err)
	}

	var cfg configFile
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("offload: parse config: %w", err)
	}

	return BuildRegistry(cfg.Limiters)
}

// BuildRegistry validates the given limiter configurations and returns
// a [Registry] with one limiter registered per entry. Use this when the
// configuration is embedded in a larger application config instead of
// living in its own file.
func BuildRegistry(limiters map[string]LimiterConfig) (*Registry, error) {
	for name, lc := range limiters {
		if lc.Capacity < 1 {
			return nil, fmt.Errorf("offload: limiter %q: %w", name, ErrInvalidCapacity)
		}
	}

	reg := NewRegistry()
	for name, lc := range limiters {
		reg.Register(name, NewCapacityLimiter(lc.Capacity, nil))
	}

	return reg, nil
}
