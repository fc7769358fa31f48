package pipeline

import (
	perrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/huangjunwen/cdcconv/column"
	"github.com/huangjunwen/cdcconv/decimalconv"
	"github.com/huangjunwen/cdcconv/dialect"
)

const (
	// DefaultWorkers is the default value of Config.Workers.
	DefaultWorkers = 4
)

// Config is the per connector configuration. It is fixed for the life of a Pipeline.
type Config struct {
	// Dialect of the destination.
	Dialect dialect.Dialect `json:"dialect" yaml:"dialect"`

	// DecimalHandlingMode selects how decimal and money values are emitted. Default "precise".
	DecimalHandlingMode decimalconv.HandlingMode `json:"decimalHandlingMode" yaml:"decimalHandlingMode"`

	// DefaultSizes overrides the size of columns without a declared size, per logical type,
	// e.g. {"double_vector": 1024}. Only used when the Pipeline builds its own registry.
	DefaultSizes map[column.LogicalType]int `json:"defaultSizes,omitempty" yaml:"defaultSizes,omitempty"`

	// Workers bounds the concurrency of ConvertRows. Use DefaultWorkers if not set.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// LoadConfig decodes a YAML (or JSON) document and validates it.
func LoadConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, perrors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg.
func (cfg *Config) Validate() error {
	if !cfg.Dialect.Valid() {
		return perrors.Wrapf(ErrInvalidConfig, "dialect %s", cfg.Dialect)
	}
	if !cfg.DecimalHandlingMode.Valid() {
		return perrors.Wrapf(ErrInvalidConfig, "decimalHandlingMode %s", cfg.DecimalHandlingMode)
	}
	for lt, n := range cfg.DefaultSizes {
		if !lt.Valid() || n < 1 {
			return perrors.Wrapf(ErrInvalidConfig, "defaultSizes[%s] = %d", lt, n)
		}
	}
	if cfg.Workers < 0 {
		return perrors.Wrapf(ErrInvalidConfig, "workers %d < 0", cfg.Workers)
	}
	return nil
}

func (cfg *Config) workers() int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return DefaultWorkers
}
