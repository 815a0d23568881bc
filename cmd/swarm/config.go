package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SWARM"

// SimConfig holds every setting of a simulation run.
type SimConfig struct {
	Particles    int     `mapstructure:"particles"`
	Steps        int     `mapstructure:"steps"`
	Dimension    int     `mapstructure:"dimension"`
	Size         float64 `mapstructure:"size"`
	Periodic     bool    `mapstructure:"periodic"`
	StepLength   float64 `mapstructure:"step_length"`
	Radius       float64 `mapstructure:"radius"`
	Index        string  `mapstructure:"index"`
	LeafCapacity int     `mapstructure:"leaf_capacity"`
	Seed         uint64  `mapstructure:"seed"`
	Grain        int     `mapstructure:"grain"`
	Snapshot     string  `mapstructure:"snapshot"`
	Profile      string  `mapstructure:"profile"`
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		Particles:    10000,
		Steps:        100,
		Dimension:    2,
		Size:         1,
		Periodic:     true,
		StepLength:   0.01,
		Radius:       0.02,
		Index:        "celllist",
		LeafCapacity: 10,
		Seed:         1,
	}
}

func addSimFlags(flags *pflag.FlagSet) {
	d := DefaultSimConfig()
	flags.Int("particles", d.Particles, "Number of particles")
	flags.Int("steps", d.Steps, "Number of random walk steps")
	flags.Int("dimension", d.Dimension, "Spatial dimension (1-3)")
	flags.Float64("size", d.Size, "Edge length of the cubic domain")
	flags.Bool("periodic", d.Periodic, "Wrap particles around the domain instead of dropping them")
	flags.Float64("step-length", d.StepLength, "Largest displacement per dimension and step")
	flags.Float64("radius", d.Radius, "Neighbour search radius")
	flags.String("index", d.Index, "Spatial index (celllist, bruteforce)")
	flags.Int("leaf-capacity", d.LeafCapacity, "Particles per index leaf")
	flags.Uint64("seed", d.Seed, "Base seed of the per-particle generators")
	flags.Int("grain", d.Grain, "Rows per parallel chunk, 0 for the library default")
	flags.String("snapshot", d.Snapshot, "Write the final particles as JSON lines to this file")
	flags.String("profile", d.Profile, "Profile the run (cpu, mem)")
}

// loadConfig merges flags, SWARM_* environment variables and the optional
// config file. Flag names map to keys with dashes turned into underscores.
func loadConfig(flags *pflag.FlagSet, path string) (SimConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	if bindErr != nil {
		return SimConfig{}, eris.Wrap(bindErr, "couldn't bind flags")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SimConfig{}, eris.Wrapf(err, "couldn't load config %s", path)
		}
	}

	cfg := DefaultSimConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return SimConfig{}, eris.Wrap(err, "couldn't read config")
	}
	if err := cfg.Validate(); err != nil {
		return SimConfig{}, err
	}
	return cfg, nil
}

func (c SimConfig) Validate() error {
	switch {
	case c.Particles < 0:
		return eris.Errorf("particles must not be negative, got %d", c.Particles)
	case c.Steps < 0:
		return eris.Errorf("steps must not be negative, got %d", c.Steps)
	case c.Size <= 0:
		return eris.Errorf("size must be positive, got %g", c.Size)
	case c.Radius < 0:
		return eris.Errorf("radius must not be negative, got %g", c.Radius)
	case c.Index != "celllist" && c.Index != "bruteforce":
		return eris.Errorf("unknown index %q", c.Index)
	case c.Profile != "" && c.Profile != "cpu" && c.Profile != "mem":
		return eris.Errorf("unknown profile mode %q", c.Profile)
	}
	return nil
}
