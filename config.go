package swarm

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TheBitDrifter/swarm/internal/parallel"
)

// Config holds process-wide defaults picked up by new tables.
var Config config = config{
	grain:        parallel.DefaultGrain,
	leafCapacity: 10,
}

type config struct {
	grain        int
	leafCapacity int
	logger       *zerolog.Logger
}

// SetGrain sets the smallest row chunk handed to a parallel worker.
func (c *config) SetGrain(n int) {
	c.grain = n
}

// SetLeafCapacity sets the default particles-per-leaf passed to indices.
func (c *config) SetLeafCapacity(n int) {
	c.leafCapacity = n
}

// SetLogger replaces the default diagnostics logger of new tables.
func (c *config) SetLogger(l zerolog.Logger) {
	c.logger = &l
}

// defaultLogger is the logger set through SetLogger, or the global logger
// held at info level. Debug output needs an explicit logger.
func (c *config) defaultLogger() zerolog.Logger {
	if c.logger != nil {
		return *c.logger
	}
	return log.Logger.Level(zerolog.InfoLevel)
}

// Option configures a table at construction.
type Option func(*Particles)

// WithSeed sets the base seed every particle's generator derives from.
func WithSeed(seed uint64) Option {
	return func(p *Particles) {
		p.seed = seed
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Particles) {
		p.logger = l
	}
}

// WithIndex attaches the spatial index kept in sync with the table. The
// table stays unindexed until InitNeighbourSearch sets its domain.
func WithIndex(index SpatialIndex) Option {
	return func(p *Particles) {
		p.index = index
	}
}

// WithCapacity preallocates room for n particles.
func WithCapacity(n int) Option {
	return func(p *Particles) {
		p.capacity = n
	}
}

func WithGrain(n int) Option {
	return func(p *Particles) {
		p.grain = n
	}
}
