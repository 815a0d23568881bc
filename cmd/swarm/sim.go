package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/TheBitDrifter/swarm"
	"github.com/TheBitDrifter/swarm/snapshot"
	"github.com/TheBitDrifter/swarm/spatial"
)

// Travelled is the unwrapped distance vector a particle has walked.
type Travelled swarm.Vector

var travelled = swarm.FactoryNewAttribute[Travelled]("travelled")

// samples bounds the particles sampled for the neighbour statistic.
const samples = 100

type neighbourIndex interface {
	swarm.SpatialIndex
	Neighbours(centre swarm.Vector, radius float64) ([]spatial.Neighbour, error)
}

// Stats summarizes a finished run.
type Stats struct {
	Steps          int
	Particles      int
	Dropped        int
	MeanNeighbours float64
}

func (s Stats) String() string {
	return fmt.Sprintf("steps=%d particles=%d dropped=%d mean_neighbours=%.3f",
		s.Steps, s.Particles, s.Dropped, s.MeanNeighbours)
}

func newIndex(kind string) neighbourIndex {
	if kind == "bruteforce" {
		return spatial.NewBruteForce()
	}
	return spatial.NewCellList()
}

func simulate(ctx context.Context, cfg SimConfig, logger zerolog.Logger) (Stats, error) {
	index := newIndex(cfg.Index)
	opts := []swarm.Option{
		swarm.WithSeed(cfg.Seed),
		swarm.WithIndex(index),
		swarm.WithLogger(logger),
		swarm.WithCapacity(cfg.Particles),
	}
	if cfg.Grain > 0 {
		opts = append(opts, swarm.WithGrain(cfg.Grain))
	}
	particles := swarm.Factory.NewParticles(swarm.Factory.NewSchema(travelled), opts...)

	var high swarm.Vector
	var periodic swarm.Periodicity
	for d := 0; d < cfg.Dimension && d < swarm.MaxDimensions; d++ {
		high[d] = cfg.Size
		periodic[d] = cfg.Periodic
	}
	domain, err := swarm.NewDomain(cfg.Dimension, swarm.Vector{}, high, periodic)
	if err != nil {
		return Stats{}, err
	}
	if err := particles.InitNeighbourSearch(domain, cfg.LeafCapacity); err != nil {
		return Stats{}, eris.Wrap(err, "failed to initialise neighbour search")
	}

	if err := scatter(particles, domain, cfg.Particles); err != nil {
		return Stats{}, err
	}
	logger.Info().
		Int("particles", particles.Len()).
		Str("index", cfg.Index).
		Uint64("seed", cfg.Seed).
		Msg("particles scattered")

	stats := Stats{}
	for step := 0; step < cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("step", step).Msg("run interrupted")
			break
		}
		if err := walk(particles, domain.Dimension, cfg.StepLength); err != nil {
			return stats, eris.Wrapf(err, "step %d", step)
		}
		stats.Steps++
		logger.Debug().Int("step", step).Int("particles", particles.Len()).Msg("step done")
	}

	stats.Particles = particles.Len()
	stats.Dropped = cfg.Particles - stats.Particles
	stats.MeanNeighbours, err = meanNeighbours(particles, index, cfg.Radius)
	if err != nil {
		return stats, err
	}

	if cfg.Snapshot != "" {
		if err := writeSnapshot(cfg.Snapshot, particles); err != nil {
			return stats, err
		}
	}
	logger.Info().
		Int("steps", stats.Steps).
		Int("particles", stats.Particles).
		Int("dropped", stats.Dropped).
		Float64("mean_neighbours", stats.MeanNeighbours).
		Msg("run finished")
	return stats, nil
}

// scatter appends n particles at the low corner and moves each to a uniform
// random spot drawn from its own generator.
func scatter(particles *swarm.Particles, domain swarm.Domain, n int) error {
	recs := make([]swarm.Record, n)
	for i := range recs {
		recs[i] = swarm.NewRecord(domain.Low)
	}
	if _, err := particles.AppendAll(recs); err != nil {
		return eris.Wrap(err, "failed to create particles")
	}

	width := domain.Width()
	err := particles.ForEach(func(row swarm.Row) {
		rng := rand.New(swarm.Generator.At(row))
		pos := swarm.Position.At(row)
		for d := 0; d < domain.Dimension; d++ {
			pos[d] = domain.Low[d] + rng.Float64()*width[d]
		}
	})
	if err != nil {
		return err
	}
	return particles.UpdatePositions()
}

func walk(particles *swarm.Particles, dim int, length float64) error {
	err := particles.ForEach(func(row swarm.Row) {
		rng := rand.New(swarm.Generator.At(row))
		pos := swarm.Position.At(row)
		moved := travelled.At(row)
		for d := 0; d < dim; d++ {
			dx := (2*rng.Float64() - 1) * length
			pos[d] += dx
			moved[d] += dx
		}
	})
	if err != nil {
		return err
	}
	return particles.UpdatePositions()
}

// meanNeighbours averages the neighbour count, self excluded, over up to
// samples evenly spaced particles.
func meanNeighbours(particles *swarm.Particles, index neighbourIndex, radius float64) (float64, error) {
	n := particles.Len()
	if n == 0 {
		return 0, nil
	}
	stride := max(1, n/samples)
	total, sampled := 0, 0
	for i := 0; i < n; i += stride {
		hits, err := index.Neighbours(*swarm.Position.Get(particles, i), radius)
		if err != nil {
			return 0, eris.Wrap(err, "neighbour query failed")
		}
		total += len(hits) - 1
		sampled++
	}
	return float64(total) / float64(sampled), nil
}

func writeSnapshot(path string, particles *swarm.Particles) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "couldn't create snapshot %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := snapshot.Write(w, particles); err != nil {
		return err
	}
	return w.Flush()
}
