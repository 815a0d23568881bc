/*
Package swarm provides a columnar particle table for simulations.

Every particle carries a fixed schema of typed attributes: a position, a
unique id, an alive flag, its own random generator and any number of user
attributes. Each attribute lives in its own column so per-particle loops run
over flat slices. A table keeps an optional spatial index in sync as
particles are appended, erased, tombstoned, compacted and reordered.

Core Concepts:

  - Attribute: A typed tag selecting one column.
  - Schema: The fixed attribute set of a table and its column slots.
  - Particles: The table. It owns the columns and drives the index.
  - SpatialIndex: Neighbour search structure holding only Views into the table.
  - Domain: The cuboid particles live in, periodic or bounded per dimension.

Basic Usage:

	// Declare user attributes once
	type Velocity swarm.Vector
	velocity := swarm.FactoryNewAttribute[Velocity]("velocity")

	// Build a table
	schema := swarm.Factory.NewSchema(velocity)
	particles := swarm.Factory.NewParticles(schema, swarm.WithSeed(42), swarm.WithIndex(spatial.NewCellList()))

	// Set the domain
	domain, _ := swarm.NewDomain(2, swarm.Vector{0, 0}, swarm.Vector{1, 1}, swarm.Periodicity{true, true})
	particles.InitNeighbourSearch(domain, 10)

	// Create particles
	rec := swarm.NewRecord(swarm.Vector{0.5, 0.5})
	velocity.Set(&rec, Velocity{0.1, 0})
	particles.Append(rec)

	// Move them and resynchronize
	particles.ForEach(func(row swarm.Row) {
		pos := swarm.Position.At(row)
		vel := velocity.At(row)
		pos[0] += vel[0]
		pos[1] += vel[1]
	})
	particles.UpdatePositions()

Structural operations (Append, Erase, Compact, Reorder, UpdatePositions)
may move every row. They are refused while the table is locked by a
ForEach or a Cursor; use Kill, EnqueueAppend and EnqueueKill from inside
those instead.
*/
package swarm
