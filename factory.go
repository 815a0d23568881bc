package swarm

type factory struct{}

var Factory factory

// NewSchema builds a schema holding the built-in attributes followed by
// the given user attributes.
func (f factory) NewSchema(attributes ...AttributeType) *Schema {
	return newSchema(attributes...)
}

func (f factory) NewParticles(schema *Schema, opts ...Option) *Particles {
	return newParticles(schema, opts...)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(p *Particles) *Cursor {
	return newCursor(p, false)
}

func (f factory) NewReverseCursor(p *Particles) *Cursor {
	return newCursor(p, true)
}
