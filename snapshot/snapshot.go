// Package snapshot streams a particle table as JSON lines, one object per
// particle keyed by attribute name. Generators are not written: loading
// re-derives them from the table seed like any other append.
package snapshot

import (
	"bufio"
	"errors"
	"io"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/TheBitDrifter/swarm"
)

// skipped on write; Append assigns them afresh on load.
var generated = map[string]bool{
	swarm.Generator.Name(): true,
}

// assigned by Append and ignored on load.
var assigned = map[string]bool{
	swarm.ID.Name():        true,
	swarm.Alive.Name():     true,
	swarm.Generator.Name(): true,
}

// Write encodes every live particle of p, front to back. Tombstoned
// particles are left out.
func Write(w io.Writer, p *swarm.Particles) error {
	enc := json.NewEncoder(w)
	var attrs []swarm.AttributeType
	for attr := range p.Schema().Attributes() {
		if !generated[attr.Name()] {
			attrs = append(attrs, attr)
		}
	}
	obj := make(map[string]any, len(attrs))
	for i := 0; i < p.Len(); i++ {
		row := p.Row(i)
		if !*swarm.Alive.At(row) {
			continue
		}
		for _, attr := range attrs {
			obj[attr.Name()] = row.Value(attr)
		}
		if err := enc.Encode(obj); err != nil {
			return eris.Wrapf(err, "failed to encode particle %d", i)
		}
	}
	return nil
}

// Load appends one particle per line of r to p and returns how many were
// accepted. Lines marked dead are skipped. Lines outside the table's
// domain are skipped and reported in the joined error; any other failure
// stops the load.
func Load(r io.Reader, p *swarm.Particles) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	schema := p.Schema()

	var rejected []error
	loaded := 0
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &fields); err != nil {
			return loaded, eris.Wrapf(err, "line %d", line)
		}
		if dead(fields) {
			continue
		}
		var rec swarm.Record
		for name, raw := range fields {
			if assigned[name] {
				continue
			}
			attr, ok := schema.AttributeByName(name)
			if !ok {
				return loaded, eris.Errorf("line %d: unknown attribute %q", line, name)
			}
			ptr := attr.New()
			if err := json.Unmarshal(raw, ptr); err != nil {
				return loaded, eris.Wrapf(err, "line %d: attribute %q", line, name)
			}
			rec.SetAny(attr, reflect.ValueOf(ptr).Elem().Interface())
		}
		if _, err := p.Append(rec); err != nil {
			var outside swarm.OutOfDomainError
			if errors.As(err, &outside) {
				rejected = append(rejected, err)
				continue
			}
			return loaded, eris.Wrapf(err, "line %d", line)
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, eris.Wrap(err, "failed to read snapshot")
	}
	return loaded, errors.Join(rejected...)
}

func dead(fields map[string]json.RawMessage) bool {
	raw, ok := fields[swarm.Alive.Name()]
	if !ok {
		return false
	}
	var alive bool
	return json.Unmarshal(raw, &alive) == nil && !alive
}
