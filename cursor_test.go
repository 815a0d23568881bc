package swarm

import (
	"errors"
	"slices"
	"testing"
)

func TestCursorDirections(t *testing.T) {
	p := newTable()
	appendAt(p, 0, 1, 2, 3, 4)

	tests := []struct {
		name   string
		cursor *Cursor
		want   []uint64
	}{
		{"forward", Factory.NewCursor(p), []uint64{0, 1, 2, 3, 4}},
		{"reverse", Factory.NewReverseCursor(p), []uint64{4, 3, 2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint64
			if tt.cursor.Distance() != 5 {
				t.Errorf("Expected distance 5, got %d", tt.cursor.Distance())
			}
			for tt.cursor.Next() {
				if !p.Locked() {
					t.Errorf("Table not locked during iteration")
				}
				got = append(got, *ID.FromCursor(tt.cursor))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if p.Locked() {
				t.Errorf("Table still locked after iteration")
			}
		})
	}
}

func TestCursorRemaining(t *testing.T) {
	p := newTable()
	appendAt(p, 0, 1, 2)
	c := Factory.NewCursor(p)
	c.Next()
	if c.Remaining() != 2 {
		t.Errorf("Expected 2 remaining, got %d", c.Remaining())
	}
	c.Reset()
	if p.Locked() {
		t.Errorf("Reset did not unlock the table")
	}
}

func TestRowsEarlyBreakUnlocks(t *testing.T) {
	p := newTable()
	appendAt(p, 0, 1, 2, 3)

	for i, row := range p.Rows() {
		if i != row.Index() {
			t.Errorf("Index %d does not match row %d", i, row.Index())
		}
		p.EnqueueKill(*ID.At(row))
		if i == 1 {
			break
		}
	}
	if p.Locked() {
		t.Fatalf("Table still locked after breaking out of Rows")
	}
	if got := idsOf(p); !slices.Equal(got, []uint64{2, 3}) {
		t.Errorf("Expected ids [2 3], got %v", got)
	}

	var backwards []int
	for i := range p.Backward() {
		backwards = append(backwards, i)
	}
	if !slices.Equal(backwards, []int{1, 0}) {
		t.Errorf("Expected [1 0], got %v", backwards)
	}
}

func TestCursorReportsQueueErrors(t *testing.T) {
	index := &recordingIndex{}
	p := newIndexedTable(index, domain1D(0, 10, false))
	appendAt(p, 1)

	c := Factory.NewCursor(p)
	for c.Next() {
		// Rejections for leaving the domain are not failures
		p.EnqueueAppend(NewRecord(Vector{20}))
		p.EnqueueAppend(NewRecord(Vector{2}))
	}
	if c.Err() != nil {
		t.Errorf("Unexpected error: %v", c.Err())
	}
	if p.Len() != 2 {
		t.Errorf("Expected 2 particles, got %d", p.Len())
	}

	var locked LockedParticlesError
	p.Lock()
	if err := p.EnqueueAppend(NewRecord(Vector{3})); errors.As(err, &locked) {
		t.Errorf("EnqueueAppend refused while locked")
	}
	p.Unlock()
}
