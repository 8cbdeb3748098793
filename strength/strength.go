// Package strength maps the user-facing blur strength level onto the
// parameters of the dual-Kawase blur.
//
// Blur amount grows with both the number of downsample iterations and the
// per-pass sample offset. Every iteration depth has a usable offset window:
// below the minimum the downsampling shows blocky artifacts, above the
// maximum the diagonal sampling pattern becomes visible. The table spreads a
// fixed number of steps across those windows proportionally to their width.
package strength

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSteps is the number of strength levels exposed to users.
const DefaultSteps = 15

// ErrInvalidEntry is returned when a ladder entry or step count cannot
// produce a table.
var ErrInvalidEntry = errors.New("strength: invalid ladder entry")

// Entry describes one iteration depth of the ladder.
type Entry struct {
	// MinOffset is the smallest artifact-free sample offset at this depth.
	MinOffset float32

	// MaxOffset is the largest artifact-free sample offset at this depth.
	MaxOffset float32

	// ExpandSize is how far, in logical pixels, the kernel reads beyond the
	// area being blurred at this depth.
	ExpandSize int
}

// DefaultEntries is the reference ladder: depths 1 through 4, each halving the
// working resolution once more.
var DefaultEntries = []Entry{
	{MinOffset: 1, MaxOffset: 2, ExpandSize: 10},
	{MinOffset: 2, MaxOffset: 3, ExpandSize: 20},
	{MinOffset: 2, MaxOffset: 5, ExpandSize: 50},
	{MinOffset: 3, MaxOffset: 8, ExpandSize: 150},
}

// Step is one quantized strength level.
type Step struct {
	Iterations int
	Offset     float32
}

// Params are the blur parameters selected for a strength level.
type Params struct {
	Iterations int
	Offset     float32
	ExpandSize int
}

// Table is an immutable strength lookup table.
type Table struct {
	entries []Entry
	steps   []Step
}

// New builds a table distributing steps levels across entries.
func New(entries []Entry, steps int) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidEntry)
	}
	if steps <= 0 {
		return nil, fmt.Errorf("%w: step count %d", ErrInvalidEntry, steps)
	}

	var offsetSum float32
	for i, e := range entries {
		if !(e.MinOffset < e.MaxOffset) {
			return nil, fmt.Errorf("%w: entry %d has min offset %g >= max offset %g",
				ErrInvalidEntry, i, e.MinOffset, e.MaxOffset)
		}
		offsetSum += e.MaxOffset - e.MinOffset
	}

	t := &Table{
		entries: append([]Entry(nil), entries...),
		steps:   make([]Step, 0, steps),
	}

	remaining := steps
	for i, e := range entries {
		diff := e.MaxOffset - e.MinOffset
		k := int(math.Ceil(float64(diff / offsetSum * float32(steps))))
		remaining -= k
		// The entry that overflows the budget gives back the excess.
		if remaining < 0 {
			k += remaining
		}
		for j := 1; j <= k; j++ {
			t.steps = append(t.steps, Step{
				Iterations: i + 1,
				Offset:     e.MinOffset + diff/float32(k)*float32(j),
			})
		}
	}
	return t, nil
}

// Default returns the table built from DefaultEntries with DefaultSteps levels.
func Default() *Table {
	t, err := New(DefaultEntries, DefaultSteps)
	if err != nil {
		panic(err) // DefaultEntries are valid
	}
	return t
}

// Len returns the number of strength levels.
func (t *Table) Len() int { return len(t.steps) }

// Steps returns a copy of the table rows in level order.
func (t *Table) Steps() []Step {
	return append([]Step(nil), t.steps...)
}

// Entries returns a copy of the ladder the table was built from.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Clamp restricts a 1-based level to the range of the table.
func (t *Table) Clamp(level int) int {
	return min(max(level, 1), len(t.steps))
}

// Lookup returns the parameters for a 1-based strength level. Levels outside
// the table are clamped first.
func (t *Table) Lookup(level int) Params {
	s := t.steps[t.Clamp(level)-1]
	return Params{
		Iterations: s.Iterations,
		Offset:     s.Offset,
		ExpandSize: t.entries[s.Iterations-1].ExpandSize,
	}
}
