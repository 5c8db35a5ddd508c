// Package boundary scans a labeled volume along one axis for the first
// position where a label predicate holds.
package boundary

import (
	"errors"
	"fmt"

	"breastcrop/internal/models"
)

// ErrNotFound is returned when a scan passes its limit without a match
var ErrNotFound = errors.New("boundary not found")

// Predicate tests a single voxel label
type Predicate func(label uint8) bool

// Scan describes a walk along one axis. The walk starts at From and moves by
// Step (+1 or -1) until it reaches Stop, which is never visited.
type Scan struct {
	Axis models.Axis
	From int
	Stop int
	Step int
}

// Down scans from `from` toward lower indices, visiting `from`..`last`
func Down(axis models.Axis, from, last int) Scan {
	return Scan{Axis: axis, From: from, Stop: last - 1, Step: -1}
}

// Up scans from `from` toward higher indices, visiting `from`..`last`
func Up(axis models.Axis, from, last int) Scan {
	return Scan{Axis: axis, From: from, Stop: last + 1, Step: 1}
}

func (s Scan) String() string {
	return fmt.Sprintf("%s from %d step %+d stop %d", s.Axis, s.From, s.Step, s.Stop)
}

// Locator runs scans over one volume
type Locator struct {
	vol *models.Volume
}

// NewLocator creates a Locator for vol
func NewLocator(vol *models.Volume) *Locator {
	return &Locator{vol: vol}
}

// Probe walks the scan along a single ray. The two axes other than s.Axis
// are held at the given point's coordinates; only one voxel is tested per
// step. It returns the first index along s.Axis where match holds.
func (l *Locator) Probe(s Scan, point [3]int, match Predicate) (int, error) {
	if err := l.checkScan(s); err != nil {
		return 0, err
	}
	p := point
	for i := s.From; i != s.Stop; i += s.Step {
		p[s.Axis] = i
		if !l.vol.InBounds(p[0], p[1], p[2]) {
			return 0, fmt.Errorf("probe %v outside volume %v", p, l.vol.Dim)
		}
		if match(l.vol.AtPoint(p)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: probe %s at %v", ErrNotFound, s, point)
}

// Sweep walks the scan testing the whole cross-section at each step. The
// cross-section covers bounds on the two axes other than s.Axis; bounds on
// s.Axis itself is ignored. It returns the first index along s.Axis where any
// voxel of the cross-section matches.
func (l *Locator) Sweep(s Scan, bounds models.Extent, match Predicate) (int, error) {
	if err := l.checkScan(s); err != nil {
		return 0, err
	}
	u, v := otherAxes(s.Axis)
	full := l.vol.Extent()
	if bounds.Min(u) < 0 || bounds.Max(u) > full.Max(u) ||
		bounds.Min(v) < 0 || bounds.Max(v) > full.Max(v) {
		return 0, fmt.Errorf("sweep bounds %v outside volume %v", bounds, full)
	}

	var p [3]int
	for i := s.From; i != s.Stop; i += s.Step {
		if i < 0 || i > full.Max(s.Axis) {
			return 0, fmt.Errorf("sweep index %d outside %s range [0,%d]", i, s.Axis, full.Max(s.Axis))
		}
		p[s.Axis] = i
		for b := bounds.Min(v); b <= bounds.Max(v); b++ {
			p[v] = b
			for a := bounds.Min(u); a <= bounds.Max(u); a++ {
				p[u] = a
				if match(l.vol.AtPoint(p)) {
					return i, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("%w: sweep %s over %v", ErrNotFound, s, bounds)
}

func (l *Locator) checkScan(s Scan) error {
	if s.Step != 1 && s.Step != -1 {
		return fmt.Errorf("scan step must be +1 or -1, got %d", s.Step)
	}
	if s.Axis < models.X || s.Axis > models.Z {
		return fmt.Errorf("invalid scan axis %d", int(s.Axis))
	}
	// a walk that can never reach Stop would run off the volume
	if (s.Stop-s.From)*s.Step < 0 {
		return fmt.Errorf("scan %s never reaches its stop", s)
	}
	return nil
}

// otherAxes returns the two axes perpendicular to a, lower one first
func otherAxes(a models.Axis) (models.Axis, models.Axis) {
	switch a {
	case models.X:
		return models.Y, models.Z
	case models.Y:
		return models.X, models.Z
	}
	return models.X, models.Y
}
