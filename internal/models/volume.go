package models

import (
	"fmt"
	"math"
)

// Axis identifies one of the three grid axes
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// String returns the lowercase axis name
func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Volume is a labeled voxel grid with a single unsigned 8-bit channel
type Volume struct {
	// Dim is the number of voxels along each axis
	Dim [3]int

	// Spacing is the physical size of a voxel along each axis in mm
	Spacing [3]float64

	// Origin is the physical coordinate of voxel (0,0,0)
	Origin [3]float64

	// Data holds Dim[0]*Dim[1]*Dim[2] labels, x varying fastest, then y, then z
	Data []uint8
}

// NewVolume allocates a zero-filled (background) volume
func NewVolume(dim [3]int, spacing, origin [3]float64) (*Volume, error) {
	for i := 0; i < 3; i++ {
		if dim[i] <= 0 {
			return nil, fmt.Errorf("dimension %s must be positive, got %d", Axis(i), dim[i])
		}
		if spacing[i] <= 0 {
			return nil, fmt.Errorf("spacing %s must be positive, got %g", Axis(i), spacing[i])
		}
	}
	if math.MaxInt/dim[0]/dim[1] < dim[2] {
		return nil, fmt.Errorf("dimensions %d %d %d overflow the voxel count", dim[0], dim[1], dim[2])
	}
	return &Volume{
		Dim:     dim,
		Spacing: spacing,
		Origin:  origin,
		Data:    make([]uint8, dim[0]*dim[1]*dim[2]),
	}, nil
}

// Len returns the number of voxels in the volume
func (v *Volume) Len() int {
	return v.Dim[0] * v.Dim[1] * v.Dim[2]
}

// Index returns the flat buffer offset of voxel (x,y,z)
func (v *Volume) Index(x, y, z int) int {
	return x + y*v.Dim[0] + z*v.Dim[0]*v.Dim[1]
}

// InBounds reports whether (x,y,z) addresses a voxel of the volume
func (v *Volume) InBounds(x, y, z int) bool {
	return x >= 0 && x < v.Dim[0] &&
		y >= 0 && y < v.Dim[1] &&
		z >= 0 && z < v.Dim[2]
}

// At returns the label at (x,y,z). The caller must stay in bounds.
func (v *Volume) At(x, y, z int) uint8 {
	return v.Data[v.Index(x, y, z)]
}

// AtPoint is At for a point given as an array
func (v *Volume) AtPoint(p [3]int) uint8 {
	return v.Data[v.Index(p[0], p[1], p[2])]
}

// Set stores a label at (x,y,z)
func (v *Volume) Set(x, y, z int, label uint8) {
	v.Data[v.Index(x, y, z)] = label
}

// Extent returns the full index range of the volume
func (v *Volume) Extent() Extent {
	return Extent{0, v.Dim[0] - 1, 0, v.Dim[1] - 1, 0, v.Dim[2] - 1}
}

// Extent is an inclusive voxel index range laid out as
// [xmin, xmax, ymin, ymax, zmin, zmax]
type Extent [6]int

// Min returns the low bound along an axis
func (e Extent) Min(a Axis) int { return e[2*int(a)] }

// Max returns the high bound along an axis
func (e Extent) Max(a Axis) int { return e[2*int(a)+1] }

// SetMin sets the low bound along an axis
func (e *Extent) SetMin(a Axis, v int) { e[2*int(a)] = v }

// SetMax sets the high bound along an axis
func (e *Extent) SetMax(a Axis, v int) { e[2*int(a)+1] = v }

// Size returns the voxel count along an axis
func (e Extent) Size(a Axis) int { return e.Max(a) - e.Min(a) + 1 }

// Dims returns the voxel counts along all three axes
func (e Extent) Dims() [3]int {
	return [3]int{e.Size(X), e.Size(Y), e.Size(Z)}
}

// Valid reports whether min <= max on every axis
func (e Extent) Valid() bool {
	for a := X; a <= Z; a++ {
		if e.Min(a) > e.Max(a) {
			return false
		}
	}
	return true
}

// Within reports whether e lies inside outer on every axis
func (e Extent) Within(outer Extent) bool {
	for a := X; a <= Z; a++ {
		if e.Min(a) < outer.Min(a) || e.Max(a) > outer.Max(a) {
			return false
		}
	}
	return true
}

func (e Extent) String() string {
	return fmt.Sprintf("[%d,%d]x[%d,%d]x[%d,%d]", e[0], e[1], e[2], e[3], e[4], e[5])
}

// TargetDimensions are requested voxel counts for the cropped volume
type TargetDimensions [3]int

// Enabled reports whether all three counts are positive
func (t TargetDimensions) Enabled() bool {
	return t[0] > 0 && t[1] > 0 && t[2] > 0
}
