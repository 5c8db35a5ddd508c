// Package crop finds the extent of a compressed breast phantom that holds
// tissue plus an air gap, and cuts that extent out of the volume.
package crop

import (
	"errors"
	"fmt"
	"math"

	"breastcrop/internal/models"
	"breastcrop/pkg/boundary"
	"breastcrop/pkg/logging"
	"breastcrop/pkg/tissue"
)

var (
	// ErrGeometry is the parent of every planning failure
	ErrGeometry = errors.New("geometry error")

	// ErrPaddleNotFound means a compression paddle was missing on the z axis
	ErrPaddleNotFound = fmt.Errorf("%w: paddle not found", ErrGeometry)

	// ErrInvalidExtent means the planned bounds crossed or left the volume
	ErrInvalidExtent = fmt.Errorf("%w: invalid crop extent", ErrGeometry)
)

// Planner computes crop extents
type Planner struct {
	// Labels decides which voxels are paddle and which are tissue
	Labels tissue.Labels

	// AirGap is the padding in mm added beyond the tissue on +x, -y and +y
	AirGap float64

	// Target, when enabled, fixes the voxel counts of the result
	Target models.TargetDimensions
}

// NewPlanner creates a Planner
func NewPlanner(labels tissue.Labels, airGap float64, target models.TargetDimensions) *Planner {
	return &Planner{
		Labels: labels,
		AirGap: airGap,
		Target: target,
	}
}

// gapVoxels converts the air gap to a voxel count along one axis
func (p *Planner) gapVoxels(spacing float64) int {
	return int(math.Ceil(p.AirGap / spacing))
}

// Plan runs the boundary searches in order and returns the crop extent.
// The order matters: each search is bounded by the results before it.
//
//  1. top paddle, probing the centre ray down from zmax
//  2. bottom paddle, probing up from zmin to the top paddle
//  3. +x tissue edge between the paddles, padded by the air gap
//  4. -x paddle edge between the paddles
//  5. -y and +y tissue edges inside the x and z bounds, padded by the air gap
//  6. optional snap to the target dimensions
func (p *Planner) Plan(vol *models.Volume) (models.Extent, error) {
	if p.AirGap < 0 {
		return models.Extent{}, fmt.Errorf("%w: negative air gap %g", ErrGeometry, p.AirGap)
	}

	loc := boundary.NewLocator(vol)
	orig := vol.Extent()
	ext := orig

	// centre ray of the x-y plane
	centre := [3]int{
		orig.Min(models.X) + (orig.Max(models.X)-orig.Min(models.X))/2,
		orig.Min(models.Y) + (orig.Max(models.Y)-orig.Min(models.Y))/2,
		0,
	}

	top, err := loc.Probe(boundary.Down(models.Z, orig.Max(models.Z), orig.Min(models.Z)+1), centre, p.Labels.IsPaddle)
	if err != nil {
		return ext, fmt.Errorf("top %w: %w", ErrPaddleNotFound, err)
	}
	ext.SetMax(models.Z, top)
	logging.Debugf("top paddle at z=%d\n", top)

	bottom, err := loc.Probe(boundary.Up(models.Z, orig.Min(models.Z), top-1), centre, p.Labels.IsPaddle)
	if err != nil {
		return ext, fmt.Errorf("bottom %w: %w", ErrPaddleNotFound, err)
	}
	ext.SetMin(models.Z, bottom)
	logging.Debugf("bottom paddle at z=%d\n", bottom)

	// x searches cover the full y range between the paddles
	xBounds := orig
	xBounds.SetMin(models.Z, bottom)
	xBounds.SetMax(models.Z, top)

	xPos, err := loc.Sweep(boundary.Down(models.X, orig.Max(models.X), orig.Min(models.X)), xBounds, p.Labels.IsTissue)
	if err != nil {
		return ext, fmt.Errorf("%w: +x tissue edge: %w", ErrGeometry, err)
	}
	ext.SetMax(models.X, min(xPos+p.gapVoxels(vol.Spacing[models.X]), orig.Max(models.X)))
	logging.Debugf("+x tissue edge at x=%d, crop xmax=%d\n", xPos, ext.Max(models.X))

	xMin, err := loc.Sweep(boundary.Up(models.X, orig.Min(models.X), orig.Max(models.X)), xBounds, p.Labels.IsPaddle)
	if err != nil {
		return ext, fmt.Errorf("%w: -x paddle edge: %w", ErrGeometry, err)
	}
	ext.SetMin(models.X, xMin)
	logging.Debugf("-x paddle edge at x=%d\n", xMin)

	if ext.Min(models.X) > ext.Max(models.X) {
		return ext, fmt.Errorf("%w: paddle edge x=%d lies beyond tissue bound x=%d",
			ErrInvalidExtent, ext.Min(models.X), ext.Max(models.X))
	}

	// y searches are limited to the x and z bounds found so far
	yGap := p.gapVoxels(vol.Spacing[models.Y])

	yLow, err := loc.Sweep(boundary.Up(models.Y, orig.Min(models.Y), orig.Max(models.Y)), ext, p.Labels.IsTissue)
	if err != nil {
		return ext, fmt.Errorf("%w: -y tissue edge: %w", ErrGeometry, err)
	}
	ext.SetMin(models.Y, max(yLow-yGap, orig.Min(models.Y)))
	logging.Debugf("-y tissue edge at y=%d, crop ymin=%d\n", yLow, ext.Min(models.Y))

	yHigh, err := loc.Sweep(boundary.Down(models.Y, orig.Max(models.Y), orig.Min(models.Y)), ext, p.Labels.IsTissue)
	if err != nil {
		return ext, fmt.Errorf("%w: +y tissue edge: %w", ErrGeometry, err)
	}
	ext.SetMax(models.Y, min(yHigh+yGap, orig.Max(models.Y)))
	logging.Debugf("+y tissue edge at y=%d, crop ymax=%d\n", yHigh, ext.Max(models.Y))

	if p.Target.Enabled() {
		ext = SnapToTarget(ext, orig, p.Target)
	}

	if !ext.Valid() || !ext.Within(orig) {
		return ext, fmt.Errorf("%w: %v within %v", ErrInvalidExtent, ext, orig)
	}
	return ext, nil
}

// SnapToTarget resizes ext to the target counts. Each axis keeps its low
// bound and grows or shrinks the high bound, unless that would pass the
// volume's high bound; then the high bound sits on the volume edge and the
// low bound moves down instead. A target larger than the volume is cut to
// the volume's own range.
func SnapToTarget(ext, orig models.Extent, target models.TargetDimensions) models.Extent {
	for a := models.X; a <= models.Z; a++ {
		t := target[a]
		hi := ext.Min(a) + t - 1
		lo := ext.Min(a)
		if hi > orig.Max(a) {
			hi = orig.Max(a)
			lo = hi - t + 1
		}
		if lo < orig.Min(a) {
			logging.Warningf("target %s size %d exceeds volume size %d, using %d\n",
				a, t, orig.Size(a), orig.Size(a))
			lo = orig.Min(a)
		}
		ext.SetMin(a, lo)
		ext.SetMax(a, hi)
	}
	return ext
}
