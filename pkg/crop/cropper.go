package crop

import (
	"fmt"

	"breastcrop/internal/models"
)

// Crop copies the sub-block addressed by ext into a new contiguous volume.
// Spacing is kept and the origin moves to the physical position of the
// block's first voxel, so the result sits in the source coordinate frame.
func Crop(vol *models.Volume, ext models.Extent) (*models.Volume, error) {
	if !ext.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExtent, ext)
	}
	if !ext.Within(vol.Extent()) {
		return nil, fmt.Errorf("%w: %v extends beyond volume %v", ErrInvalidExtent, ext, vol.Extent())
	}

	var origin [3]float64
	for a := models.X; a <= models.Z; a++ {
		origin[a] = vol.Origin[a] + float64(ext.Min(a))*vol.Spacing[a]
	}

	out, err := models.NewVolume(ext.Dims(), vol.Spacing, origin)
	if err != nil {
		return nil, err
	}

	// copy whole x rows at a time
	sizeX := ext.Size(models.X)
	for z := 0; z < out.Dim[2]; z++ {
		for y := 0; y < out.Dim[1]; y++ {
			srcIdx := vol.Index(ext.Min(models.X), ext.Min(models.Y)+y, ext.Min(models.Z)+z)
			dstIdx := out.Index(0, y, z)
			copy(out.Data[dstIdx:dstIdx+sizeX], vol.Data[srcIdx:srcIdx+sizeX])
		}
	}

	return out, nil
}
