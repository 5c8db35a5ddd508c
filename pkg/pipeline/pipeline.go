// Package pipeline runs a complete phantom crop: load, plan, crop and save.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"breastcrop/internal/models"
	"breastcrop/pkg/crop"
	"breastcrop/pkg/logging"
	"breastcrop/pkg/mhd"
	"breastcrop/pkg/stats"
	"breastcrop/pkg/tissue"
)

// ErrConfig is returned for unusable parameters
var ErrConfig = errors.New("configuration error")

// Params holds the parameters of one crop run
type Params struct {
	// WorkDir holds pc_<seed>.mhd and pc_<seed>.raw.gz and receives the
	// cropped pair
	WorkDir string

	// Seed is the phantom seed used in the file names
	Seed int

	// AirGap is the padding in mm added beyond the tissue
	AirGap float64

	// Target sets exact output voxel counts when all three are positive
	Target models.TargetDimensions

	// Labels is the material table
	Labels tissue.Labels

	// StrictDecompression fails the run on an incomplete data chunk
	StrictDecompression bool

	// CompressionLevel is the gzip level of the output data file
	CompressionLevel int

	// Summarize computes label statistics of input and output
	Summarize bool
}

// Report describes a finished run
type Report struct {
	Load     mhd.LoadReport
	Input    models.Extent
	Extent   models.Extent
	Dim      [3]int
	Origin   [3]float64
	Before   *stats.Summary
	After    *stats.Summary
	Output   mhd.FileSet
	Duration time.Duration
}

// Cropper runs the crop pipeline for one phantom
type Cropper struct {
	params *Params
	store  *mhd.Store

	report Report
}

// NewCropper creates a Cropper with the provided parameters
func NewCropper(params *Params) *Cropper {
	store := mhd.NewStore(params.StrictDecompression)
	store.CompressionLevel = params.CompressionLevel
	return &Cropper{
		params: params,
		store:  store,
	}
}

// Process runs the pipeline. Nothing is written unless planning succeeds.
func (c *Cropper) Process() error {
	if c.params.AirGap < 0 {
		return fmt.Errorf("%w: air gap must be non-negative, got %g", ErrConfig, c.params.AirGap)
	}
	start := time.Now()

	// Step 1: load the phantom
	in := mhd.PhantomFiles(c.params.WorkDir, c.params.Seed)
	logging.Infof("Step 1: Loading phantom %s...\n", in.Header)
	vol, loadReport, err := c.store.Load(in)
	if err != nil {
		return fmt.Errorf("failed to load phantom: %w", err)
	}
	c.report.Load = loadReport
	c.report.Input = vol.Extent()
	logging.Infof("Loaded %dx%dx%d voxels, spacing %.4f %.4f %.4f mm\n",
		vol.Dim[0], vol.Dim[1], vol.Dim[2], vol.Spacing[0], vol.Spacing[1], vol.Spacing[2])

	if c.params.Summarize {
		before := stats.Summarize(vol, c.params.Labels)
		c.report.Before = &before
	}

	// Step 2: find the crop extent
	logging.Infof("Step 2: Locating paddles and tissue boundaries...\n")
	planner := crop.NewPlanner(c.params.Labels, c.params.AirGap, c.params.Target)
	ext, err := planner.Plan(vol)
	if err != nil {
		return fmt.Errorf("failed to plan crop: %w", err)
	}
	c.report.Extent = ext
	logging.Infof("Crop extent %v\n", ext)

	// Step 3: cut the sub-volume
	logging.Infof("Step 3: Cropping volume...\n")
	cropped, err := crop.Crop(vol, ext)
	if err != nil {
		return fmt.Errorf("failed to crop volume: %w", err)
	}
	c.report.Dim = cropped.Dim
	c.report.Origin = cropped.Origin

	if c.params.Summarize {
		after := stats.Summarize(cropped, c.params.Labels)
		c.report.After = &after
		if r := stats.Retention(*c.report.Before, after); r < 1 {
			logging.Warningf("crop keeps %.2f%% of tissue voxels\n", 100*r)
		}
	}

	// Step 4: write the cropped pair
	out := mhd.CroppedFiles(c.params.WorkDir, c.params.Seed)
	logging.Infof("Step 4: Saving %s...\n", out.Header)
	if err := c.store.Save(out, cropped); err != nil {
		return fmt.Errorf("failed to save cropped phantom: %w", err)
	}
	c.report.Output = out
	c.report.Duration = time.Since(start)

	logging.Infof("Cropped to %dx%dx%d voxels (%s) in %s\n",
		cropped.Dim[0], cropped.Dim[1], cropped.Dim[2],
		humanize.Bytes(uint64(cropped.Len())), c.report.Duration.Round(time.Millisecond))
	return nil
}

// Report returns the results of the last Process call
func (c *Cropper) Report() Report {
	return c.report
}

// Extent returns the crop extent found by the last Process call
func (c *Cropper) Extent() models.Extent {
	return c.report.Extent
}
