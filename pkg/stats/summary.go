// Package stats summarizes the label content of a phantom volume so a crop
// can be checked against its input.
package stats

import (
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"breastcrop/internal/models"
	"breastcrop/pkg/tissue"
)

// Summary holds label statistics for one volume
type Summary struct {
	// Voxels is the total voxel count
	Voxels int

	// Counts is the number of voxels per label value
	Counts [256]int

	// Background, Paddle and Tissue are voxel counts per class
	Background int
	Paddle     int
	Tissue     int

	// TissueFraction is Tissue / Voxels
	TissueFraction float64

	// Entropy is the Shannon entropy (nats) of the label distribution.
	// Cropping away air raises it.
	Entropy float64

	// Digest is the hex BLAKE3 hash of the voxel buffer
	Digest string
}

// MaterialCount is the voxel count of one label value
type MaterialCount struct {
	Label    uint8
	Name     string
	Count    int
	Fraction float64
}

// Summarize counts labels in vol
func Summarize(vol *models.Volume, labels tissue.Labels) Summary {
	s := Summary{Voxels: len(vol.Data)}
	for _, v := range vol.Data {
		s.Counts[v]++
	}

	p := make([]float64, len(s.Counts))
	for v, n := range s.Counts {
		p[v] = float64(n)
		switch {
		case labels.IsBackground(uint8(v)):
			s.Background += n
		case labels.IsPaddle(uint8(v)):
			s.Paddle += n
		default:
			s.Tissue += n
		}
	}

	if total := floats.Sum(p); total > 0 {
		floats.Scale(1/total, p)
		s.TissueFraction = float64(s.Tissue) / total
		s.Entropy = stat.Entropy(p)
	}

	sum := blake3.Sum256(vol.Data)
	s.Digest = hex.EncodeToString(sum[:])
	return s
}

// Materials lists the labels present in the volume, most frequent first
func (s Summary) Materials(labels tissue.Labels) []MaterialCount {
	var out []MaterialCount
	for v, n := range s.Counts {
		if n == 0 {
			continue
		}
		name := labels.Name(uint8(v))
		if name == "" {
			name = "unknown"
		}
		out = append(out, MaterialCount{
			Label:    uint8(v),
			Name:     name,
			Count:    n,
			Fraction: float64(n) / float64(s.Voxels),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Retention is the share of the input's tissue voxels still present after
// cropping. It is 1 when there was no tissue to begin with.
func Retention(before, after Summary) float64 {
	if before.Tissue == 0 {
		return 1
	}
	return float64(after.Tissue) / float64(before.Tissue)
}
