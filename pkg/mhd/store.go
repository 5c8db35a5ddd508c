// Package mhd reads and writes phantom volumes stored as a MetaImage text
// header next to a gzip-compressed raw label file.
package mhd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"

	"breastcrop/internal/models"
	"breastcrop/pkg/logging"
)

// ErrShortRead marks a data chunk that decompressed to fewer bytes than the
// header promised. It is only returned in strict mode.
var ErrShortRead = errors.New("short read from compressed data")

// LoadReport describes how much voxel data a Load actually obtained
type LoadReport struct {
	// BytesRead counts decompressed bytes copied from the data file
	BytesRead int64

	// ShortChunks counts chunks that came back incomplete
	ShortChunks int
}

// Store loads and saves volumes
type Store struct {
	// Strict makes an incomplete data chunk fail the load instead of
	// logging a warning and keeping the stale chunk buffer
	Strict bool

	// CompressionLevel is passed to the gzip writer on Save
	CompressionLevel int
}

// NewStore creates a Store with default gzip compression
func NewStore(strict bool) *Store {
	return &Store{
		Strict:           strict,
		CompressionLevel: gzip.DefaultCompression,
	}
}

// Load reads the header and the gzip data file of a volume.
//
// The data file is streamed in Dim[0] chunks of Dim[1]*Dim[2] bytes. When a
// chunk is incomplete and the store is not strict, the whole chunk buffer is
// still copied, so the tail of that chunk keeps whatever the previous chunk
// left in the buffer.
func (s *Store) Load(files FileSet) (*models.Volume, LoadReport, error) {
	var report LoadReport

	h, err := readHeaderFile(files.Header)
	if err != nil {
		return nil, report, err
	}

	vol, err := models.NewVolume(h.Dim, h.Spacing, h.Origin)
	if err != nil {
		return nil, report, fmt.Errorf("%w: %v", ErrParse, err)
	}

	f, err := os.Open(files.Data)
	if err != nil {
		return nil, report, fmt.Errorf("unable to open gzip phantom data file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, report, fmt.Errorf("unable to open gzip phantom data file %s: %w", files.Data, err)
	}
	defer zr.Close()

	chunkSize := vol.Dim[1] * vol.Dim[2]
	chunk := make([]byte, chunkSize)
	for i := 0; i < vol.Dim[0]; i++ {
		n, err := io.ReadFull(zr, chunk)
		report.BytesRead += int64(n)
		if err != nil {
			report.ShortChunks++
			if s.Strict {
				return nil, report, fmt.Errorf("%w: chunk %d of %s: got %d of %d bytes: %v",
					ErrShortRead, i, files.Data, n, chunkSize, err)
			}
			logging.Warningf("decompression error in chunk %d of %s (%d of %d bytes): %v\n",
				i, files.Data, n, chunkSize, err)
		}
		copy(vol.Data[i*chunkSize:(i+1)*chunkSize], chunk)
	}

	logging.Infof("Total bytes read = %d (%s)\n", report.BytesRead, humanize.Bytes(uint64(report.BytesRead)))
	return vol, report, nil
}

func readHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("unable to open MHD header file: %w", err)
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return h, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Save writes the volume as a gzip data file followed by its header. If
// either write fails, both output files are removed.
func (s *Store) Save(files FileSet, vol *models.Volume) (err error) {
	if len(vol.Data) != vol.Len() {
		return fmt.Errorf("volume buffer holds %d voxels, dimensions need %d", len(vol.Data), vol.Len())
	}

	defer func() {
		if err != nil {
			os.Remove(files.Data)
			os.Remove(files.Header)
		}
	}()

	if err = s.writeData(files.Data, vol); err != nil {
		return err
	}

	hf, err := os.Create(files.Header)
	if err != nil {
		return fmt.Errorf("unable to open mhd file for writing: %w", err)
	}
	defer hf.Close()

	h := Header{
		Origin:   vol.Origin,
		Spacing:  vol.Spacing,
		Dim:      vol.Dim,
		DataFile: files.DataFileName(),
	}
	if err = WriteHeader(hf, h); err != nil {
		return fmt.Errorf("failed to write header %s: %w", files.Header, err)
	}
	return hf.Close()
}

func (s *Store) writeData(path string, vol *models.Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to open gzip file for writing: %w", err)
	}
	defer f.Close()

	zw, err := gzip.NewWriterLevel(f, s.CompressionLevel)
	if err != nil {
		return fmt.Errorf("invalid gzip compression level %d: %w", s.CompressionLevel, err)
	}
	defer zw.Close()

	chunkSize := vol.Dim[1] * vol.Dim[2]
	for i := 0; i < vol.Dim[0]; i++ {
		if _, err := zw.Write(vol.Data[i*chunkSize : (i+1)*chunkSize]); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return f.Close()
}
