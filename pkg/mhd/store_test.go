package mhd

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"breastcrop/internal/models"
)

func newPatternVolume(t *testing.T, dim [3]int) *models.Volume {
	t.Helper()
	vol, err := models.NewVolume(dim, [3]float64{0.25, 0.5, 1}, [3]float64{-4, 2.5, 10})
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	for i := range vol.Data {
		vol.Data[i] = uint8(i * 7)
	}
	return vol
}

// TestStoreRoundTrip saves a volume and loads it back
func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	files := CroppedFiles(dir, 5)
	vol := newPatternVolume(t, [3]int{6, 5, 4})

	store := NewStore(true)
	if err := store.Save(files, vol); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, report, err := store.Load(files)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if back.Dim != vol.Dim || back.Spacing != vol.Spacing || back.Origin != vol.Origin {
		t.Errorf("Geometry changed: %+v vs %+v", back, vol)
	}
	if !bytes.Equal(back.Data, vol.Data) {
		t.Errorf("Voxel data changed")
	}
	if report.BytesRead != int64(len(vol.Data)) || report.ShortChunks != 0 {
		t.Errorf("Unexpected load report %+v", report)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	files := PhantomFiles(dir, 1)
	store := NewStore(false)

	if _, _, err := store.Load(files); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected a not-exist error for the header, got %v", err)
	}

	// header present, data missing
	if err := os.WriteFile(files.Header, []byte(phantomHeader), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Load(files); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected a not-exist error for the data file, got %v", err)
	}
}

func TestLoadMalformedHeader(t *testing.T) {
	var huge bytes.Buffer
	if err := WriteHeader(&huge, Header{Spacing: [3]float64{1, 1, 1}, Dim: [3]int{4000000, 4000000, 4000000}}); err != nil {
		t.Fatal(err)
	}
	headers := map[string][]byte{
		"truncated": []byte("ObjectType = Image\n"),
		"overflow":  huge.Bytes(),
	}
	for name, data := range headers {
		files := PhantomFiles(t.TempDir(), 1)
		if err := os.WriteFile(files.Header, data, 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := NewStore(false).Load(files); !errors.Is(err, ErrParse) {
			t.Errorf("%s: expected ErrParse, got %v", name, err)
		}
	}
}

// writeTruncated writes a 2x2x2 header with only the given raw bytes of data
func writeTruncated(t *testing.T, files FileSet, raw []byte) {
	t.Helper()
	hf, err := os.Create(files.Header)
	if err != nil {
		t.Fatal(err)
	}
	defer hf.Close()
	if err := WriteHeader(hf, Header{Spacing: [3]float64{1, 1, 1}, Dim: [3]int{2, 2, 2}}); err != nil {
		t.Fatal(err)
	}

	df, err := os.Create(files.Data)
	if err != nil {
		t.Fatal(err)
	}
	defer df.Close()
	zw := gzip.NewWriter(df)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestLoadShortDataLenient keeps going and reuses the chunk buffer
func TestLoadShortDataLenient(t *testing.T) {
	files := PhantomFiles(t.TempDir(), 2)
	writeTruncated(t, files, []byte{1, 2, 3, 4, 5, 6})

	vol, report, err := NewStore(false).Load(files)
	if err != nil {
		t.Fatalf("Lenient load failed: %v", err)
	}
	if report.BytesRead != 6 || report.ShortChunks != 1 {
		t.Errorf("Unexpected report %+v", report)
	}
	// second chunk got 5,6 and kept 3,4 from the first
	want := []byte{1, 2, 3, 4, 5, 6, 3, 4}
	if !bytes.Equal(vol.Data, want) {
		t.Errorf("Expected %v, got %v", want, vol.Data)
	}
}

func TestLoadShortDataStrict(t *testing.T) {
	files := PhantomFiles(t.TempDir(), 2)
	writeTruncated(t, files, []byte{1, 2, 3, 4, 5, 6})

	_, report, err := NewStore(true).Load(files)
	if !errors.Is(err, ErrShortRead) {
		t.Errorf("Expected ErrShortRead, got %v", err)
	}
	if report.ShortChunks != 1 {
		t.Errorf("Expected one short chunk, got %d", report.ShortChunks)
	}
}

func TestLoadNotGzip(t *testing.T) {
	files := PhantomFiles(t.TempDir(), 3)
	if err := os.WriteFile(files.Header, []byte(phantomHeader), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(files.Data, []byte("plain bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewStore(false).Load(files); err == nil {
		t.Errorf("Expected an error for a non-gzip data file")
	}
}

// TestSaveFailureLeavesNoFiles checks cleanup after a failed save
func TestSaveFailureLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	files := CroppedFiles(dir, 9)
	vol := newPatternVolume(t, [3]int{3, 3, 3})

	store := NewStore(false)
	store.CompressionLevel = 42
	if err := store.Save(files, vol); err == nil {
		t.Fatalf("Expected an error for an invalid compression level")
	}
	for _, p := range []string{files.Header, files.Data} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should not exist after a failed save", filepath.Base(p))
		}
	}

	vol.Data = vol.Data[:5]
	if err := NewStore(false).Save(files, vol); err == nil {
		t.Errorf("Expected an error for a truncated buffer")
	}
}
