package mhd

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileSet names the header and gzip data file of one volume
type FileSet struct {
	Header string
	Data   string
}

// PhantomFiles returns the input file pair for a phantom seed
func PhantomFiles(dir string, seed int) FileSet {
	return fileSet(dir, fmt.Sprintf("pc_%d", seed))
}

// CroppedFiles returns the output file pair for a phantom seed
func CroppedFiles(dir string, seed int) FileSet {
	return fileSet(dir, fmt.Sprintf("pc_%d_crop", seed))
}

func fileSet(dir, base string) FileSet {
	return FileSet{
		Header: filepath.Join(dir, base+".mhd"),
		Data:   filepath.Join(dir, base+".raw.gz"),
	}
}

// DataFileName is the ElementDataFile value written into the header: the
// data file name with the .gz suffix dropped.
func (f FileSet) DataFileName() string {
	return strings.TrimSuffix(filepath.Base(f.Data), ".gz")
}
