package mhd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const phantomHeader = `ObjectType = Image
NDims = 3
BinaryData = True
BinaryDataByteOrderMSB = False
CompressedData = False
TransformMatrix = 1 0 0 0 1 0 0 0 1
Offset = -12.5 0.25 3
CenterOfRotation = 0 0 0
ElementSpacing = 0.1 0.1 0.2
DimSize = 640 480 80
AnatomicalOrientation = ???
ElementType = MET_UCHAR
ElementDataFile = pc_1.raw
`

func TestReadHeader(t *testing.T) {
	h, err := ReadHeader(strings.NewReader(phantomHeader))
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Origin != [3]float64{-12.5, 0.25, 3} {
		t.Errorf("Unexpected origin %v", h.Origin)
	}
	if h.Spacing != [3]float64{0.1, 0.1, 0.2} {
		t.Errorf("Unexpected spacing %v", h.Spacing)
	}
	if h.Dim != [3]int{640, 480, 80} {
		t.Errorf("Unexpected dimensions %v", h.Dim)
	}
}

// TestReadHeaderFinalLineWithoutNewline accepts a file ending right after DimSize
func TestReadHeaderFinalLineWithoutNewline(t *testing.T) {
	lines := strings.Split(phantomHeader, "\n")
	short := strings.Join(lines[:10], "\n")
	h, err := ReadHeader(strings.NewReader(short))
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Dim != [3]int{640, 480, 80} {
		t.Errorf("Unexpected dimensions %v", h.Dim)
	}
}

func TestReadHeaderErrors(t *testing.T) {
	lines := strings.Split(phantomHeader, "\n")
	replace := func(n int, line string) string {
		cp := append([]string(nil), lines...)
		cp[n-1] = line
		return strings.Join(cp, "\n")
	}

	cases := map[string]string{
		"empty":             "",
		"missing origin":    strings.Join(lines[:6], "\n") + "\n",
		"missing spacing":   strings.Join(lines[:8], "\n") + "\n",
		"missing dimension": strings.Join(lines[:9], "\n") + "\n",
		"bad origin":        replace(7, "Offset = a b c"),
		"short spacing":     replace(9, "ElementSpacing = 0.1 0.1"),
		"float dimension":   replace(10, "DimSize = 640 480.5 80"),
		"zero dimension":    replace(10, "DimSize = 640 0 80"),
		"negative spacing":  replace(9, "ElementSpacing = 0.1 -0.1 0.2"),
		"dimension product": replace(10, "DimSize = 4000000 4000000 4000000"),
	}
	for name, text := range cases {
		if _, err := ReadHeader(strings.NewReader(text)); !errors.Is(err, ErrParse) {
			t.Errorf("%s: expected ErrParse, got %v", name, err)
		}
	}
}

// TestWriteHeaderLayout verifies that written headers parse back
func TestWriteHeaderLayout(t *testing.T) {
	h := Header{
		Origin:   [3]float64{-12.5, 0.25, 3},
		Spacing:  [3]float64{0.1, 0.1, 0.2},
		Dim:      [3]int{64, 48, 8},
		DataFile: "pc_3_crop.raw",
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	text := buf.String()

	for _, want := range []string{
		"ObjectType = Image\n",
		"CompressedData = False\n",
		"TransformMatrix = 1 0 0 0 1 0 0 0 1\n",
		"Offset = -12.5000 0.2500 3.0000\n",
		"CenterOfRotation = 0 0 0\n",
		"ElementSpacing = 0.1000 0.1000 0.2000\n",
		"DimSize = 64 48 8\n",
		"AnatomicalOrientation = ???\n",
		"ElementType = MET_UCHAR\n",
		"ElementDataFile = pc_3_crop.raw\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("header missing %q:\n%s", want, text)
		}
	}

	back, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader of written header failed: %v", err)
	}
	back.DataFile = h.DataFile
	if back != h {
		t.Errorf("Expected %+v, got %+v", h, back)
	}
}

func TestFileNames(t *testing.T) {
	in := PhantomFiles("/work", 42)
	if in.Header != "/work/pc_42.mhd" || in.Data != "/work/pc_42.raw.gz" {
		t.Errorf("Unexpected input files %+v", in)
	}
	out := CroppedFiles("/work", 42)
	if out.Header != "/work/pc_42_crop.mhd" || out.Data != "/work/pc_42_crop.raw.gz" {
		t.Errorf("Unexpected output files %+v", out)
	}
	if out.DataFileName() != "pc_42_crop.raw" {
		t.Errorf("Unexpected data file name %q", out.DataFileName())
	}
}
