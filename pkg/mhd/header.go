package mhd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrParse is returned when a header is missing a line or a line is malformed
var ErrParse = errors.New("error parsing header")

// Header is the geometry part of a MetaImage header
type Header struct {
	Origin   [3]float64
	Spacing  [3]float64
	Dim      [3]int
	DataFile string
}

// Positions of the fields read from a phantom header. Every other line is
// skipped without inspection.
const (
	originLine  = 7
	spacingLine = 9
	dimLine     = 10
)

// ReadHeader parses a phantom header. The layout is positional: line 7 holds
// the origin, line 9 the spacing and line 10 the dimensions, each as
// "<tag> <tag> v v v".
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	br := bufio.NewReader(r)

	for n := 1; n <= dimLine; n++ {
		line, err := readLine(br)
		if err != nil {
			return h, fmt.Errorf("%w: line %d: %v", ErrParse, n, err)
		}

		switch n {
		case originLine:
			if h.Origin, err = parseFloats(line); err != nil {
				return h, fmt.Errorf("%w: origin line %d: %v", ErrParse, n, err)
			}
		case spacingLine:
			if h.Spacing, err = parseFloats(line); err != nil {
				return h, fmt.Errorf("%w: spacing line %d: %v", ErrParse, n, err)
			}
		case dimLine:
			if h.Dim, err = parseInts(line); err != nil {
				return h, fmt.Errorf("%w: dimension line %d: %v", ErrParse, n, err)
			}
		}
	}

	for i := 0; i < 3; i++ {
		if h.Dim[i] <= 0 {
			return h, fmt.Errorf("%w: non-positive dimension %d", ErrParse, h.Dim[i])
		}
		if h.Spacing[i] <= 0 {
			return h, fmt.Errorf("%w: non-positive spacing %g", ErrParse, h.Spacing[i])
		}
	}
	if math.MaxInt/h.Dim[0]/h.Dim[1] < h.Dim[2] {
		return h, fmt.Errorf("%w: dimensions %d %d %d too large", ErrParse, h.Dim[0], h.Dim[1], h.Dim[2])
	}
	return h, nil
}

// readLine returns the next line. A final line without a newline is accepted.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.ErrUnexpectedEOF
		}
		return line, nil
	}
	return line, err
}

// valueFields skips the two leading tokens ("Offset =") and returns the next three
func valueFields(line string) ([]string, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return nil, fmt.Errorf("expected 2 tags and 3 values, got %q", strings.TrimSpace(line))
	}
	return fields[2:5], nil
}

func parseFloats(line string) ([3]float64, error) {
	var out [3]float64
	fields, err := valueFields(line)
	if err != nil {
		return out, err
	}
	for i, f := range fields {
		if out[i], err = strconv.ParseFloat(f, 64); err != nil {
			return out, err
		}
	}
	return out, nil
}

func parseInts(line string) ([3]int, error) {
	var out [3]int
	fields, err := valueFields(line)
	if err != nil {
		return out, err
	}
	for i, f := range fields {
		if out[i], err = strconv.Atoi(f); err != nil {
			return out, err
		}
	}
	return out, nil
}

// WriteHeader writes a MetaImage header for an uncompressed unsigned char
// volume. Its line layout is the one ReadHeader expects.
func WriteHeader(w io.Writer, h Header) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ObjectType = Image\n")
	fmt.Fprintf(bw, "NDims = 3\n")
	fmt.Fprintf(bw, "BinaryData = True\n")
	fmt.Fprintf(bw, "BinaryDataByteOrderMSB = False\n")
	fmt.Fprintf(bw, "CompressedData = False\n")
	fmt.Fprintf(bw, "TransformMatrix = 1 0 0 0 1 0 0 0 1\n")
	fmt.Fprintf(bw, "Offset = %6.4f %6.4f %6.4f\n", h.Origin[0], h.Origin[1], h.Origin[2])
	fmt.Fprintf(bw, "CenterOfRotation = 0 0 0\n")
	fmt.Fprintf(bw, "ElementSpacing = %6.4f %6.4f %6.4f\n", h.Spacing[0], h.Spacing[1], h.Spacing[2])
	fmt.Fprintf(bw, "DimSize = %d %d %d\n", h.Dim[0], h.Dim[1], h.Dim[2])
	fmt.Fprintf(bw, "AnatomicalOrientation = ???\n")
	fmt.Fprintf(bw, "ElementType = MET_UCHAR\n")
	fmt.Fprintf(bw, "ElementDataFile = %s\n", h.DataFile)
	return bw.Flush()
}
