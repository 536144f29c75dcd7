// Package findnodata guesses the nodata value of an RGB image from its pixel
// statistics when the dataset does not declare one.
//
// The guess comes from two estimators: the per-band mode of the whole image,
// and the per-band mode of "continuous" pixels, those identical to their
// neighbour, which isolates large uniform fills from texture. When they
// disagree the image border decides, since fill usually touches the edges.
package findnodata

import (
	"errors"
	"fmt"
	"math"

	"github.com/jpfielding/alpha.go/pkg/alpha"
)

// ErrInsufficientContinuousData means too few continuous pixels were found
// to estimate a mode. It is an expected outcome on images without large
// uniform areas.
var ErrInsufficientContinuousData = errors.New("insufficient continuous data")

// MaxSampleDimension bounds the smaller image side used for discovery.
const MaxSampleDimension = 200

// Axis selects the neighbour relation used to find continuous pixels.
type Axis int

const (
	// AxisCols compares each pixel with its left neighbour in the same row.
	AxisCols Axis = iota
	// AxisRing compares consecutive pixels of an edge ring.
	AxisRing
)

// Candidate is a per-band nodata guess for the first three bands.
type Candidate [3]int

func (c Candidate) String() string {
	return fmt.Sprintf("[%d, %d, %d]", c[0], c[1], c[2])
}

// Nodata converts the candidate to a mask nodata tuple.
func (c Candidate) Nodata() alpha.Nodata {
	return alpha.Nodata{float64(c[0]), float64(c[1]), float64(c[2])}
}

// Status classifies a discovery outcome.
type Status int

const (
	Undetermined Status = iota
	Found
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	}
	return "undetermined"
}

// Result is the outcome of Discover. Ambiguity is a normal result, not an error.
type Result struct {
	Status    Status
	Candidate Candidate
}

// Format renders the result for the command line: the candidate when found,
// "None" for an ambiguous result in verbose mode, and "" otherwise.
func (r Result) Format(verbose bool) string {
	switch r.Status {
	case Found:
		return r.Candidate.String()
	case Ambiguous:
		if verbose {
			return "None"
		}
	}
	return ""
}

// Pixels is a list of RGB triplets.
type Pixels [][3]int

// Downsample strides both axes so the smaller side is about
// MaxSampleDimension, and returns the first three bands as an image of
// rows x cols triplets.
func Downsample[T alpha.Sample](img *alpha.Block[T]) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.Bands < 3 {
		return nil, fmt.Errorf("discovery needs 3 bands, got %d", img.Bands)
	}
	if img.Rows == 0 || img.Cols == 0 {
		return nil, fmt.Errorf("empty image: %dx%d", img.Cols, img.Rows)
	}

	stride := 1
	if small := min(img.Rows, img.Cols); small > MaxSampleDimension {
		stride = int(math.Ceil(float64(small) / MaxSampleDimension))
	}

	rows := (img.Rows + stride - 1) / stride
	cols := (img.Cols + stride - 1) / stride
	out := &Image{Rows: rows, Cols: cols, Stride: stride, Pix: make(Pixels, 0, rows*cols)}
	for r := 0; r < img.Rows; r += stride {
		for c := 0; c < img.Cols; c += stride {
			out.Pix = append(out.Pix, [3]int{
				int(img.At(0, r, c)),
				int(img.At(1, r, c)),
				int(img.At(2, r, c)),
			})
		}
	}
	return out, nil
}

// Image is a (possibly downsampled) row-major grid of RGB triplets.
type Image struct {
	Rows   int
	Cols   int
	Stride int
	Pix    Pixels
}

// At returns the triplet at (row, col).
func (im *Image) At(row, col int) [3]int {
	return im.Pix[row*im.Cols+col]
}

// EdgeRing returns the border pixels: top row, right column, bottom row,
// left column, in that order. Corners appear in two segments.
func (im *Image) EdgeRing() Pixels {
	ring := make(Pixels, 0, 2*im.Rows+2*im.Cols)
	for c := 0; c < im.Cols; c++ {
		ring = append(ring, im.At(0, c))
	}
	for r := 0; r < im.Rows; r++ {
		ring = append(ring, im.At(r, im.Cols-1))
	}
	for c := 0; c < im.Cols; c++ {
		ring = append(ring, im.At(im.Rows-1, c))
	}
	for r := 0; r < im.Rows; r++ {
		ring = append(ring, im.At(r, 0))
	}
	return ring
}

// Mode returns the per-band statistical mode. Ties go to the smaller value.
func Mode(px Pixels) (Candidate, error) {
	var cand Candidate
	if len(px) == 0 {
		return cand, fmt.Errorf("mode of empty pixel list")
	}
	for b := 0; b < 3; b++ {
		counts := make(map[int]int)
		for _, p := range px {
			counts[p[b]]++
		}
		best, bestN := 0, -1
		for v, n := range counts {
			if n > bestN || (n == bestN && v < best) {
				best, bestN = v, n
			}
		}
		cand[b] = best
	}
	return cand, nil
}

// Continuous returns the pixels identical in all three bands to their
// predecessor along axis. The first pixel along the axis never qualifies.
func (im *Image) Continuous(axis Axis) Pixels {
	if axis == AxisRing {
		return continuousRun(im.EdgeRing())
	}
	var out Pixels
	for r := 0; r < im.Rows; r++ {
		out = append(out, continuousRun(im.Pix[r*im.Cols:(r+1)*im.Cols])...)
	}
	return out
}

func continuousRun(line Pixels) Pixels {
	var out Pixels
	for i := 1; i < len(line); i++ {
		if line[i] == line[i-1] {
			out = append(out, line[i])
		}
	}
	return out
}

// ContinuousCandidate is the mode of the continuous pixels along axis. It
// also returns the continuous pixels themselves for later counting.
func (im *Image) ContinuousCandidate(axis Axis) (Candidate, Pixels, error) {
	cont := im.Continuous(axis)
	if len(cont) < 3 {
		return Candidate{}, cont, fmt.Errorf("%w: %d continuous pixels", ErrInsufficientContinuousData, len(cont))
	}
	cand, err := Mode(cont)
	return cand, cont, err
}

// EdgeCounts holds how often each candidate occurs on the image border.
// Index 0 is the full-image candidate, index 1 the continuous candidate.
type EdgeCounts struct {
	Full       [2]int
	Continuous [2]int
}

// SearchEdge counts exact occurrences of the two candidates in the full edge
// ring and in its continuous subset.
func (im *Image) SearchEdge(original, continuous Candidate) EdgeCounts {
	ring := im.EdgeRing()
	cont := continuousRun(ring)
	var ec EdgeCounts
	for i, cand := range [2]Candidate{original, continuous} {
		ec.Full[i] = count(ring, cand)
		ec.Continuous[i] = count(cont, cand)
	}
	return ec
}

func count(px Pixels, c Candidate) int {
	n := 0
	for _, p := range px {
		if p == c {
			n++
		}
	}
	return n
}

// Evaluate picks the candidate that strictly wins both edge counts. It
// returns 0 for the full-image candidate, 1 for the continuous one, and -1
// when the counts disagree or tie.
func Evaluate(ec EdgeCounts) int {
	switch {
	case ec.Full[0] > ec.Full[1] && ec.Continuous[0] > ec.Continuous[1]:
		return 0
	case ec.Full[0] < ec.Full[1] && ec.Continuous[0] < ec.Continuous[1]:
		return 1
	}
	return -1
}
