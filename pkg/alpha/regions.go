package alpha

import "fmt"

// LossyRegionThreshold is the nodata region count at which a mask is
// considered fragmented by lossy compression.
const LossyRegionThreshold = 10

// Connectivity is the neighbour rule used when grouping pixels into regions.
type Connectivity int

const (
	Connectivity4 Connectivity = 4
	Connectivity8 Connectivity = 8
)

// ParseConnectivity accepts 4 or 8.
func ParseConnectivity(n int) (Connectivity, error) {
	switch Connectivity(n) {
	case Connectivity4, Connectivity8:
		return Connectivity(n), nil
	}
	return 0, fmt.Errorf("connectivity must be 4 or 8, got %d", n)
}

var (
	dx8 = [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy8 = [8]int{-1, -1, -1, 0, 0, 1, 1, 1}
	dx4 = [4]int{0, -1, 1, 0}
	dy4 = [4]int{-1, 0, 0, 1}
)

func (c Connectivity) offsets() ([]int, []int) {
	if c == Connectivity4 {
		return dx4[:], dy4[:]
	}
	return dx8[:], dy8[:]
}

// Labeling assigns every pixel of a mask a region label. Label 0 means the
// pixel was not labeled (background); labels 1..Count are regions.
type Labeling struct {
	Rows   int
	Cols   int
	Labels []int32
	Count  int
	// Sizes[l-1] is the pixel count of label l
	Sizes []int
}

// labelRegions groups 4/8-connected pixels of equal value. Pixels for which
// skip returns true stay unlabeled.
func labelRegions[T Sample](m *Mask[T], conn Connectivity, skip func(T) bool) *Labeling {
	w, h := m.Cols, m.Rows
	lab := &Labeling{Rows: h, Cols: w, Labels: make([]int32, w*h)}
	dx, dy := conn.offsets()

	queue := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if lab.Labels[idx] != 0 || (skip != nil && skip(m.Pix[idx])) {
				continue
			}

			lab.Count++
			id := int32(lab.Count)
			val := m.Pix[idx]
			lab.Labels[idx] = id
			queue = append(queue[:0], idx)
			size := 0

			for len(queue) > 0 {
				curr := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				size++

				cy := curr / w
				cx := curr % w
				for d := range dx {
					nx := cx + dx[d]
					ny := cy + dy[d]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if lab.Labels[ni] == 0 && m.Pix[ni] == val {
						lab.Labels[ni] = id
						queue = append(queue, ni)
					}
				}
			}
			lab.Sizes = append(lab.Sizes, size)
		}
	}
	return lab
}

// LabelRegions labels the connected regions of every value except background.
func LabelRegions[T Sample](m *Mask[T], conn Connectivity, background T) *Labeling {
	return labelRegions(m, conn, func(v T) bool { return v == background })
}

// CountNodataRegions masks b exactly against ndv and counts the connected
// regions of the nodata class. Opaque pixels are background, so the count is
// the number of separate transparent islands.
func CountNodataRegions[T Sample](b *Block[T], ndv Nodata, conn Connectivity) (int, error) {
	m, err := MaskExact(b, ndv)
	if err != nil {
		return 0, err
	}
	return LabelRegions(m, conn, MaxValue[T]()).Count, nil
}

// IsLossy reports whether a nodata region count indicates lossy compression.
func IsLossy(regions int) bool {
	return regions >= LossyRegionThreshold
}
