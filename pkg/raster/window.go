package raster

import "fmt"

// Window is a rectangular pixel region, offsets from the top-left corner.
type Window struct {
	Col, Row      int
	Width, Height int
}

func (w Window) String() string {
	return fmt.Sprintf("window(col=%d,row=%d,%dx%d)", w.Col, w.Row, w.Width, w.Height)
}

// Within reports whether the window is non-empty and inside a width x height raster.
func (w Window) Within(width, height int) bool {
	return w.Col >= 0 && w.Row >= 0 && w.Width > 0 && w.Height > 0 &&
		w.Col+w.Width <= width && w.Row+w.Height <= height
}

// Windows cuts a raster into block x block windows in row-major order. Windows
// on the right and bottom edges are clipped to the raster.
func Windows(width, height, block int) []Window {
	if block <= 0 {
		return grid(width, height, width, height)
	}
	return grid(width, height, block, block)
}

func grid(width, height, bw, bh int) []Window {
	if width <= 0 || height <= 0 || bw <= 0 || bh <= 0 {
		return nil
	}
	var out []Window
	for row := 0; row < height; row += bh {
		for col := 0; col < width; col += bw {
			out = append(out, Window{
				Col:    col,
				Row:    row,
				Width:  min(bw, width-col),
				Height: min(bh, height-row),
			})
		}
	}
	return out
}
