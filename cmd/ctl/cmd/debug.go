package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func writePNG(dir, name string, img image.Image) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}

// half transparent so overlapping bands stay visible
var bandColors = [3]color.NRGBA{
	{R: 0xd0, A: 0x80},
	{G: 0xa0, A: 0x80},
	{B: 0xd0, A: 0x80},
}

// writeHistogram plots the per band bin counts of h over each other, one bin
// per sample value, and saves the chart to dir/name.
func writeHistogram(dir, name string, h [3][]int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = strings.TrimSuffix(name, filepath.Ext(name))
	p.X.Label.Text = "value"
	p.Y.Label.Text = "pixels"

	for band, counts := range h {
		xys := make(plotter.XYs, len(counts))
		for i, n := range counts {
			xys[i].X, xys[i].Y = float64(i), float64(n)
		}
		hist, err := plotter.NewHistogram(xys, len(counts))
		if err != nil {
			return fmt.Errorf("band %d histogram: %w", band+1, err)
		}
		hist.FillColor = bandColors[band]
		hist.LineStyle.Width = 0
		p.Add(hist)
		p.Legend.Add(fmt.Sprintf("band %d", band+1), hist)
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, filepath.Join(dir, name))
}
