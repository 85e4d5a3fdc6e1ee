// Package plot renders learning curves of experiments to PNG images
package plot

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"gonum.org/v1/gonum/floats"
)

const (
	width    = 800
	height   = 500
	margin   = 60.0
	fontSize = 11.0
	ticks    = 5
)

var (
	face font.Face

	background = color.White
	foreground = color.Black
	lineColour = color.RGBA{31, 119, 180, 255}
	bandColour = color.RGBA{31, 119, 180, 64}
)

func init() {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	face = truetype.NewFace(regular, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Curve is a learning curve: the mean performance at each x value and
// the standard deviation band drawn around it
type Curve struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Mean   []float64
	Std    []float64 // Optional
}

// Validate returns an error if the Curve cannot be drawn
func (c Curve) Validate() error {
	if len(c.X) == 0 {
		return errors.New("validate: no points to plot")
	}
	if len(c.Mean) != len(c.X) {
		return errors.Errorf("validate: expected %v means, got %v",
			len(c.X), len(c.Mean))
	}
	if c.Std != nil && len(c.Std) != len(c.X) {
		return errors.Errorf("validate: expected %v standard deviations, "+
			"got %v", len(c.X), len(c.Std))
	}
	return nil
}

// Save renders c as a PNG image to filename
func Save(filename string, c Curve) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save")
	}
	defer file.Close()

	if err := Render(file, c); err != nil {
		return err
	}
	return file.Close()
}

// Render renders c as a PNG image to w
func Render(w io.Writer, c Curve) error {
	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "render")
	}

	lower, upper := c.Mean, c.Mean
	if c.Std != nil {
		lower = make([]float64, len(c.Mean))
		upper = make([]float64, len(c.Mean))
		floats.SubTo(lower, c.Mean, c.Std)
		floats.AddTo(upper, c.Mean, c.Std)
	}

	xMin, xMax := padded(floats.Min(c.X), floats.Max(c.X))
	yMin, yMax := padded(floats.Min(lower), floats.Max(upper))

	// Convert data coordinates to pixel coordinates
	px := func(x float64) float64 {
		return margin + (x-xMin)/(xMax-xMin)*(width-2*margin)
	}
	py := func(y float64) float64 {
		return height - margin - (y-yMin)/(yMax-yMin)*(height-2*margin)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()
	dc.SetFontFace(face)

	// Standard deviation band
	if c.Std != nil {
		dc.MoveTo(px(c.X[0]), py(upper[0]))
		for i := 1; i < len(c.X); i++ {
			dc.LineTo(px(c.X[i]), py(upper[i]))
		}
		for i := len(c.X) - 1; i >= 0; i-- {
			dc.LineTo(px(c.X[i]), py(lower[i]))
		}
		dc.ClosePath()
		dc.SetColor(bandColour)
		dc.Fill()
	}

	// Mean performance
	dc.ClearPath()
	dc.MoveTo(px(c.X[0]), py(c.Mean[0]))
	for i := 1; i < len(c.X); i++ {
		dc.LineTo(px(c.X[i]), py(c.Mean[i]))
	}
	dc.SetColor(lineColour)
	dc.SetLineWidth(2.0)
	dc.Stroke()
	for i := range c.X {
		dc.DrawCircle(px(c.X[i]), py(c.Mean[i]), 3)
	}
	dc.Fill()

	// Axes, ticks, and labels
	dc.SetColor(foreground)
	dc.SetLineWidth(1.0)
	dc.DrawLine(margin, height-margin, width-margin, height-margin)
	dc.DrawLine(margin, margin, margin, height-margin)
	dc.Stroke()

	for i := 0; i <= ticks; i++ {
		frac := float64(i) / ticks

		x := xMin + frac*(xMax-xMin)
		dc.DrawLine(px(x), height-margin, px(x), height-margin+4)
		dc.DrawStringAnchored(label(x), px(x), height-margin+8, 0.5, 1)

		y := yMin + frac*(yMax-yMin)
		dc.DrawLine(margin-4, py(y), margin, py(y))
		dc.DrawStringAnchored(label(y), margin-8, py(y), 1, 0.5)
	}
	dc.Stroke()

	dc.DrawStringAnchored(c.Title, width/2, margin/2, 0.5, 0.5)
	dc.DrawStringAnchored(c.XLabel, width/2, height-margin/4, 0.5, 0)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), margin/4, height/2)
	dc.DrawStringAnchored(c.YLabel, margin/4, height/2, 0.5, 0.5)
	dc.Pop()

	return errors.Wrap(dc.EncodePNG(w), "render")
}

// padded returns the range [min, max] extended by 5% on both sides,
// or by 1 if the range is empty
func padded(min, max float64) (float64, float64) {
	pad := 0.05 * (max - min)
	if pad == 0 {
		pad = 1
	}
	return min - pad, max + pad
}

func label(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
