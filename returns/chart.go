package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

var (
	background = color.RGBA{A: 255}
	lineColor  = color.RGBA{R: 255, G: 200, A: 255}
	zeroColor  = color.RGBA{R: 64, G: 64, B: 64, A: 255}
)

const lineWidth = 2.0

// Chart plots values as a line scaled to a w x h image, with the zero line
// drawn when it is in range.
func Chart(values []float64, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	if len(values) == 0 {
		return img
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	y := func(v float64) float32 {
		return float32(float64(h-1) * (hi - v) / (hi - lo))
	}
	x := func(i int) float32 {
		if len(values) == 1 {
			return 0
		}
		return float32(float64(w-1) * float64(i) / float64(len(values)-1))
	}

	if lo < 0 && hi > 0 {
		stroke(img, zeroColor, [][2]float32{{0, y(0)}, {float32(w - 1), y(0)}})
	}
	pts := make([][2]float32, len(values))
	for i, v := range values {
		pts[i] = [2]float32{x(i), y(v)}
	}
	if len(pts) == 1 {
		pts = append(pts, [2]float32{float32(w - 1), pts[0][1]})
	}
	stroke(img, lineColor, pts)
	return img
}

// stroke draws a polyline as a chain of thin quads.
func stroke(img *image.RGBA, c color.Color, pts [][2]float32) {
	b := img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(lineWidth / 2)
	for i := 1; i < len(pts); i++ {
		a, z := pts[i-1], pts[i]
		r.MoveTo(a[0], a[1]-half)
		r.LineTo(z[0], z[1]-half)
		r.LineTo(z[0], z[1]+half)
		r.LineTo(a[0], a[1]+half)
		r.ClosePath()
	}
	r.Draw(img, b, image.NewUniform(c), image.Point{})
}
