package minimap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
	"gorgonia.org/tensor"
)

// Network input size. Maps of other sizes are scaled to it.
const (
	InputHeight = 184
	InputWidth  = 152
	Channels    = 3
)

const (
	barLength  = 40
	resCap     = 1200.0
	maxSupply  = 200.0
	ringScale  = 8
	ringWeight = 0.5
)

var (
	OwnColor      = color.RGBA{R: 255, A: 255}
	EnemyColor    = color.RGBA{B: 255, A: 255}
	MineralsColor = color.RGBA{R: 37, G: 40, B: 255, A: 255}
	VespeneColor  = color.RGBA{R: 20, G: 240, B: 25, A: 255}
	FreeColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	CapColor      = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	ArmyColor     = color.RGBA{R: 255, A: 255}
)

// Blip is a unit as seen on the mini-map, in game coordinates.
type Blip struct {
	X, Y   float64
	Radius float64
}

// Snapshot is everything the renderer needs from one observation.
type Snapshot struct {
	Width, Height int
	Own           []Blip
	Enemy         []Blip
	Minerals      int
	Vespene       int
	SupplyLeft    int
	SupplyCap     int
	Workers       int
}

// Bars returns resource ratios in drawing order: minerals, vespene, free supply,
// supply cap and military share of used supply. All are clamped to [0, 1].
func (s *Snapshot) Bars() [5]float64 {
	used := s.SupplyCap - s.SupplyLeft
	return [5]float64{
		clamp(float64(s.Minerals) / resCap),
		clamp(float64(s.Vespene) / resCap),
		clamp(float64(s.SupplyLeft) / math.Max(1, float64(s.SupplyCap))),
		clamp(float64(s.SupplyCap) / maxSupply),
		clamp(float64(used-s.Workers) / math.Max(1, float64(used))),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Render draws the snapshot. Row 0 of the result is the north edge of the map.
func Render(s *Snapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, b := range s.Own {
		ring(img, b, OwnColor)
	}
	for _, b := range s.Enemy {
		ring(img, b, EnemyColor)
	}

	colors := [5]color.RGBA{MineralsColor, VespeneColor, FreeColor, CapColor, ArmyColor}
	for n, ratio := range s.Bars() {
		row := 16 - 4*n
		length := int(barLength * ratio)
		if length == 0 {
			continue
		}
		rect := image.Rect(0, row-1, length, row+1).Intersect(img.Bounds())
		draw.Draw(img, rect, image.NewUniform(colors[n]), image.Point{}, draw.Over)
	}

	return FlipVertical(img)
}

func ring(img *image.RGBA, b Blip, c color.RGBA) {
	outer := math.Floor(b.Radius * ringScale)
	if outer < 1 {
		return
	}
	width := math.Max(1, math.Ceil(math.Floor(b.Radius*ringWeight)))
	inner := math.Max(0, outer-width)

	bounds := img.Bounds()
	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	circle(r, b.X, b.Y, outer, false)
	if inner > 0 {
		circle(r, b.X, b.Y, inner, true)
	}
	r.Draw(img, bounds, image.NewUniform(c), image.Point{})
}

// circle adds a polygonal circle to the path. Reversed circles cut holes.
func circle(r *vector.Rasterizer, cx, cy, radius float64, reverse bool) {
	const segments = 32
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		if reverse {
			a = -a
		}
		x := float32(cx + radius*math.Cos(a))
		y := float32(cy + radius*math.Sin(a))
		if i == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
}

// FlipVertical mirrors the image along the horizontal axis.
func FlipVertical(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		dstStart := (b.Dy() - 1 - y) * dst.Stride
		copy(dst.Pix[dstStart:dstStart+b.Dx()*4], srcRow)
	}
	return dst
}

// Tensor scales the image to h x w and returns its pixels as an (h, w, 3)
// uint8 tensor. Consumers normalise to [0, 1] themselves.
func Tensor(img image.Image, h, w int) *tensor.Dense {
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	data := make([]uint8, h*w*Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := scaled.Pix[y*scaled.Stride+x*4:]
			copy(data[(y*w+x)*Channels:], p[:Channels])
		}
	}
	return tensor.New(tensor.WithShape(h, w, Channels), tensor.WithBacking(data))
}

// Preview returns an upscaled copy for viewing.
func Preview(img image.Image, scale int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
