package minimap

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestBarsClamped(t *testing.T) {
	s := Snapshot{Minerals: 2400, Vespene: 300, SupplyLeft: 5, SupplyCap: 0, Workers: 30}
	bars := s.Bars()
	want := [5]float64{1, 0.25, 1, 0, 0}
	for i := range want {
		if bars[i] != want[i] {
			t.Errorf("bar %d = %v, want %v", i, bars[i], want[i])
		}
	}
}

func TestBarsMilitaryShare(t *testing.T) {
	s := Snapshot{SupplyLeft: 10, SupplyCap: 50, Workers: 10}
	if got := s.Bars()[4]; got != 0.75 {
		t.Errorf("military share = %v, want 0.75", got)
	}
}

func TestRenderFlipsAndDraws(t *testing.T) {
	s := &Snapshot{
		Width:    80,
		Height:   100,
		Own:      []Blip{{X: 50, Y: 30, Radius: 1}},
		Enemy:    []Blip{{X: 20, Y: 70, Radius: 1}},
		Minerals: 600,
	}
	img := Render(s)
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 100 {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	own := img.RGBAAt(57, 99-30)
	if own.R < 128 || own.B != 0 {
		t.Errorf("own ring pixel = %v, want red", own)
	}
	if c := img.RGBAAt(50, 99-30); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("ring center = %v, want black", c)
	}
	enemy := img.RGBAAt(27, 99-70)
	if enemy.B < 128 || enemy.R != 0 {
		t.Errorf("enemy ring pixel = %v, want blue", enemy)
	}

	if c := img.RGBAAt(5, 99-16); c != MineralsColor {
		t.Errorf("minerals bar = %v, want %v", c, MineralsColor)
	}
	if c := img.RGBAAt(25, 99-16); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("past minerals bar = %v, want black", c)
	}
}

func TestFlipVertical(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Pix[0] = 200
	flipped := FlipVertical(img)
	if flipped.RGBAAt(0, 2).R != 200 || flipped.RGBAAt(0, 0).R != 0 {
		t.Error("first row should move to the bottom")
	}
}

func TestTensorShape(t *testing.T) {
	img := Render(&Snapshot{Width: 76, Height: 92, Own: []Blip{{X: 30, Y: 30, Radius: 2}}, Minerals: 1200})
	tt := Tensor(img, InputHeight, InputWidth)
	shape := tt.Shape()
	if len(shape) != 3 || shape[0] != InputHeight || shape[1] != InputWidth || shape[2] != Channels {
		t.Fatalf("shape = %v", shape)
	}
	data := tt.Data().([]uint8)
	if len(data) != InputHeight*InputWidth*Channels {
		t.Fatalf("len = %d", len(data))
	}
	var lit int
	for _, v := range data {
		if v > 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("expected some non-black pixels")
	}
}

func TestEncodePNG(t *testing.T) {
	img := Preview(Render(&Snapshot{Width: 10, Height: 12}), 2)
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 24 {
		t.Errorf("preview bounds = %v", decoded.Bounds())
	}
}
