package convert

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/modconv/pdx"
)

func writeBMP(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestConvertHeightmap(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range src.Pix {
		src.Pix[i] = 127
	}
	curve, err := ParseToneCurve("0 0 0.5 0.25 1 1")
	if err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(t.TempDir(), "map_data", "heightmap.png")
	tr := Transform{Destination: Dimensions{6, 3}, Scale: 1, Offset: Offset{X: 1}, ToneCurve: curve}

	if err := (RasterConverter{}).ConvertHeightmap(context.Background(), writeBMP(t, src), dst, tr); err != nil {
		t.Fatalf("ConvertHeightmap() failed: %v", err)
	}
	out := readPNG(t, dst)
	if out.Bounds() != image.Rect(0, 0, 6, 3) {
		t.Fatalf("Expected a 6x3 heightmap, got %v", out.Bounds())
	}

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0},
		{1, 0, 63},
		{4, 1, 63},
		{5, 0, 0},
		{2, 2, 0},
	}
	for _, tt := range tests {
		got := color.GrayModel.Convert(out.At(tt.x, tt.y)).(color.Gray).Y
		if got != tt.want {
			t.Errorf("pixel (%d,%d): expected %d, got %d", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestConvertProvinces(t *testing.T) {
	colors := [2][2]color.RGBA{
		{{10, 20, 30, 255}, {11, 21, 31, 255}},
		{{12, 22, 32, 255}, {13, 23, 33, 255}},
	}
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, colors[y][x])
		}
	}
	dst := filepath.Join(t.TempDir(), "provinces.png")
	tr := Transform{Destination: Dimensions{5, 5}, Scale: 2}

	if err := (RasterConverter{}).ConvertProvinces(context.Background(), writeBMP(t, src), dst, tr); err != nil {
		t.Fatalf("ConvertProvinces() failed: %v", err)
	}
	out := readPNG(t, dst)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, colors[0][0]},
		{1, 1, colors[0][0]},
		{3, 0, colors[0][1]},
		{1, 3, colors[1][0]},
		{3, 3, colors[1][1]},
		{4, 0, color.RGBA{0, 0, 0, 255}},
		{0, 4, color.RGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := rgba(out.At(tt.x, tt.y)); got != tt.want {
			t.Errorf("pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestConvertRivers(t *testing.T) {
	river := color.RGBA{0, 225, 255, 255}
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{0, 255, 0, 255})
	src.SetRGBA(1, 0, river)
	dst := filepath.Join(t.TempDir(), "rivers.png")
	tr := Transform{Destination: Dimensions{2, 2}, Scale: 1, Offset: Offset{X: -1}}

	if err := (RasterConverter{}).ConvertRivers(context.Background(), writeBMP(t, src), dst, tr); err != nil {
		t.Fatalf("ConvertRivers() failed: %v", err)
	}
	out := readPNG(t, dst)
	if got := rgba(out.At(0, 0)); got != river {
		t.Errorf("Expected river pixel shifted into view, got %v", got)
	}
	for _, p := range []image.Point{{1, 0}, {0, 1}, {1, 1}} {
		if got := rgba(out.At(p.X, p.Y)); got != riverLand {
			t.Errorf("pixel %v: expected land, got %v", p, got)
		}
	}
}

func TestRasterConverter_Errors(t *testing.T) {
	tr := Transform{Destination: Dimensions{2, 2}, Scale: 1}
	dst := filepath.Join(t.TempDir(), "out.png")

	err := (RasterConverter{}).ConvertProvinces(context.Background(), "missing.bmp", dst, tr)
	if !errors.Is(err, pdx.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.bmp")
	if err := os.WriteFile(bad, []byte("not a bitmap"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (RasterConverter{}).ConvertHeightmap(context.Background(), bad, dst, tr); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("Expected a decode error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (RasterConverter{}).ConvertRivers(ctx, bad, dst, tr); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestConvert_MissingMaps(t *testing.T) {
	cfg := &Config{SourceDir: "../testdata/ck2mod", OutputDir: t.TempDir(), ModName: "m", Workers: 2}
	s, err := Convert(context.Background(), cfg, DirScaffolder{}, RasterConverter{})
	if err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}
	var stages []string
	for _, p := range s.Problems {
		for _, st := range []string{"heightmap", "provinces", "rivers"} {
			if strings.HasPrefix(p, st+":") {
				stages = append(stages, st)
			}
		}
	}
	if len(stages) != 3 {
		t.Errorf("Expected all three missing maps reported, got %v", s.Problems)
	}
}
