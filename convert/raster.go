package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/modconv/pdx"
)

// riverLand is the background color of a river map.
var riverLand = color.RGBA{255, 255, 255, 255}

// RasterConverter converts the BMP maps of a CK2 mod into PNG maps of the
// destination size. Each source image is scaled by Transform.Scale and
// placed at Transform.Offset; pixels outside it are filled.
type RasterConverter struct{}

// ConvertHeightmap scales the topology map smoothly into 8-bit gray and
// applies the tone curve to the whole canvas. The fill is black.
func (RasterConverter) ConvertHeightmap(ctx context.Context, src, dst string, t Transform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := readBMP(src)
	if err != nil {
		return err
	}
	canvas := image.NewGray(image.Rect(0, 0, t.Destination.Width, t.Destination.Height))
	place(canvas, img, t, draw.CatmullRom)

	lut := t.ToneCurve.LUT()
	for i, v := range canvas.Pix {
		canvas.Pix[i] = lut[v]
	}
	return writePNG(dst, canvas)
}

// ConvertProvinces scales the province map with nearest-neighbor sampling so
// that every pixel keeps an exact province color. The fill is black.
func (RasterConverter) ConvertProvinces(ctx context.Context, src, dst string, t Transform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := readBMP(src)
	if err != nil {
		return err
	}
	canvas := image.NewRGBA(image.Rect(0, 0, t.Destination.Width, t.Destination.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)
	place(canvas, img, t, draw.NearestNeighbor)
	return writePNG(dst, canvas)
}

// ConvertRivers scales the river map with nearest-neighbor sampling on a
// land-colored canvas, keeping the source, tributary and split markers.
// Rivers are resampled as pixels, so scales above 1 widen them.
func (RasterConverter) ConvertRivers(ctx context.Context, src, dst string, t Transform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := readBMP(src)
	if err != nil {
		return err
	}
	canvas := image.NewRGBA(image.Rect(0, 0, t.Destination.Width, t.Destination.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(riverLand), image.Point{}, draw.Src)
	place(canvas, img, t, draw.NearestNeighbor)
	return writePNG(dst, canvas)
}

// place scales src by t.Scale onto dst at t.Offset. Parts falling outside
// dst are clipped.
func place(dst draw.Image, src image.Image, t Transform, scaler draw.Scaler) {
	b := src.Bounds()
	w := int(float64(b.Dx()) * t.Scale)
	h := int(float64(b.Dy()) * t.Scale)
	dr := image.Rect(t.Offset.X, t.Offset.Y, t.Offset.X+w, t.Offset.Y+h)
	scaler.Scale(dst, dr, src, b, draw.Src, nil)
}

func readBMP(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, pdx.ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
