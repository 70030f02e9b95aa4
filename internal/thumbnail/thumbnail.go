// Package thumbnail turns raw minimap images into trimmed PNG thumbnails.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"github.com/pable/zeratul/internal/slug"
)

// Threshold is how far (0-255) a channel must differ from the background
// colour for the pixel to count as content.
const Threshold = 100

// ErrEmptyName is returned when a map name slugifies to nothing.
var ErrEmptyName = errors.New("map name has no usable characters")

// Decode reads PNG, JPEG, GIF or TGA data. Minimaps inside map archives are TGA.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, tgaErr := tga.Decode(bytes.NewReader(data))
	if tgaErr != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func rgba8(img image.Image, x, y int) [4]uint32 {
	r, g, b, a := img.At(x, y).RGBA()
	return [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
}

// BoundingBox returns the smallest rectangle holding every pixel that differs
// from the top-left pixel by more than Threshold in any channel. ok is false
// for an image with no such pixel.
func BoundingBox(img image.Image) (box image.Rectangle, ok bool) {
	b := img.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}
	bg := rgba8(img, b.Min.X, b.Min.Y)

	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !differs(rgba8(img, x, y), bg) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func differs(p, bg [4]uint32) bool {
	for i := range p {
		d := int(p[i]) - int(bg[i])
		if d < 0 {
			d = -d
		}
		if d > Threshold {
			return true
		}
	}
	return false
}

// Trim crops img to its bounding box, or returns it unchanged when the image
// is uniform.
func Trim(img image.Image) image.Image {
	box, ok := BoundingBox(img)
	if !ok || box == img.Bounds() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(out, out.Bounds(), img, box.Min, draw.Src)
	return out
}

// Fit scales img down so neither side exceeds maxSize. maxSize <= 0 disables scaling.
func Fit(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Over, nil)
	return out
}

// Process decodes data, trims the background border, optionally scales and
// re-encodes as PNG.
func Process(data []byte, maxSize int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	img = Fit(Trim(img), maxSize)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer stores processed thumbnails in a directory.
type Writer struct {
	Dir     string
	MaxSize int
}

// Filename is the thumbnail file name for a map.
func Filename(mapName string) string {
	return slug.Make(mapName) + ".png"
}

// Save processes data and writes it as <slug>.png under Dir. It returns the
// file name, relative to Dir.
func (w *Writer) Save(mapName string, data []byte) (string, error) {
	if slug.Make(mapName) == "" {
		return "", ErrEmptyName
	}
	out, err := Process(data, w.MaxSize)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("create thumbnail dir: %w", err)
	}
	name := Filename(mapName)
	if err := os.WriteFile(filepath.Join(w.Dir, name), out, 0644); err != nil {
		return "", fmt.Errorf("write thumbnail: %w", err)
	}
	return name, nil
}

// Remove deletes a file previously returned by Save.
func (w *Writer) Remove(name string) error {
	if err := os.Remove(filepath.Join(w.Dir, filepath.Base(name))); err != nil {
		return fmt.Errorf("remove thumbnail: %w", err)
	}
	return nil
}
