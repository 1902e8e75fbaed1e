// Package watermark draws ownership marks onto a raster image: one large
// centered mark, a small corner mark and a grid of marks rotated -30
// degrees. Output is JPEG at a fixed quality and is the same for the same
// input.
package watermark

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	// Decoders for the formats the portal stores.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

const (
	DefaultText = "© Portfolio"
	Quality     = 90

	minPrimarySize  = 24
	minCornerSize   = 14
	minDiagonalSize = 18

	gridAngle = -30
)

var ErrDecode = errors.New("watermark: cannot decode image")

type Renderer struct {
	text string
	font *opentype.Font
	// grid toggles the rotated background layer.
	grid bool
}

// New returns a renderer stamping text. An empty text uses DefaultText.
func New(text string) (*Renderer, error) {
	if text == "" {
		text = DefaultText
	}
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("watermark: parse font: %w", err)
	}
	return &Renderer{text: text, font: f, grid: true}, nil
}

// FontSizes returns the primary, corner and diagonal font sizes for an
// image of the given width.
func FontSizes(width int) (primary, corner, diagonal float64) {
	w := float64(width)
	primary = math.Max(minPrimarySize, w/12)
	corner = math.Max(minCornerSize, w/50)
	diagonal = math.Max(minDiagonalSize, w/30)
	return primary, corner, diagonal
}

func (r *Renderer) face(size float64) (font.Face, error) {
	return opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Render decodes src, draws the marks and encodes the result as JPEG.
// Undecodable input returns ErrDecode.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	dc := gg.NewContextForImage(img)
	primary, corner, diagonal := FontSizes(dc.Width())

	if r.grid {
		if err := r.drawGrid(dc, diagonal); err != nil {
			return nil, err
		}
	}
	if err := r.drawCentered(dc, primary); err != nil {
		return nil, err
	}
	if err := r.drawCorner(dc, corner); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("watermark: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawCentered(dc *gg.Context, size float64) error {
	face, err := r.face(size)
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetFontFace(face)
	cx, cy := float64(dc.Width())/2, float64(dc.Height())/2

	dc.SetRGBA(0, 0, 0, 0.25)
	dc.DrawStringAnchored(r.text, cx+2, cy+2, 0.5, 0.5)
	dc.SetRGBA(1, 1, 1, 0.45)
	dc.DrawStringAnchored(r.text, cx, cy, 0.5, 0.5)
	return nil
}

func (r *Renderer) drawCorner(dc *gg.Context, size float64) error {
	face, err := r.face(size)
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetFontFace(face)
	pad := size
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawStringAnchored(r.text, float64(dc.Width())-pad, float64(dc.Height())-pad, 1, 0)
	return nil
}

// drawGrid tiles the mark over a plane rotated about the image center,
// large enough to cover every corner after rotation.
func (r *Renderer) drawGrid(dc *gg.Context, size float64) error {
	face, err := r.face(size)
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetFontFace(face)
	w, h := float64(dc.Width()), float64(dc.Height())
	tw, _ := dc.MeasureString(r.text)
	stepX := tw + size*3
	stepY := size * 5
	reach := math.Hypot(w, h)

	dc.Push()
	dc.RotateAbout(gg.Radians(gridAngle), w/2, h/2)
	dc.SetRGBA(1, 1, 1, 0.15)
	row := 0
	for y := h/2 - reach; y <= h/2+reach; y += stepY {
		// Alternate rows are offset by half a step.
		offset := 0.0
		if row%2 == 1 {
			offset = stepX / 2
		}
		for x := w/2 - reach - offset; x <= w/2+reach; x += stepX {
			dc.DrawString(r.text, x, y)
		}
		row++
	}
	dc.Pop()
	return nil
}
