package signature

import (
	"image"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const typedFontSize = 48

var (
	typedFontOnce sync.Once
	typedFont     *opentype.Font
	typedFontErr  error
)

func cursiveFace() (font.Face, error) {
	typedFontOnce.Do(func() {
		typedFont, typedFontErr = opentype.Parse(goitalic.TTF)
	})
	if typedFontErr != nil {
		return nil, typedFontErr
	}
	return opentype.NewFace(typedFont, &opentype.FaceOptions{
		Size:    typedFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RenderTyped draws text in the italic face on a transparent canvas-sized
// image, centred, and returns it as PNG.
func RenderTyped(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	face, err := cursiveFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewNRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	d := &font.Drawer{Dst: img, Src: image.NewUniform(inkColor), Face: face}

	width := d.MeasureString(text).Ceil()
	x := (CanvasWidth - width) / 2
	if x < 0 {
		x = 0
	}
	m := face.Metrics()
	y := (CanvasHeight + m.Ascent.Ceil() - m.Descent.Ceil()) / 2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)

	return encodePNG(img)
}
