// Package signature captures one raster signature image from a drawn canvas,
// typed text or an uploaded file, and uploads it with a timed progress
// indicator.
package signature

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

const (
	CanvasWidth  = 600
	CanvasHeight = 200
	penRadius    = 2

	// MaxStrokePoints caps the points one Draw may replay.
	MaxStrokePoints = 5000
)

var inkColor = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}

// Point is a pointer position in canvas pixels.
type Point struct {
	X int `json:"x" validate:"min=0,max=599"`
	Y int `json:"y" validate:"min=0,max=199"`
}

func (p Point) inside() bool {
	return p.X >= 0 && p.X < CanvasWidth && p.Y >= 0 && p.Y < CanvasHeight
}

// Canvas is a fixed-size transparent bitmap receiving pointer strokes.
type Canvas struct {
	img     *image.NRGBA
	drawing bool
	last    Point
}

func NewCanvas() *Canvas {
	return &Canvas{img: image.NewNRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))}
}

// PointerDown starts a stroke and inks the starting point.
func (c *Canvas) PointerDown(p Point) {
	c.drawing = true
	c.last = p
	c.dot(p)
}

// PointerMove appends a segment to the current stroke. Moves without a
// preceding PointerDown are ignored.
func (c *Canvas) PointerMove(p Point) {
	if !c.drawing {
		return
	}
	c.line(c.last, p)
	c.last = p
}

func (c *Canvas) PointerUp() { c.drawing = false }

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
	c.drawing = false
}

// IsBlank reports whether no pixel has any opacity.
func (c *Canvas) IsBlank() bool {
	for i := 3; i < len(c.img.Pix); i += 4 {
		if c.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Stroke replays one pointer-down/move/up sequence.
func (c *Canvas) Stroke(points []Point) {
	if len(points) == 0 {
		return
	}
	c.PointerDown(points[0])
	for _, p := range points[1:] {
		c.PointerMove(p)
	}
	c.PointerUp()
}

func (c *Canvas) PNG() ([]byte, error) {
	return encodePNG(c.img)
}

// line draws with Bresenham, stamping the pen at every step. The segment is
// clipped to the inkable area first so the walk never leaves the canvas.
func (c *Canvas) line(a, b Point) {
	a, b, ok := clip(a, b)
	if !ok {
		return
	}
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		c.dot(Point{x, y})
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// clip trims a→b to the canvas grown by the pen radius (Liang–Barsky).
func clip(a, b Point) (Point, Point, bool) {
	lo := float64(-penRadius)
	maxX, maxY := float64(CanvasWidth-1+penRadius), float64(CanvasHeight-1+penRadius)
	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-x0, float64(b.Y)-y0

	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - lo},
		{dx, maxX - x0},
		{-dy, y0 - lo},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = min(t1, r)
		}
	}
	at := func(t float64) Point {
		return Point{X: int(math.Round(x0 + t*dx)), Y: int(math.Round(y0 + t*dy))}
	}
	return at(t0), at(t1), true
}

func (c *Canvas) dot(p Point) {
	if p.X < -penRadius || p.X > CanvasWidth+penRadius || p.Y < -penRadius || p.Y > CanvasHeight+penRadius {
		return
	}
	for y := p.Y - penRadius; y <= p.Y+penRadius; y++ {
		for x := p.X - penRadius; x <= p.X+penRadius; x++ {
			if (x-p.X)*(x-p.X)+(y-p.Y)*(y-p.Y) > penRadius*penRadius {
				continue
			}
			if image.Pt(x, y).In(c.img.Rect) {
				c.img.SetNRGBA(x, y, inkColor)
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
