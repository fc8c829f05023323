package signature

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

func okUploader(url string) Uploader {
	return func(context.Context, dcarbon.File) (string, error) { return url, nil }
}

func TestCanvas_BlankAndDrawn(t *testing.T) {
	c := NewCanvas()
	assert.True(t, c.IsBlank())

	c.PointerMove(Point{10, 10}) // no pointer down yet
	assert.True(t, c.IsBlank())

	c.Stroke([]Point{{10, 10}, {50, 40}, {120, 35}})
	assert.False(t, c.IsBlank())

	c.Clear()
	assert.True(t, c.IsBlank())

	// out-of-bounds strokes are clipped, not panics
	c.Stroke([]Point{{-50, -50}, {-10, -10}})
	assert.True(t, c.IsBlank())
}

func TestCanvas_FarPointsAreClipped(t *testing.T) {
	c := NewCanvas()
	done := make(chan struct{})
	go func() {
		c.Stroke([]Point{{300, 100}, {math.MaxInt / 2, math.MaxInt / 2}})
		c.Stroke([]Point{{math.MinInt / 2, 50}, {math.MaxInt / 2, 50}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stroke did not finish")
	}
	assert.False(t, c.IsBlank())
}

func TestDraw_RejectsOversizedStrokes(t *testing.T) {
	cases := []struct {
		name    string
		strokes [][]Point
		msg     string
	}{
		{"outside canvas", [][]Point{{{10, 10}, {1 << 40, 1 << 40}}}, MsgStrokeOutside},
		{"negative", [][]Point{{{-1, 10}}}, MsgStrokeOutside},
		{"right edge", [][]Point{{{CanvasWidth, 0}}}, MsgStrokeOutside},
		{"too many points", [][]Point{make([]Point, MaxStrokePoints/2), make([]Point, MaxStrokePoints/2+1)}, MsgTooManyPoints},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWidget()
			err := w.Draw(tc.strokes)

			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "strokes", verr.Fields[0].Field)
			assert.Equal(t, tc.msg, verr.Fields[0].Message)
			assert.True(t, w.canvas.IsBlank())
			assert.Equal(t, StatusIdle, w.Snapshot().Status)
		})
	}

	w := NewWidget()
	require.NoError(t, w.Draw([][]Point{{{0, 0}, {CanvasWidth - 1, CanvasHeight - 1}}}))
	assert.False(t, w.canvas.IsBlank())
}

func TestSubmit_BlankCanvasRejected(t *testing.T) {
	w := NewWidget()
	called := false
	_, err := w.Submit(context.Background(), func(context.Context, dcarbon.File) (string, error) {
		called = true
		return "", nil
	})

	var verr *utils.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgDrawRequired, verr.Error())
	assert.False(t, called)
	assert.NotEqual(t, StatusUploading, w.Snapshot().Status)
}

func TestSubmit_OneDrawnPixelSucceeds(t *testing.T) {
	w := NewWidget(WithProgressTick(time.Millisecond))
	require.NoError(t, w.Draw([][]Point{{{300, 100}}}))

	var sent dcarbon.File
	url, err := w.Submit(context.Background(), func(_ context.Context, f dcarbon.File) (string, error) {
		sent = f
		return "https://cdn.example/sig.png", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/sig.png", url)

	img, err := png.Decode(bytes.NewReader(sent.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())
	_, _, _, a := img.At(300, 100).RGBA()
	assert.NotZero(t, a)

	snap := w.Snapshot()
	assert.Equal(t, StatusUploaded, snap.Status)
	assert.Equal(t, 100, snap.Progress)
}

func TestSubmit_TypedMode(t *testing.T) {
	w := NewWidget()
	require.NoError(t, w.Type("   "))
	_, err := w.Submit(context.Background(), okUploader(""))
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgTypeRequired, verr.Error())

	require.NoError(t, w.Type("Ada Lovelace"))
	f, err := w.Capture()
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)

	img, err := png.Decode(bytes.NewReader(f.Data))
	require.NoError(t, err)
	c := &Canvas{img: toNRGBA(img)}
	assert.False(t, c.IsBlank())
}

func TestUpload_Validation(t *testing.T) {
	w := NewWidget()

	err := w.Upload([]byte("just some text, not an image"))
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgUploadNotImage, verr.Error())

	big := make([]byte, MaxUploadBytes+1)
	copy(big, pngBytes(t))
	err = w.Upload(big)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgUploadTooLarge, verr.Error())

	require.NoError(t, w.SetMode(ModeUpload))
	_, err = w.Capture()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgUploadRequired, verr.Error())

	require.NoError(t, w.Upload(pngBytes(t)))
	f, err := w.Capture()
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, "signature.png", f.Filename)
}

func TestSubmit_ProgressCapsAtNinetyThenHundred(t *testing.T) {
	w := NewWidget(WithProgressTick(time.Millisecond))
	require.NoError(t, w.Draw([][]Point{{{1, 1}, {5, 5}}}))

	release := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), func(ctx context.Context, _ dcarbon.File) (string, error) {
			<-release
			return "", nil
		})
		result <- err
	}()

	require.Eventually(t, func() bool { return w.Snapshot().Progress == progressCap }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	snap := w.Snapshot()
	assert.Equal(t, progressCap, snap.Progress)
	assert.Equal(t, StatusUploading, snap.Status)

	_, err := w.Submit(context.Background(), okUploader(""))
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-result)
	assert.Equal(t, 100, w.Snapshot().Progress)
}

func TestSubmit_FailureLeavesErrorForRetry(t *testing.T) {
	w := NewWidget(WithProgressTick(time.Millisecond))
	require.NoError(t, w.Draw([][]Point{{{1, 1}}}))

	_, err := w.Submit(context.Background(), func(context.Context, dcarbon.File) (string, error) {
		return "", &dcarbon.APIError{StatusCode: 413, Message: "File too large for storage"}
	})
	require.Error(t, err)
	snap := w.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "File too large for storage", snap.Error)
	assert.Equal(t, 100, snap.Progress)

	url, err := w.Submit(context.Background(), okUploader("https://cdn/ok.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/ok.png", url)
	assert.Empty(t, w.Snapshot().Error)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[3] = 0xff
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
