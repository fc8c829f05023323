package signature

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

type Mode string

const (
	ModeDraw   Mode = "draw"
	ModeType   Mode = "type"
	ModeUpload Mode = "upload"
)

func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDraw, ModeType, ModeUpload:
		return m, true
	}
	return "", false
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusCapturing Status = "capturing"
	StatusUploading Status = "uploading"
	StatusUploaded  Status = "uploaded"
	StatusError     Status = "error"
)

const (
	progressTick = 300 * time.Millisecond
	progressStep = 10
	progressCap  = 90
)

// Uploader sends the captured image and returns its hosted URL, if any.
type Uploader func(ctx context.Context, f dcarbon.File) (string, error)

// Snapshot is the externally visible widget state.
type Snapshot struct {
	Mode     Mode   `json:"mode"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Widget is the mode × status state machine of one signature capture.
type Widget struct {
	mu         sync.Mutex
	tick       time.Duration
	mode       Mode
	status     Status
	canvas     *Canvas
	text       string
	upload     []byte
	uploadType string
	progress   int
	errMsg     string
	url        string
}

type Option func(*Widget)

// WithProgressTick overrides the progress timer interval.
func WithProgressTick(d time.Duration) Option {
	return func(w *Widget) { w.tick = d }
}

func NewWidget(opts ...Option) *Widget {
	w := &Widget{
		tick:   progressTick,
		mode:   ModeDraw,
		status: StatusIdle,
		canvas: NewCanvas(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Widget) snapshotLocked() Snapshot {
	return Snapshot{Mode: w.mode, Status: w.status, Progress: w.progress, Error: w.errMsg, URL: w.url}
}

// SetMode switches input mode. Captured input of other modes is kept.
func (w *Widget) SetMode(m Mode) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusUploading {
		return ErrBusy
	}
	w.mode = m
	w.status = StatusIdle
	w.errMsg = ""
	return nil
}

// Draw replays strokes onto the canvas. Points outside the canvas or more
// than MaxStrokePoints in total are rejected before any ink is laid.
func (w *Widget) Draw(strokes [][]Point) error {
	if err := checkStrokes(strokes); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusUploading {
		return ErrBusy
	}
	w.mode = ModeDraw
	for _, s := range strokes {
		w.canvas.Stroke(s)
	}
	w.status = StatusCapturing
	return nil
}

func checkStrokes(strokes [][]Point) error {
	n := 0
	for _, s := range strokes {
		n += len(s)
		if n > MaxStrokePoints {
			return utils.NewValidationError("strokes", MsgTooManyPoints)
		}
		for _, p := range s {
			if !p.inside() {
				return utils.NewValidationError("strokes", MsgStrokeOutside)
			}
		}
	}
	return nil
}

func (w *Widget) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusUploading {
		return ErrBusy
	}
	w.canvas.Clear()
	w.text = ""
	w.upload, w.uploadType = nil, ""
	w.status = StatusIdle
	w.errMsg = ""
	w.progress = 0
	return nil
}

func (w *Widget) Type(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusUploading {
		return ErrBusy
	}
	w.mode = ModeType
	w.text = text
	w.status = StatusCapturing
	return nil
}

// Upload stores an image file after sniffing its type and checking its size.
func (w *Widget) Upload(data []byte) error {
	ct, err := DetectImage(data)
	if err != nil {
		return validationFor(err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusUploading {
		return ErrBusy
	}
	w.mode = ModeUpload
	w.upload = append([]byte(nil), data...)
	w.uploadType = ct
	w.status = StatusCapturing
	return nil
}

// Capture produces the image for the current mode, or a validation error.
func (w *Widget) Capture() (dcarbon.File, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.captureLocked()
}

func (w *Widget) captureLocked() (dcarbon.File, error) {
	switch w.mode {
	case ModeType:
		if strings.TrimSpace(w.text) == "" {
			return dcarbon.File{}, utils.NewValidationError("signature", MsgTypeRequired)
		}
		data, err := RenderTyped(w.text)
		if err != nil {
			return dcarbon.File{}, err
		}
		return dcarbon.File{Filename: "signature.png", ContentType: "image/png", Data: data}, nil
	case ModeUpload:
		if len(w.upload) == 0 {
			return dcarbon.File{}, utils.NewValidationError("signature", MsgUploadRequired)
		}
		return dcarbon.File{
			Filename:    "signature" + extensionFor(w.uploadType),
			ContentType: w.uploadType,
			Data:        append([]byte(nil), w.upload...),
		}, nil
	default:
		if w.canvas.IsBlank() {
			return dcarbon.File{}, utils.NewValidationError("signature", MsgDrawRequired)
		}
		data, err := w.canvas.PNG()
		if err != nil {
			return dcarbon.File{}, err
		}
		return dcarbon.File{Filename: "signature.png", ContentType: "image/png", Data: data}, nil
	}
}

// Submit captures the image and uploads it once. Progress advances on a
// timer up to progressCap and is forced to 100 when the upload returns. On
// failure the widget stays in StatusError with the server's message so the
// user can retry.
func (w *Widget) Submit(ctx context.Context, upload Uploader) (string, error) {
	w.mu.Lock()
	if w.status == StatusUploading {
		w.mu.Unlock()
		return "", ErrBusy
	}
	file, err := w.captureLocked()
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.status = StatusUploading
	w.progress = 0
	w.errMsg = ""
	w.url = ""
	w.mu.Unlock()

	tickCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go w.runProgress(tickCtx, done)

	url, err := upload(ctx, file)

	stop()
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	w.progress = 100
	if err != nil {
		w.status = StatusError
		w.errMsg = dcarbon.UserMessage(err)
		return "", err
	}
	w.status = StatusUploaded
	w.url = url
	return url, nil
}

func (w *Widget) runProgress(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(w.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.mu.Lock()
			if w.progress+progressStep <= progressCap {
				w.progress += progressStep
			} else {
				w.progress = progressCap
			}
			w.mu.Unlock()
		}
	}
}
