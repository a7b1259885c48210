// Package export turns a rendered smash into a downloadable artifact: a PNG
// still when there is no audio timeline, or an MJPEG+PCM AVI whose capture
// window exactly bounds the audio mix.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"log"
	"math"
	"sync"
	"time"

	"github.com/xob0t/GoSmash/pkg/audiomix"
	"github.com/xob0t/GoSmash/pkg/canvas"
	"github.com/xob0t/GoSmash/pkg/catalog"
	"github.com/xob0t/GoSmash/pkg/engine"
	"github.com/xob0t/GoSmash/pkg/generator"
)

// State is the export machine state. The image-only path never leaves Idle;
// the video path walks Idle -> Capturing -> Finalizing -> Idle, detouring
// through Failed when the artifact does not pass muster.
type State int

const (
	Idle State = iota
	Capturing
	Finalizing
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Finalizing:
		return "finalizing"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrBusy rejects an export request while another one is in flight.
	ErrBusy = errors.New("export: another export is in flight")
	// ErrEmptyEncode reports a still-image encode that produced no payload.
	ErrEmptyEncode = errors.New("export: image encode produced no payload")
	// ErrUndersizedArtifact reports a recording below the size threshold.
	// Empty-container recordings are a known failure mode that surfaces no
	// error of its own, so success is classified by size after the fact.
	ErrUndersizedArtifact = errors.New("export: recorded artifact below size threshold")
)

// Capture pacing. The chunk interval matches chunked recorder delivery; the
// flush interval guards against recorders that buffer indefinitely unless
// poked.
const (
	DefaultFPS           = 30
	DefaultChunkInterval = 200 * time.Millisecond
	DefaultFlushInterval = 500 * time.Millisecond
	DefaultStartLead     = 30 * time.Millisecond

	// DefaultMinArtifactBytes is a heuristic, not a law; tune per encoder.
	DefaultMinArtifactBytes = 4096

	jpegQuality = 90
)

// StopDelay returns how long after capture start the stop timer fires: the
// timeline duration plus a 0.6 s trailing pad for the scheduling lead and
// fade-out tail, but never less than 1.5 s.
func StopDelay(totalDuration float64) float64 {
	return math.Max(1.5, totalDuration+0.6)
}

// Options tunes an Exporter. Zero values select the defaults above.
type Options struct {
	FPS              int
	ChunkInterval    time.Duration
	FlushInterval    time.Duration
	StartLead        time.Duration
	MinArtifactBytes int
}

// Artifact is one finished export.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

// Exporter drives the capture state machine. Only one export may be in
// flight; a second request while not Idle is rejected with ErrBusy.
type Exporter struct {
	opts Options

	mu    sync.Mutex
	state State
}

// NewExporter creates an exporter with the given options.
func NewExporter(opts Options) *Exporter {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.ChunkInterval <= 0 {
		opts.ChunkInterval = DefaultChunkInterval
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.StartLead <= 0 {
		opts.StartLead = DefaultStartLead
	}
	if opts.MinArtifactBytes <= 0 {
		opts.MinArtifactBytes = DefaultMinArtifactBytes
	}
	return &Exporter{opts: opts}
}

// State returns the current machine state.
func (e *Exporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// transition is the single mutation point of the state machine.
func (e *Exporter) transition(to State) error {
	legal := false
	switch e.state {
	case Idle:
		legal = to == Capturing
	case Capturing:
		legal = to == Finalizing || to == Failed
	case Finalizing:
		legal = to == Idle || to == Failed
	case Failed:
		legal = to == Idle
	}
	if !legal {
		return fmt.Errorf("export: illegal transition %s -> %s", e.state, to)
	}
	e.state = to
	return nil
}

// Export produces the artifact for a rendered surface. An empty timeline
// takes the image-only path: a single synchronous PNG encode with no state
// machine involved. Otherwise the video path captures the surface for
// StopDelay(total) seconds at the configured frame rate, mixes the timeline
// into the capture window, and muxes both into an AVI.
func (e *Exporter) Export(surf *canvas.Canvas, tl engine.Timeline, cat *catalog.Catalog, seed string) (*Artifact, error) {
	if tl.Empty() {
		return exportStill(surf, seed)
	}

	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	if err := e.transition(Capturing); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	art, err := e.captureVideo(surf, tl, cat, seed)

	e.mu.Lock()
	if e.state != Idle {
		if err != nil && e.state != Failed {
			e.transition(Failed)
		}
		e.transition(Idle)
	}
	e.mu.Unlock()
	return art, err
}

func exportStill(surf *canvas.Canvas, seed string) (*Artifact, error) {
	data, ok := surf.EncodePNG()
	if !ok {
		return nil, ErrEmptyEncode
	}
	return &Artifact{
		Name: fmt.Sprintf("smash-%s.png", seed),
		MIME: "image/png",
		Data: data,
	}, nil
}

func (e *Exporter) captureVideo(surf *canvas.Canvas, tl engine.Timeline, cat *catalog.Catalog, seed string) (*Artifact, error) {
	window := StopDelay(tl.TotalDuration())
	frameCount := int(math.Ceil(window * float64(e.opts.FPS)))

	// The whole timeline is realized against the recordable sink before any
	// capture begins; no slice plays against a partially built mix.
	sink := audiomix.NewCaptureSink(audiomix.MixFormat)
	mix, err := audiomix.Build(sink, tl, cat, e.opts.StartLead)
	if err != nil {
		return nil, err
	}
	// Playback handles are released on every exit path; double-stop is benign.
	defer mix.Stop()

	pcm := sink.RenderPCM(time.Duration(window * float64(time.Second)))

	rec := newRecorder(e.opts.FPS, e.opts.ChunkInterval, e.opts.FlushInterval)
	var jbuf bytes.Buffer
	for i := 0; i < frameCount; i++ {
		// Keep the captured frames continuously changing; some recorders
		// stall on a perfectly static source.
		surf.DrawMarker(i)

		jbuf.Reset()
		if err := jpeg.Encode(&jbuf, surf.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i, err)
		}
		rec.addFrame(append([]byte(nil), jbuf.Bytes()...))
	}

	e.mu.Lock()
	if err := e.transition(Finalizing); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	mix.Stop()
	frames := rec.assemble()

	var out bytes.Buffer
	side := surf.Side()
	format := audiomix.MixFormat
	if err := generator.EncodeAVI(&out, frames, side, side, e.opts.FPS,
		pcm, int(format.SampleRate), format.NumChannels); err != nil {
		return nil, fmt.Errorf("mux: %w", err)
	}

	if out.Len() < e.opts.MinArtifactBytes {
		log.Printf("export: artifact %d bytes below threshold %d", out.Len(), e.opts.MinArtifactBytes)
		return nil, ErrUndersizedArtifact
	}

	return &Artifact{
		Name: fmt.Sprintf("smash-%s.avi", seed),
		MIME: "video/x-msvideo",
		Data: out.Bytes(),
	}, nil
}
