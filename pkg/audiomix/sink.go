// Package audiomix realizes audio timelines into scheduled, gain-enveloped
// playback events against an audio sink: the live speaker for preview, or an
// offline capture sink whose output is muxed into the exported video.
package audiomix

import (
	"encoding/binary"
	"time"

	"github.com/gopxl/beep/v2"
)

// MixFormat is the process-wide mix format: 44.1 kHz stereo, 16-bit on the
// wire. Ingestion resamples every source into it.
var MixFormat = beep.Format{
	SampleRate:  44100,
	NumChannels: 2,
	Precision:   2,
}

// Sink is an audio destination playback events are scheduled into. Lock and
// Unlock guard handle mutation while the sink may be streaming concurrently;
// offline sinks may no-op them.
type Sink interface {
	Format() beep.Format
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// CaptureSink is a recordable sink: scheduled events are mixed offline and
// drained into raw PCM for an exact capture window. The zero clock starts at
// the Build call, so a lead time plus slice offset maps directly to a sample
// position.
type CaptureSink struct {
	format beep.Format
	mixer  beep.Mixer
}

// NewCaptureSink creates a capture sink with the given format.
func NewCaptureSink(format beep.Format) *CaptureSink {
	return &CaptureSink{format: format}
}

func (c *CaptureSink) Format() beep.Format { return c.format }

// Play adds a streamer to the capture mix.
func (c *CaptureSink) Play(s beep.Streamer) { c.mixer.Add(s) }

// Lock and Unlock are no-ops: capture rendering is single-threaded.
func (c *CaptureSink) Lock()   {}
func (c *CaptureSink) Unlock() {}

// RenderPCM drains exactly window worth of mixed audio as interleaved
// little-endian 16-bit stereo samples. The mixer yields silence once all
// scheduled events have ended, so the returned payload always spans the full
// window.
func (c *CaptureSink) RenderPCM(window time.Duration) []byte {
	total := c.format.SampleRate.N(window)
	if total <= 0 {
		return nil
	}
	out := make([]byte, 0, total*4)

	buf := make([][2]float64, 512)
	remaining := total
	for remaining > 0 {
		chunk := buf
		if remaining < len(buf) {
			chunk = buf[:remaining]
		}
		n, _ := c.mixer.Stream(chunk)
		if n == 0 {
			// Drained mixer: pad the rest of the window with silence.
			out = append(out, make([]byte, remaining*4)...)
			break
		}
		for i := 0; i < n; i++ {
			out = appendSample(out, chunk[i][0])
			out = appendSample(out, chunk[i][1])
		}
		remaining -= n
	}
	return out
}

func appendSample(dst []byte, v float64) []byte {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return binary.LittleEndian.AppendUint16(dst, uint16(int16(v*32767)))
}
