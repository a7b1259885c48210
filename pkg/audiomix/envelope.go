// envelope.go - Per-slice amplitude envelope: linear fade-in, unity hold,
// linear fade-out ending exactly at the slice end.
package audiomix

import (
	"time"

	"github.com/gopxl/beep/v2"
)

const (
	fadeInWindow  = 20 * time.Millisecond
	fadeOutWindow = 40 * time.Millisecond
)

// envelope wraps a streamer of a known total length and shapes its gain.
// When the slice is shorter than fade-in plus fade-out, the fade-out start
// clamps to the fade-in end; the fades compress but never invert.
type envelope struct {
	s            beep.Streamer
	pos          int
	total        int
	fadeIn       int
	fadeOutStart int
}

func newEnvelope(s beep.Streamer, total int, sr beep.SampleRate) *envelope {
	fadeIn := sr.N(fadeInWindow)
	fadeOut := sr.N(fadeOutWindow)
	if fadeIn > total {
		fadeIn = total
	}
	fadeOutStart := total - fadeOut
	if fadeOutStart < fadeIn {
		fadeOutStart = fadeIn
	}
	return &envelope{s: s, total: total, fadeIn: fadeIn, fadeOutStart: fadeOutStart}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gainAt(e.pos + i)
		samples[i][0] *= g
		samples[i][1] *= g
	}
	e.pos += n
	return n, ok
}

func (e *envelope) Err() error {
	return e.s.Err()
}

func (e *envelope) gainAt(pos int) float64 {
	if pos < e.fadeIn {
		return float64(pos) / float64(e.fadeIn)
	}
	if pos >= e.fadeOutStart {
		span := e.total - e.fadeOutStart
		if span <= 0 {
			return 0
		}
		g := 1 - float64(pos-e.fadeOutStart)/float64(span)
		if g < 0 {
			g = 0
		}
		return g
	}
	return 1
}
