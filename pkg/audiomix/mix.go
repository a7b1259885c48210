// mix.go - The mix builder: one scheduled, enveloped playback event per
// resolvable timeline slice.
package audiomix

import (
	"errors"
	"math"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/xob0t/GoSmash/pkg/catalog"
	"github.com/xob0t/GoSmash/pkg/engine"
)

// resampleQuality is the beep resampler quality used for rate shifts.
const resampleQuality = 4

// ErrLeadTime is returned when Build is given a non-positive start lead.
var ErrLeadTime = errors.New("audiomix: start lead time must be positive")

// Mix owns the playback handles realized from one timeline. The owner must
// call Stop when playback is complete or cancelled; stopping twice is benign.
type Mix struct {
	sink    Sink
	handles []*beep.Ctrl
	total   float64
}

// Build schedules every slice of the timeline into the sink. Events start at
// lead + slice offset on the sink's clock; lead absorbs scheduling latency
// and must be strictly positive. Slices whose source no longer resolves in
// the catalog are silently skipped.
func Build(sink Sink, tl engine.Timeline, cat *catalog.Catalog, lead time.Duration) (*Mix, error) {
	if lead <= 0 {
		return nil, ErrLeadTime
	}

	m := &Mix{sink: sink}
	sr := sink.Format().SampleRate

	for _, sl := range tl.Slices {
		item, ok := cat.Lookup(sl.SourceID)
		if !ok || item.Audio == nil {
			continue
		}
		buf := item.Audio
		bufSR := buf.Format().SampleRate

		// Source window: the rate shift consumes Duration*Rate source
		// seconds to produce Duration seconds of output.
		from := int(math.Round(sl.SourceStart * float64(bufSR)))
		to := from + int(math.Ceil(sl.Duration*sl.Rate*float64(bufSR)))
		from = clampInt(from, 0, buf.Len())
		to = clampInt(to, from, buf.Len())
		if to == from {
			continue
		}

		var s beep.Streamer = buf.Streamer(from, to)
		if bufSR != sr {
			s = beep.Resample(resampleQuality, bufSR, sr, s)
		}
		if sl.Rate != 1 {
			s = beep.ResampleRatio(resampleQuality, sl.Rate, s)
		}

		durN := sr.N(secondsToDuration(sl.Duration))
		s = newEnvelope(beep.Take(durN, s), durN, sr)

		delayN := sr.N(lead + secondsToDuration(sl.Offset))
		ctrl := &beep.Ctrl{Streamer: beep.Seq(beep.Silence(delayN), s)}

		m.handles = append(m.handles, ctrl)
		sink.Play(ctrl)

		if end := sl.Offset + sl.Duration; end > m.total {
			m.total = end
		}
	}

	return m, nil
}

// TotalDuration returns the mix length in seconds: the maximum slice end
// over all realized slices, or 0 when nothing was realized.
func (m *Mix) TotalDuration() float64 {
	return m.total
}

// Handles returns the number of realized playback events.
func (m *Mix) Handles() int {
	return len(m.handles)
}

// Stop silences every playback handle. Safe to call more than once and safe
// on handles that already ran to completion.
func (m *Mix) Stop() {
	m.sink.Lock()
	for _, c := range m.handles {
		c.Streamer = nil
	}
	m.sink.Unlock()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
