// timeline.go - The audio slice scheduler: turns the BPM/grid model plus the
// audio catalog into an ordered sequence of slice playback descriptors.
package engine

import (
	"math"

	"github.com/xob0t/GoSmash/pkg/catalog"
)

// Slice is the atomic unit of the audio timeline. All times are seconds.
type Slice struct {
	SourceID    string  // catalog item the samples come from
	SourceStart float64 // offset into the source buffer
	Duration    float64 // slice length (source seconds)
	Offset      float64 // scheduled start relative to mix start, >= 0
	Rate        float64 // playback rate multiplier
}

// Timeline is the ordered slice sequence produced by one smash. Slice order
// is generation order; playback ordering is governed by Offset alone.
type Timeline struct {
	Slices []Slice
}

// TotalDuration returns max(Offset+Duration) over all slices, or 0 when the
// timeline is empty.
func (t Timeline) TotalDuration() float64 {
	total := 0.0
	for _, s := range t.Slices {
		if end := s.Offset + s.Duration; end > total {
			total = end
		}
	}
	return total
}

// Empty reports whether the timeline holds no slices.
func (t Timeline) Empty() bool {
	return len(t.Slices) == 0
}

const (
	phraseMinDuration = 1.2
	phraseMaxDuration = 3.5
	phraseBleed       = 0.85 // cursor advances by this fraction of a phrase
	swingFraction     = 0.12 // max swing as a fraction of the grid step
	minRepeatGap      = 0.06
)

// buildTimeline runs the slice scheduler. cfg must already be normalized.
//
// One grid cell lasts beatDuration * 4/gridDivision seconds; a running cursor
// advances layer by layer. Phrases bleed into the next layer on purpose, and
// grid chops get a bounded swing that never moves the cursor itself, so
// timing jitter cannot compound into drift.
func buildTimeline(cat *catalog.Catalog, cfg Config, rng Rand) Timeline {
	var tl Timeline

	sources := cat.ListByKind(catalog.KindAudio)
	if len(sources) == 0 || cfg.AudioLayers == 0 {
		return tl
	}

	beatDuration := 60.0 / cfg.BPM
	gridStep := beatDuration * 4.0 / float64(cfg.GridDivision)
	cursor := 0.0

	for layer := 0; layer < cfg.AudioLayers; layer++ {
		src := sources[rng.IntN(len(sources))]
		srcDur := src.AudioDuration()
		if srcDur <= 0 {
			continue
		}

		if rng.Float64() < cfg.PhraseChance {
			// Phrase: a longer grid-independent excerpt.
			dur := srcDur
			if srcDur > phraseMinDuration {
				hi := math.Min(phraseMaxDuration, srcDur)
				dur = phraseMinDuration + rng.Float64()*(hi-phraseMinDuration)
			}
			tl.Slices = append(tl.Slices, Slice{
				SourceID:    src.ID,
				SourceStart: rng.Float64() * (srcDur - dur),
				Duration:    dur,
				Offset:      cursor,
				Rate:        0.9 + rng.Float64()*0.18,
			})
			cursor += dur * phraseBleed
			continue
		}

		// Grid chop: one cell of the beat grid, placed with bounded swing.
		dur := math.Min(gridStep, srcDur)
		swing := (rng.Float64()*2 - 1) * swingFraction * gridStep
		tl.Slices = append(tl.Slices, Slice{
			SourceID:    src.ID,
			SourceStart: rng.Float64() * (srcDur - dur),
			Duration:    dur,
			Offset:      math.Max(0, cursor+swing),
			Rate:        0.9 + rng.Float64()*0.18,
		})
		chop := tl.Slices[len(tl.Slices)-1]
		cursor += gridStep

		if rng.Float64() < cfg.StutterChance {
			// Stutter: re-trigger the same source window 2-4 times.
			repeats := 2 + rng.IntN(3)
			gap := math.Max(minRepeatGap, gridStep*0.5)
			for r := 1; r <= repeats; r++ {
				tl.Slices = append(tl.Slices, Slice{
					SourceID:    chop.SourceID,
					SourceStart: chop.SourceStart,
					Duration:    chop.Duration,
					Offset:      cursor + float64(r)*gap,
					Rate:        0.92 + rng.Float64()*0.18,
				})
			}
			cursor += float64(repeats) * gap
		}
	}

	return tl
}
