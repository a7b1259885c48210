package engine

import (
	"math"
	"testing"

	"github.com/gopxl/beep/v2"

	"github.com/xob0t/GoSmash/pkg/catalog"
)

var testFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// audioCatalog builds a catalog holding one silent buffer of the given length.
func audioCatalog(t *testing.T, seconds float64) (*catalog.Catalog, string) {
	t.Helper()
	buf := beep.NewBuffer(testFormat)
	buf.Append(beep.Silence(int(seconds * float64(testFormat.SampleRate))))
	cat := catalog.New()
	item := cat.AddAudio(buf)
	return cat, item.ID
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTimelineTotalDuration(t *testing.T) {
	var empty Timeline
	if got := empty.TotalDuration(); got != 0 {
		t.Errorf("empty TotalDuration = %v, want 0", got)
	}
	if !empty.Empty() {
		t.Error("empty timeline not reported Empty")
	}

	tl := Timeline{Slices: []Slice{
		{Offset: 0, Duration: 1},
		{Offset: 2.5, Duration: 0.25},
		{Offset: 1, Duration: 0.5},
	}}
	if got := tl.TotalDuration(); !near(got, 2.75) {
		t.Errorf("TotalDuration = %v, want 2.75", got)
	}
}

func TestBuildTimelineNoSources(t *testing.T) {
	cfg := DefaultConfig().Normalize()
	if tl := buildTimeline(catalog.New(), cfg, NewRand(1)); !tl.Empty() {
		t.Errorf("empty catalog produced %d slices", len(tl.Slices))
	}

	cat, _ := audioCatalog(t, 2)
	cfg.AudioLayers = 0
	if tl := buildTimeline(cat, cfg, NewRand(1)); !tl.Empty() {
		t.Errorf("zero audio layers produced %d slices", len(tl.Slices))
	}
}

func TestBuildTimelineGridSpacing(t *testing.T) {
	cat, id := audioCatalog(t, 2)
	cfg := Config{
		AudioLayers:   4,
		BPM:           120,
		GridDivision:  8,
		PhraseChance:  0.25,
		StutterChance: 0,
	}.Normalize()

	// A constant 0.5 draw skips both branch probabilities and zeroes the
	// swing, leaving pure grid placement: one cell is 0.5s * 4/8 = 0.25s.
	tl := buildTimeline(cat, cfg, constRand{f: 0.5})
	if len(tl.Slices) != 4 {
		t.Fatalf("got %d slices, want 4", len(tl.Slices))
	}
	for i, s := range tl.Slices {
		if s.SourceID != id {
			t.Errorf("slice %d source = %q, want %q", i, s.SourceID, id)
		}
		if want := 0.25 * float64(i); !near(s.Offset, want) {
			t.Errorf("slice %d offset = %v, want %v", i, s.Offset, want)
		}
		if !near(s.Duration, 0.25) {
			t.Errorf("slice %d duration = %v, want 0.25", i, s.Duration)
		}
		if !near(s.Rate, 0.99) {
			t.Errorf("slice %d rate = %v, want 0.99", i, s.Rate)
		}
	}
	if got := tl.TotalDuration(); !near(got, 1.0) {
		t.Errorf("TotalDuration = %v, want 1.0", got)
	}
}

func TestBuildTimelineStutter(t *testing.T) {
	cat, _ := audioCatalog(t, 2)
	cfg := Config{
		AudioLayers:   1,
		BPM:           120,
		GridDivision:  8,
		PhraseChance:  0,
		StutterChance: 1,
	}.Normalize()

	tl := buildTimeline(cat, cfg, constRand{f: 0.5})
	// One grid chop plus two stutter repeats.
	if len(tl.Slices) != 3 {
		t.Fatalf("got %d slices, want 3", len(tl.Slices))
	}
	chop := tl.Slices[0]
	for r := 1; r <= 2; r++ {
		rep := tl.Slices[r]
		if rep.SourceID != chop.SourceID || !near(rep.SourceStart, chop.SourceStart) || !near(rep.Duration, chop.Duration) {
			t.Errorf("repeat %d does not re-trigger the chop window: %+v vs %+v", r, rep, chop)
		}
		// Repeats land after the chop's grid cell, gap = gridStep/2 = 0.125.
		if want := 0.25 + float64(r)*0.125; !near(rep.Offset, want) {
			t.Errorf("repeat %d offset = %v, want %v", r, rep.Offset, want)
		}
		if !near(rep.Rate, 1.01) {
			t.Errorf("repeat %d rate = %v, want 1.01", r, rep.Rate)
		}
	}
}

func TestBuildTimelinePhrase(t *testing.T) {
	cat, _ := audioCatalog(t, 2)
	cfg := Config{
		AudioLayers:   2,
		BPM:           120,
		GridDivision:  8,
		PhraseChance:  1,
		StutterChance: 0,
	}.Normalize()

	tl := buildTimeline(cat, cfg, constRand{f: 0.5})
	if len(tl.Slices) != 2 {
		t.Fatalf("got %d slices, want 2", len(tl.Slices))
	}
	// Source is 2s, so a phrase at draw 0.5 lasts 1.2 + 0.5*(2-1.2) = 1.6s
	// starting 0.5*(2-1.6) = 0.2s into the source.
	p := tl.Slices[0]
	if !near(p.Duration, 1.6) || !near(p.SourceStart, 0.2) || !near(p.Offset, 0) {
		t.Errorf("phrase = %+v, want dur 1.6, start 0.2, offset 0", p)
	}
	// The cursor bleeds: the next layer starts at 85% of the phrase length.
	if want := 1.6 * 0.85; !near(tl.Slices[1].Offset, want) {
		t.Errorf("second offset = %v, want %v", tl.Slices[1].Offset, want)
	}
}

func TestBuildTimelinePhraseShortSource(t *testing.T) {
	cat, _ := audioCatalog(t, 0.8)
	cfg := Config{AudioLayers: 1, BPM: 120, GridDivision: 8, PhraseChance: 1}.Normalize()

	tl := buildTimeline(cat, cfg, constRand{f: 0.5})
	if len(tl.Slices) != 1 {
		t.Fatalf("got %d slices, want 1", len(tl.Slices))
	}
	// Sources shorter than the phrase minimum are used whole.
	s := tl.Slices[0]
	if !near(s.Duration, 0.8) || !near(s.SourceStart, 0) {
		t.Errorf("short-source phrase = %+v, want whole source", s)
	}
}

func TestBuildTimelineSeededBounds(t *testing.T) {
	const srcDur = 3.0
	cat, _ := audioCatalog(t, srcDur)
	cfg := DefaultConfig()
	cfg.AudioLayers = 64
	cfg = cfg.Normalize()

	tl := buildTimeline(cat, cfg, NewRand(7))
	if tl.Empty() {
		t.Fatal("seeded run produced no slices")
	}
	maxEnd := 0.0
	for i, s := range tl.Slices {
		if s.Offset < 0 {
			t.Errorf("slice %d offset %v < 0", i, s.Offset)
		}
		if s.SourceStart < 0 || s.SourceStart > srcDur {
			t.Errorf("slice %d source start %v outside [0,%v]", i, s.SourceStart, srcDur)
		}
		if s.Duration <= 0 || s.Duration > srcDur {
			t.Errorf("slice %d duration %v outside (0,%v]", i, s.Duration, srcDur)
		}
		if s.Rate < 0.9 || s.Rate > 1.1+1e-9 {
			t.Errorf("slice %d rate %v outside [0.9,1.1]", i, s.Rate)
		}
		if end := s.Offset + s.Duration; end > maxEnd {
			maxEnd = end
		}
	}
	if got := tl.TotalDuration(); !near(got, maxEnd) {
		t.Errorf("TotalDuration = %v, want max end %v", got, maxEnd)
	}
}
