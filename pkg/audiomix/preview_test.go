package audiomix

import (
	"testing"

	"github.com/xob0t/GoSmash/pkg/engine"
)

func TestPreviewStartStop(t *testing.T) {
	cat, id := toneCatalog(1)
	tl := engine.Timeline{Slices: []engine.Slice{
		{SourceID: id, Duration: 0.5, Offset: 0, Rate: 1},
	}}

	p := NewPreview(NewCaptureSink(MixFormat))
	total, err := p.Start(tl, cat)
	if err != nil {
		t.Fatal(err)
	}
	if !nearF(total, 0.5) {
		t.Errorf("total = %v, want 0.5", total)
	}

	p.Stop()
	p.Stop()
	if p.mix != nil || p.timer != nil {
		t.Error("Stop left a live mix or timer behind")
	}
}

func TestPreviewRestartSupersedes(t *testing.T) {
	cat, id := toneCatalog(1)
	tl := engine.Timeline{Slices: []engine.Slice{
		{SourceID: id, Duration: 0.5, Offset: 0, Rate: 1},
	}}

	p := NewPreview(NewCaptureSink(MixFormat))
	if _, err := p.Start(tl, cat); err != nil {
		t.Fatal(err)
	}
	first := p.mix

	if _, err := p.Start(tl, cat); err != nil {
		t.Fatal(err)
	}
	if p.mix == first {
		t.Error("restart kept the previous mix")
	}
	p.Stop()
}

func TestPreviewEmptyTimeline(t *testing.T) {
	// An empty timeline builds an empty mix without error; Start reports a
	// zero-length preview rather than failing.
	cat, _ := toneCatalog(1)
	p := NewPreview(NewCaptureSink(MixFormat))
	total, err := p.Start(engine.Timeline{}, cat)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("empty timeline total = %v, want 0", total)
	}
	p.Stop()
}
