// preview.go - Live preview of a timeline with guaranteed bulk release of
// stale playback handles.
package audiomix

import (
	"sync"
	"time"

	"github.com/xob0t/GoSmash/pkg/catalog"
	"github.com/xob0t/GoSmash/pkg/engine"
)

const (
	// PreviewLead absorbs scheduling latency between Build and audible start.
	PreviewLead = 30 * time.Millisecond
	// previewTail keeps the auto-stop timer clear of the final fade-out.
	previewTail = 200 * time.Millisecond
)

// Preview plays one mix at a time against a sink. Starting a new preview
// first silences every handle of the previous one, so stale mixes can never
// overlap a fresh smash.
type Preview struct {
	mu    sync.Mutex
	sink  Sink
	mix   *Mix
	timer *time.Timer
}

// NewPreview creates a preview controller bound to the given sink.
func NewPreview(sink Sink) *Preview {
	return &Preview{sink: sink}
}

// Start schedules the timeline for playback and returns the mix duration in
// seconds. An automatic stop fires once the mix has fully played out.
func (p *Preview) Start(tl engine.Timeline, cat *catalog.Catalog) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	mix, err := Build(p.sink, tl, cat, PreviewLead)
	if err != nil {
		return 0, err
	}
	p.mix = mix

	wait := PreviewLead + secondsToDuration(mix.TotalDuration()) + previewTail
	p.timer = time.AfterFunc(wait, p.Stop)
	return mix.TotalDuration(), nil
}

// Stop silences the current preview, if any. Idempotent.
func (p *Preview) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Preview) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.mix != nil {
		p.mix.Stop()
		p.mix = nil
	}
}
