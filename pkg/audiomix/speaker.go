// speaker.go - Live preview output. The speaker is a process-wide singleton
// initialized lazily on first use and reused for every later preview.
package audiomix

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const speakerBuffer = 100 * time.Millisecond

var (
	speakerOnce sync.Once
	speakerErr  error
)

// SpeakerSink plays scheduled events through the system speaker.
type SpeakerSink struct{}

// NewSpeakerSink initializes the shared speaker on first call.
func NewSpeakerSink() (*SpeakerSink, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(MixFormat.SampleRate, MixFormat.SampleRate.N(speakerBuffer))
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("init speaker: %w", speakerErr)
	}
	return &SpeakerSink{}, nil
}

func (s *SpeakerSink) Format() beep.Format    { return MixFormat }
func (s *SpeakerSink) Play(st beep.Streamer)  { speaker.Play(st) }
func (s *SpeakerSink) Lock()                  { speaker.Lock() }
func (s *SpeakerSink) Unlock()                { speaker.Unlock() }
