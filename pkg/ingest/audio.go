// audio.go - Audio file decoding into mix-format PCM buffers.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/xob0t/GoSmash/pkg/audiomix"
)

const resampleQuality = 4

// LoadAudio decodes a WAV, MP3, FLAC or OGG file into a buffer at the shared
// mix format, resampling when the file's rate differs.
func LoadAudio(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio format %q: use .wav, .mp3, .flac or .ogg", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != audiomix.MixFormat.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, audiomix.MixFormat.SampleRate, stream)
	}

	buf := beep.NewBuffer(audiomix.MixFormat)
	buf.Append(s)
	if buf.Len() == 0 {
		return nil, fmt.Errorf("decode audio %s: empty stream", path)
	}
	return buf, nil
}
