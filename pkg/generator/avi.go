// avi.go - Pure Go AVI muxer with an MJPEG video stream and a PCM audio
// stream. AVI keeps native MJPEG support everywhere and needs no external
// tooling; video ("00dc") and audio ("01wb") chunks are interleaved frame by
// frame and indexed in idx1.
package generator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Header layout constants. hdrl carries avih plus one strl per stream:
// strh is always 56 bytes, video strf is a 40-byte BITMAPINFOHEADER, audio
// strf a 16-byte PCMWAVEFORMAT.
const (
	avihChunkBytes     = 8 + 56
	strhChunkBytes     = 8 + 56
	videoStrfBytes     = 8 + 40
	audioStrfBytes     = 8 + 16
	videoStrlListBytes = 8 + 4 + strhChunkBytes + videoStrfBytes
	audioStrlListBytes = 8 + 4 + strhChunkBytes + audioStrfBytes
	hdrlContentBytes   = 4 + avihChunkBytes + videoStrlListBytes + audioStrlListBytes
)

// EncodeAVI muxes pre-encoded JPEG frames plus interleaved little-endian
// 16-bit PCM into w. The audio is sliced into one chunk per video frame;
// trailing PCM beyond the last frame goes into a final audio chunk so the
// recorded artifact never truncates trailing sound.
func EncodeAVI(w io.Writer, frames [][]byte, width, height, fps int, pcm []byte, sampleRate, channels int) error {
	if len(frames) == 0 {
		return fmt.Errorf("avi: no frames")
	}
	if fps <= 0 || width <= 0 || height <= 0 {
		return fmt.Errorf("avi: invalid geometry %dx%d@%d", width, height, fps)
	}
	if channels <= 0 {
		channels = 2
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	blockAlign := channels * 2
	bytesPerFrame := sampleRate * blockAlign / fps
	bytesPerFrame -= bytesPerFrame % blockAlign

	// Build the movi body and the index in one pass.
	var movi bytes.Buffer
	var idx bytes.Buffer
	maxJPEG := 0
	audioPos := 0

	writeChunk := func(fourCC string, data []byte) {
		offset := uint32(4 + movi.Len()) // from the "movi" fourCC
		movi.WriteString(fourCC)
		binary.Write(&movi, binary.LittleEndian, uint32(len(data)))
		movi.Write(data)
		if len(data)%2 != 0 {
			movi.WriteByte(0)
		}

		idx.WriteString(fourCC)
		binary.Write(&idx, binary.LittleEndian, uint32(0x10)) // AVIIF_KEYFRAME
		binary.Write(&idx, binary.LittleEndian, offset)
		binary.Write(&idx, binary.LittleEndian, uint32(len(data)))
	}

	for _, frame := range frames {
		if len(frame) > maxJPEG {
			maxJPEG = len(frame)
		}
		writeChunk("00dc", frame)

		end := audioPos + bytesPerFrame
		if end > len(pcm) {
			end = len(pcm)
		}
		if end > audioPos {
			writeChunk("01wb", pcm[audioPos:end])
			audioPos = end
		}
	}
	if audioPos < len(pcm) {
		writeChunk("01wb", pcm[audioPos:])
	}

	totalFrames := uint32(len(frames))
	audioBlocks := uint32(len(pcm) / blockAlign)
	moviContent := uint32(4 + movi.Len())
	fileSize := uint32(4) + uint32(8+hdrlContentBytes) + (8 + moviContent) + uint32(8+idx.Len())

	var out bytes.Buffer
	fourCC := func(s string) { out.WriteString(s) }
	u32 := func(v uint32) { binary.Write(&out, binary.LittleEndian, v) }
	u16 := func(v uint16) { binary.Write(&out, binary.LittleEndian, v) }

	// === RIFF header ===
	fourCC("RIFF")
	u32(fileSize)
	fourCC("AVI ")

	// === hdrl LIST ===
	fourCC("LIST")
	u32(hdrlContentBytes)
	fourCC("hdrl")

	// avih (main AVI header)
	fourCC("avih")
	u32(56)
	u32(uint32(1000000 / fps))                   // microseconds per frame
	u32(uint32(maxJPEG*fps + sampleRate*blockAlign)) // max bytes per sec
	u32(0)    // padding granularity
	u32(0x10) // flags: AVIF_HASINDEX
	u32(totalFrames)
	u32(0)               // initial frames
	u32(2)               // streams: video + audio
	u32(uint32(maxJPEG)) // suggested buffer size
	u32(uint32(width))
	u32(uint32(height))
	u32(0) // reserved
	u32(0)
	u32(0)
	u32(0)

	// === video strl ===
	fourCC("LIST")
	u32(videoStrlListBytes - 8)
	fourCC("strl")

	fourCC("strh")
	u32(56)
	fourCC("vids")
	fourCC("MJPG")
	u32(0) // flags
	u16(0) // priority
	u16(0) // language
	u32(0) // initial frames
	u32(1) // scale
	u32(uint32(fps))
	u32(0) // start
	u32(totalFrames)
	u32(uint32(maxJPEG))
	u32(0) // quality
	u32(0) // sample size
	u16(0) // left
	u16(0) // top
	u16(uint16(width))
	u16(uint16(height))

	fourCC("strf")
	u32(40)
	u32(40) // biSize
	u32(uint32(width))
	u32(uint32(height))
	u16(1)  // planes
	u16(24) // bit count
	fourCC("MJPG")
	u32(uint32(width * height * 3))
	u32(0) // x pels per meter
	u32(0) // y pels per meter
	u32(0) // colors used
	u32(0) // colors important

	// === audio strl ===
	fourCC("LIST")
	u32(audioStrlListBytes - 8)
	fourCC("strl")

	fourCC("strh")
	u32(56)
	fourCC("auds")
	u32(0) // handler
	u32(0) // flags
	u16(0) // priority
	u16(0) // language
	u32(0) // initial frames
	u32(1) // scale
	u32(uint32(sampleRate))
	u32(0) // start
	u32(audioBlocks)
	u32(uint32(bytesPerFrame))
	u32(0) // quality
	u32(uint32(blockAlign))
	u16(0)
	u16(0)
	u16(0)
	u16(0)

	fourCC("strf")
	u32(16)
	u16(1) // WAVE_FORMAT_PCM
	u16(uint16(channels))
	u32(uint32(sampleRate))
	u32(uint32(sampleRate * blockAlign))
	u16(uint16(blockAlign))
	u16(16) // bits per sample

	// === movi LIST ===
	fourCC("LIST")
	u32(moviContent)
	fourCC("movi")
	out.Write(movi.Bytes())

	// === idx1 ===
	fourCC("idx1")
	u32(uint32(idx.Len()))
	out.Write(idx.Bytes())

	_, err := w.Write(out.Bytes())
	return err
}

// WriteAVI muxes to a file at the given path.
func WriteAVI(output string, frames [][]byte, width, height, fps int, pcm []byte, sampleRate, channels int) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := EncodeAVI(f, frames, width, height, fps, pcm, sampleRate, channels); err != nil {
		return err
	}
	return f.Sync()
}
