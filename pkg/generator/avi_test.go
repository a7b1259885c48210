package generator

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func u32at(t *testing.T, data []byte, off int) uint32 {
	t.Helper()
	if off+4 > len(data) {
		t.Fatalf("offset %d past end %d", off, len(data))
	}
	return binary.LittleEndian.Uint32(data[off : off+4])
}

func TestEncodeAVIValidation(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeAVI(&buf, nil, 64, 64, 30, nil, 44100, 2); err == nil {
		t.Error("expected error for zero frames")
	}
	frames := [][]byte{{1, 2, 3}}
	if err := EncodeAVI(&buf, frames, 0, 64, 30, nil, 44100, 2); err == nil {
		t.Error("expected error for zero width")
	}
	if err := EncodeAVI(&buf, frames, 64, 64, 0, nil, 44100, 2); err == nil {
		t.Error("expected error for zero fps")
	}
}

func TestEncodeAVIStructure(t *testing.T) {
	const fps = 30
	frames := [][]byte{
		bytes.Repeat([]byte{0xAA}, 101), // odd length exercises chunk padding
		bytes.Repeat([]byte{0xBB}, 64),
		bytes.Repeat([]byte{0xCC}, 80),
	}
	// One full per-frame audio slice plus a 100-byte second slice: five
	// indexed chunks in total, no trailing audio chunk.
	bytesPerFrame := 44100 * 4 / fps
	pcm := make([]byte, bytesPerFrame+100)

	var buf bytes.Buffer
	if err := EncodeAVI(&buf, frames, 64, 64, fps, pcm, 44100, 2); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatal("missing RIFF magic")
	}
	if got := u32at(t, data, 4); got != uint32(len(data)-8) {
		t.Errorf("RIFF size = %d, want %d", got, len(data)-8)
	}
	if string(data[8:12]) != "AVI " {
		t.Errorf("form type = %q, want AVI ", data[8:12])
	}

	// hdrl LIST: fixed-size header block right after the form type.
	if string(data[12:16]) != "LIST" || string(data[20:24]) != "hdrl" {
		t.Fatal("hdrl LIST not at fixed offset")
	}
	if got := u32at(t, data, 16); got != hdrlContentBytes {
		t.Errorf("hdrl size = %d, want %d", got, hdrlContentBytes)
	}

	// avih: total frames and stream count at fixed offsets inside the header.
	if string(data[24:28]) != "avih" {
		t.Fatal("avih not at fixed offset")
	}
	if got := u32at(t, data, 32+16); got != uint32(len(frames)) {
		t.Errorf("avih total frames = %d, want %d", got, len(frames))
	}
	if got := u32at(t, data, 32+24); got != 2 {
		t.Errorf("avih streams = %d, want 2", got)
	}

	for _, fourCC := range []string{"vids", "MJPG", "auds", "strh", "strf", "movi", "00dc", "01wb", "idx1"} {
		if !bytes.Contains(data, []byte(fourCC)) {
			t.Errorf("missing %q", fourCC)
		}
	}

	// idx1 holds one 16-byte entry per chunk: 3 video + 2 audio.
	idxOff := bytes.Index(data, []byte("idx1"))
	if idxOff < 0 {
		t.Fatal("missing idx1")
	}
	if got := u32at(t, data, idxOff+4); got != 5*16 {
		t.Errorf("idx1 size = %d, want %d", got, 5*16)
	}

	// First index entry points at the first video chunk, offset 4 from the
	// movi fourCC, flagged as a keyframe.
	entry := data[idxOff+8:]
	if string(entry[:4]) != "00dc" {
		t.Errorf("first index entry = %q, want 00dc", entry[:4])
	}
	if got := binary.LittleEndian.Uint32(entry[4:8]); got != 0x10 {
		t.Errorf("first entry flags = %#x, want AVIIF_KEYFRAME", got)
	}
	if got := binary.LittleEndian.Uint32(entry[8:12]); got != 4 {
		t.Errorf("first entry offset = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint32(entry[12:16]); got != uint32(len(frames[0])) {
		t.Errorf("first entry size = %d, want %d", got, len(frames[0]))
	}

	// The odd-length first frame is padded to an even boundary inside movi.
	moviOff := bytes.Index(data, []byte("movi"))
	firstChunk := data[moviOff+4:]
	if string(firstChunk[:4]) != "00dc" {
		t.Fatalf("first movi chunk = %q, want 00dc", firstChunk[:4])
	}
	if got := binary.LittleEndian.Uint32(firstChunk[4:8]); got != uint32(len(frames[0])) {
		t.Errorf("first chunk size = %d, want %d (padding must not count)", got, len(frames[0]))
	}
	if pad := firstChunk[8+len(frames[0])]; pad != 0 {
		t.Errorf("pad byte = %d, want 0", pad)
	}
	if next := firstChunk[8+len(frames[0])+1:]; string(next[:4]) != "01wb" {
		t.Errorf("chunk after padded frame = %q, want 01wb", next[:4])
	}
}

func TestEncodeAVINoAudio(t *testing.T) {
	frames := [][]byte{bytes.Repeat([]byte{0xAA}, 10)}
	var buf bytes.Buffer
	if err := EncodeAVI(&buf, frames, 16, 16, 30, nil, 44100, 2); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if bytes.Contains(data, []byte("01wb")) {
		t.Error("audio chunk emitted with no PCM")
	}
	if got := u32at(t, data, 4); got != uint32(len(data)-8) {
		t.Errorf("RIFF size = %d, want %d", got, len(data)-8)
	}
}
