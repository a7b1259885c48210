// recorder.go - Chunked frame collection during capture. Frames are cut into
// chunks on the chunk interval, with a coarser flush boundary forcing a cut
// even when the chunk interval has not elapsed; finalization assembles every
// chunk into one frame sequence.
package export

import "time"

type recorder struct {
	chunkFrames int
	flushFrames int

	pending [][]byte
	chunks  [][][]byte
	frame   int
}

func newRecorder(fps int, chunkInterval, flushInterval time.Duration) *recorder {
	chunkFrames := int(chunkInterval.Seconds() * float64(fps))
	if chunkFrames < 1 {
		chunkFrames = 1
	}
	flushFrames := int(flushInterval.Seconds() * float64(fps))
	if flushFrames < chunkFrames {
		flushFrames = chunkFrames
	}
	return &recorder{chunkFrames: chunkFrames, flushFrames: flushFrames}
}

// addFrame appends one encoded frame, cutting a chunk at either boundary.
func (r *recorder) addFrame(frame []byte) {
	r.pending = append(r.pending, frame)
	r.frame++
	if len(r.pending) >= r.chunkFrames || r.frame%r.flushFrames == 0 {
		r.flush()
	}
}

// flush cuts the pending frames into a chunk.
func (r *recorder) flush() {
	if len(r.pending) == 0 {
		return
	}
	r.chunks = append(r.chunks, r.pending)
	r.pending = nil
}

// assemble flushes any tail and returns all frames in capture order.
func (r *recorder) assemble() [][]byte {
	r.flush()
	var frames [][]byte
	for _, c := range r.chunks {
		frames = append(frames, c...)
	}
	return frames
}
