package storage

import (
	"github.com/san-kum/choreo/internal/dynamo"
)

// Recorder is a controller observer that keeps every Nth frame. Frames
// recorded before a divergence reset are kept; the frame counter restarts
// after it.
type Recorder struct {
	every  int
	frames []Frame
	resets int
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnFrame(frame int, t float64, bodies []dynamo.Body) {
	if frame%r.every != 0 {
		return
	}
	f := Frame{Frame: frame, Time: t}
	copy(f.Bodies[:], bodies)
	r.frames = append(r.frames, f)
}

func (r *Recorder) OnReset(reason dynamo.ResetReason) {
	if reason == dynamo.ResetDiverged {
		r.resets++
	}
}

func (r *Recorder) Frames() []Frame { return r.frames }
func (r *Recorder) Resets() int     { return r.resets }
func (r *Recorder) Every() int      { return r.every }
