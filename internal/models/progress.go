package models

// ProgressSnapshot is a point-in-time view of a running operation.
type ProgressSnapshot struct {
	Position int    // Steps completed; never decreases within a run
	Length   int    // Total steps, 0 when unknown
	Message  string // Current item, usually a file name
}

// Percent returns the completion percentage, 0 when Length is unknown.
func (p ProgressSnapshot) Percent() float64 {
	if p.Length <= 0 {
		return 0
	}
	return float64(p.Position) / float64(p.Length) * 100
}

// ProgressSink receives progress from the merge and split engines.
// Implementations must tolerate being called from a worker goroutine.
type ProgressSink interface {
	SetLength(n int)
	Advance(message string)
	SetMessage(message string)
	Finish()
}

// NullProgress discards all progress updates.
type NullProgress struct{}

func (NullProgress) SetLength(int)     {}
func (NullProgress) Advance(string)    {}
func (NullProgress) SetMessage(string) {}
func (NullProgress) Finish()           {}

// RecordingProgress keeps every update in memory. Used by tests and by
// callers that render progress themselves.
type RecordingProgress struct {
	Length   int
	Position int
	Messages []string
	Finished bool
}

func (r *RecordingProgress) SetLength(n int) { r.Length = n }

func (r *RecordingProgress) Advance(message string) {
	r.Position++
	r.Messages = append(r.Messages, message)
}

func (r *RecordingProgress) SetMessage(message string) {}

func (r *RecordingProgress) Finish() { r.Finished = true }
