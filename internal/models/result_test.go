package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitResultPagesWritten(t *testing.T) {
	r := &SplitResult{
		TotalPages: 7,
		Outputs: []SplitOutput{
			{Index: 1, Start: 1, End: 3},
			{Index: 2, Start: 4, End: 6},
			{Index: 3, Start: 7, End: 7},
		},
	}
	assert.Equal(t, 7, r.PagesWritten())
	assert.Equal(t, 1, r.Outputs[2].Pages())
}

func TestProgressSnapshotPercent(t *testing.T) {
	assert.Equal(t, 0.0, ProgressSnapshot{Position: 3}.Percent())
	assert.Equal(t, 50.0, ProgressSnapshot{Position: 2, Length: 4}.Percent())
}

func TestRecordingProgress(t *testing.T) {
	var sink ProgressSink = &RecordingProgress{}
	sink.SetLength(2)
	sink.Advance("a.pdf")
	sink.Advance("b.pdf")
	sink.Finish()

	rec := sink.(*RecordingProgress)
	assert.Equal(t, 2, rec.Length)
	assert.Equal(t, 2, rec.Position)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, rec.Messages)
	assert.True(t, rec.Finished)

	// NullProgress accepts everything
	var null ProgressSink = NullProgress{}
	null.SetLength(1)
	null.Advance("x")
	null.Finish()
}
