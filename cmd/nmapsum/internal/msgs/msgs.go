package msgs

import (
	"time"

	"github.com/germanamz/nmapsum/pkg/summarizer"
)

// SubmitMsg asks the app to run a summarize cycle with the current form values.
type SubmitMsg struct{}

// RunCompleteMsg is returned by the tea.Cmd that runs the summarizer.
type RunCompleteMsg struct {
	Result   summarizer.Result
	Err      error
	Duration time.Duration
	Seq      uint64
}

// DotWrittenMsg reports the outcome of writing the graph source to disk.
type DotWrittenMsg struct {
	Path string
	Err  error
}

// InitDrainMsg fires after a short delay so that stale terminal responses
// (e.g. OSC 11 background-color replies) are discarded before focusing input.
type InitDrainMsg struct{}

// TickMsg drives the loading spinner for the submit numbered Seq.
type TickMsg struct {
	Seq uint64
}
