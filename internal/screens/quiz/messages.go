package quiz

import (
	"time"

	"github.com/abhisek/edchat/internal/pipeline"
	"github.com/abhisek/edchat/internal/study"
)

// contentReadyMsg carries the pipeline result for the generation it was
// requested for.
type contentReadyMsg struct {
	Result pipeline.Result
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// completedMsg is sent once the submitted session has been recorded.
type completedMsg struct {
	Completion study.Completion
}
