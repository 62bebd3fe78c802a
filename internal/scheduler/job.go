package scheduler

import (
	"context"
	"time"
)

// Job is a cache warm-up task run on a cron schedule.
// Schedules use the six-field form with seconds ("0 */30 * * * *") or descriptors ("@hourly").
type Job interface {
	Name() string
	Run(ctx context.Context) error
	Schedule() string
}

// historyLimit bounds the runs remembered per job
const historyLimit = 100

// JobResult is one run of a job, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// history keeps the most recent runs of one job, oldest first.
// Callers hold Scheduler.mu.
type history struct {
	runs []JobResult
}

func (h *history) record(r JobResult) {
	if len(h.runs) == historyLimit {
		copy(h.runs, h.runs[1:])
		h.runs = h.runs[:historyLimit-1]
	}
	h.runs = append(h.runs, r)
}

func (h *history) snapshot() []JobResult {
	return append([]JobResult(nil), h.runs...)
}

// lastWhere returns the start of the newest run matching success
func (h *history) lastWhere(success bool) *time.Time {
	for i := len(h.runs) - 1; i >= 0; i-- {
		if h.runs[i].Success == success {
			t := h.runs[i].StartTime
			return &t
		}
	}
	return nil
}

func (h *history) successes() int {
	n := 0
	for _, r := range h.runs {
		if r.Success {
			n++
		}
	}
	return n
}

// stats summarises the remembered runs; SuccessRate is 0 before the first run
func (h *history) stats(name, schedule string) JobStats {
	st := JobStats{
		JobName:      name,
		Schedule:     schedule,
		TotalRuns:    len(h.runs),
		SuccessCount: h.successes(),
		LastSuccess:  h.lastWhere(true),
		LastFailure:  h.lastWhere(false),
	}
	st.FailureCount = st.TotalRuns - st.SuccessCount
	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(st.TotalRuns)
		last := h.runs[len(h.runs)-1].StartTime
		st.LastRun = &last
	}
	return st
}
