package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // number of leading runs that fail
	runs     atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.runs.Add(1)
	if n <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(nil).WithRetry(2, time.Millisecond)
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 0 18 * * *"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@hourly"}))

	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@hourly"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "c", schedule: "not a cron"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@hourly"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.NextRun("a")
	assert.Error(t, err)
}

func TestScheduler_RunJobSync_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("flaky")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)
}

func TestScheduler_RunJobSync_GivesUp(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("broken")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "boom", result.Error)

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	require.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestScheduler_RunJob_UnknownJob(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunJob("missing"))

	_, err := s.RunJobSync("missing")
	assert.Error(t, err)

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestScheduler_HistoryIsCopied(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "ok", schedule: "@daily"}))

	_, err := s.RunJobSync("ok")
	require.NoError(t, err)

	history, err := s.GetJobHistory("ok")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)

	history.Results[0].Success = false
	again, _ := s.GetJobHistory("ok")
	assert.True(t, again.Results[0].Success)
}

func TestScheduler_NextRun(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "evening", schedule: "0 0 18 * * *"}))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("evening")
	require.NoError(t, err)
	assert.Equal(t, 18, next.Hour())
	assert.True(t, next.After(time.Now()))
}

func TestScheduler_StopCancelsRetries(t *testing.T) {
	s := New(nil).WithRetry(5, time.Hour)
	job := &fakeJob{name: "slow", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	done := make(chan JobResult, 1)
	go func() {
		result, _ := s.RunJobSync("slow")
		done <- result
	}()

	require.Eventually(t, func() bool { return job.runs.Load() >= 1 }, time.Second, time.Millisecond)
	s.Stop()

	select {
	case result := <-done:
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.Attempts)
	case <-time.After(2 * time.Second):
		t.Fatal("job kept retrying after Stop")
	}
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.summary().SuccessRate)
	assert.Nil(t, h.summary().LastRun)
	assert.Empty(t, h.GetLatestResults(5))
	assert.Empty(t, h.GetLatestResults(-1))

	base := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	for i := 0; i < maxHistory+10; i++ {
		r := JobResult{StartTime: base.Add(time.Duration(i) * time.Hour), Success: i%2 == 0}
		if !r.Success {
			r.Error = "fetch ranking page: timeout"
		}
		h.AddResult(r)
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)

	st := h.summary()
	assert.Equal(t, maxHistory, st.TotalRuns)
	assert.Equal(t, maxHistory/2, st.FailureCount)
	assert.InDelta(t, 0.5, st.SuccessRate, 1e-12)
	// the last added result (i = maxHistory+9) failed
	require.NotNil(t, st.LastRun)
	assert.Equal(t, base.Add(time.Duration(maxHistory+9)*time.Hour), *st.LastRun)
	assert.Equal(t, *st.LastRun, *st.LastFailure)
	assert.Equal(t, st.LastRun.Add(-time.Hour), *st.LastSuccess)
	assert.Equal(t, "fetch ranking page: timeout", st.LastError)
}
