package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gxl/internal/clock"
)

func TestRecord_Finish(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	defer func() { clock.NowFunc = time.Now }()

	testCases := []struct {
		description string
		err         error
		expect      Status
		expectError string
	}{
		{description: "success", expect: StatusSuccess},
		{description: "failure", err: errors.New("boom"), expect: StatusFailure, expectError: "boom"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			clock.NowFunc = func() time.Time { return base }
			action := NewAction("shell")
			assert.EqualValues(t, StatusRunning, action.Status)
			assert.EqualValues(t, base, action.Begin)
			clock.NowFunc = func() time.Time { return base.Add(2 * time.Second) }
			action.Finish(testCase.err)
			assert.EqualValues(t, testCase.expect, action.Status)
			assert.EqualValues(t, 2*time.Second, action.Duration)
			assert.EqualValues(t, testCase.expectError, action.Error)
		})
	}
}

func TestJob_Append(t *testing.T) {
	job := NewJob("1", "run")
	job.Append(Ignore)
	job.Append(nil)
	job.Append(ActionOutcome(NewAction("echo")))
	job.Append(TaskOutcome(NewTask("main.build", "build")))
	job.Append(ActionOutcome(NewAction("shell")))
	rollback := NewJob("", "rollback")
	rollback.Append(ActionOutcome(NewAction("shell")))
	job.Append(JobOutcome(rollback))

	assert.Len(t, job.Tasks, 2)
	assert.EqualValues(t, "run", job.Tasks[0].Name)
	assert.Len(t, job.Task("main.build").Actions, 1)
	assert.Same(t, rollback, job.Job("rollback"))
	assert.Nil(t, job.Job("missing"))
	var names []string
	for _, action := range job.Actions() {
		names = append(names, action.Name)
	}
	assert.EqualValues(t, []string{"echo", "shell", "shell"}, names)
}
