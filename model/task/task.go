package task

import (
	"time"

	"github.com/viant/gxl/internal/clock"
)

// Status represents a record state
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Record holds the timing and result shared by jobs, tasks and actions.
type Record struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Begin    time.Time     `json:"begin"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Start marks the record as running
func (r *Record) Start() {
	r.Begin = clock.Now()
	r.Status = StatusRunning
}

// Complete marks the record as successful
func (r *Record) Complete() {
	r.Duration = clock.Now().Sub(r.Begin)
	r.Status = StatusSuccess
}

// Fail marks the record as failed
func (r *Record) Fail(err error) {
	r.Duration = clock.Now().Sub(r.Begin)
	r.Status = StatusFailure
	if err != nil {
		r.Error = err.Error()
	}
}

// Finish completes or fails the record depending on err
func (r *Record) Finish(err error) {
	if err != nil {
		r.Fail(err)
		return
	}
	r.Complete()
}

// Failed reports a failure status
func (r *Record) Failed() bool {
	return r.Status == StatusFailure
}

// Action records a single action run.
type Action struct {
	Record
	Stdout string `json:"stdout,omitempty"`
}

// Task records a flow run.
type Task struct {
	Record
	Flow    string    `json:"flow,omitempty"`
	Actions []*Action `json:"actions,omitempty"`
}

// Job groups tasks and nested jobs (sub runs, rollbacks).
type Job struct {
	Record
	ID    string  `json:"id,omitempty"`
	Tasks []*Task `json:"tasks,omitempty"`
	Jobs  []*Job  `json:"jobs,omitempty"`
}

// NewJob creates a started job
func NewJob(id, name string) *Job {
	ret := &Job{ID: id}
	ret.Name = name
	ret.Start()
	return ret
}

// NewTask creates a started task
func NewTask(name, flow string) *Task {
	ret := &Task{Flow: flow}
	ret.Name = name
	ret.Start()
	return ret
}

// NewAction creates a started action
func NewAction(name string) *Action {
	ret := &Action{}
	ret.Name = name
	ret.Start()
	return ret
}

// Append adds an outcome to the job; actions go to the last task.
func (j *Job) Append(outcome *Outcome) {
	if outcome == nil {
		return
	}
	switch outcome.Kind {
	case OutcomeAction:
		if len(j.Tasks) == 0 {
			j.Tasks = append(j.Tasks, NewTask(j.Name, ""))
		}
		last := j.Tasks[len(j.Tasks)-1]
		last.Actions = append(last.Actions, outcome.Action)
	case OutcomeTask:
		j.Tasks = append(j.Tasks, outcome.Task)
	case OutcomeJob:
		j.Jobs = append(j.Jobs, outcome.Job)
	}
}

// Actions returns every action record of the job tree in order.
func (j *Job) Actions() []*Action {
	var ret []*Action
	for _, t := range j.Tasks {
		ret = append(ret, t.Actions...)
	}
	for _, sub := range j.Jobs {
		ret = append(ret, sub.Actions()...)
	}
	return ret
}

// Job returns the first nested job with name.
func (j *Job) Job(name string) *Job {
	for _, sub := range j.Jobs {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// Task returns the first task with name.
func (j *Job) Task(name string) *Task {
	for _, t := range j.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}
