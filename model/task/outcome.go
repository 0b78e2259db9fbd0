package task

// OutcomeKind is the variant of an executed node result.
type OutcomeKind int

const (
	OutcomeIgnore OutcomeKind = iota
	OutcomeAction
	OutcomeTask
	OutcomeJob
)

// Outcome is appended to the current job.
type Outcome struct {
	Kind   OutcomeKind
	Action *Action
	Task   *Task
	Job    *Job
}

var Ignore = &Outcome{Kind: OutcomeIgnore}

func ActionOutcome(action *Action) *Outcome {
	return &Outcome{Kind: OutcomeAction, Action: action}
}

func TaskOutcome(task *Task) *Outcome {
	return &Outcome{Kind: OutcomeTask, Task: task}
}

func JobOutcome(job *Job) *Outcome {
	return &Outcome{Kind: OutcomeJob, Job: job}
}

// JobCarrier is implemented by action outputs holding the job of a nested run.
type JobCarrier interface {
	NestedJob() *Job
}
