// Package record persists run records, the task.Job tree of one run keyed by run ID.
package record

import (
	"strings"

	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/service/dao"
)

// Service stores run records.
type Service = dao.Service[string, task.Job]

// Key returns the record key of job.
func Key(job *task.Job) string {
	return job.ID
}

// Attributes exposes the filterable fields of job: id, name and status.
func Attributes(job *task.Job) map[string]string {
	return map[string]string{
		"id":     job.ID,
		"name":   job.Name,
		"status": strings.ToLower(string(job.Status)),
	}
}
