package memory

import (
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/service/dao/record"
	"github.com/viant/gxl/service/dao/store"
)

// Service keeps run records in memory.
type Service struct {
	*store.MemoryStore[string, task.Job]
}

var _ record.Service = (*Service)(nil)

// New creates an in-memory record store
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, task.Job](record.Key, record.Attributes)}
}
