// Package report posts task outcomes of a finished run to an HTTP endpoint.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/gxl/model/task"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// Config is the [task_report] section of the engine configuration.
type Config struct {
	Enabled  bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	URL      string `json:"url" yaml:"url" mapstructure:"url"`
	ParentID string `json:"parent_id" yaml:"parent_id" mapstructure:"parent_id"`
	// Timeout is the per request timeout in seconds.
	Timeout int `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Entry is the wire form of one task.
type Entry struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
	Log      string `json:"log"`
	Status   string `json:"status"`
	Order    int    `json:"order"`
}

// Service posts one Entry per task.
type Service struct {
	config *Config
	client *http.Client
	logger *zap.SugaredLogger
}

// Entries flattens job into ordered entries; nested job tasks follow their parent's tasks.
func Entries(parentID string, job *task.Job) []*Entry {
	var ret []*Entry
	var visit func(job *task.Job)
	visit = func(job *task.Job) {
		for _, t := range job.Tasks {
			ret = append(ret, &Entry{ParentID: parentID, Name: t.Name, Log: taskLog(t), Status: status(&t.Record), Order: len(ret) + 1})
		}
		for _, sub := range job.Jobs {
			visit(sub)
		}
	}
	if job != nil {
		visit(job)
	}
	return ret
}

// Report posts every entry of job; failures are logged and never returned.
func (s *Service) Report(ctx context.Context, job *task.Job) int {
	if s.config == nil || !s.config.Enabled || s.config.URL == "" {
		return 0
	}
	sent := 0
	for _, entry := range Entries(s.config.ParentID, job) {
		if err := s.post(ctx, entry); err != nil {
			s.logger.Warnw("task report failed", "task", entry.Name, "url", s.config.URL, "error", err)
			continue
		}
		sent++
	}
	return sent
}

func (s *Service) post(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	timeout := time.Duration(s.config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)
	if response.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", response.StatusCode)
	}
	return nil
}

func taskLog(t *task.Task) string {
	var builder strings.Builder
	for _, action := range t.Actions {
		builder.WriteString(action.Stdout)
		if action.Error != "" {
			builder.WriteString(action.Name + ": " + action.Error + "\n")
		}
	}
	if t.Error != "" && builder.Len() == 0 {
		builder.WriteString(t.Error)
	}
	return builder.String()
}

func status(record *task.Record) string {
	if record.Failed() {
		return StatusFailure
	}
	return StatusSuccess
}

// New creates a report service; a nil or disabled config makes Report a no-op.
func New(config *Config, opts ...Option) *Service {
	ret := &Service{config: config, client: http.DefaultClient, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
