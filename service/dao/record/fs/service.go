package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/service/dao"
	"github.com/viant/gxl/service/dao/criteria"
	"github.com/viant/gxl/service/dao/record"
	"go.uber.org/zap"
)

// Service stores run records as <basePath>/<runID>.json.
type Service struct {
	basePath string
	fs       afs.Service
	logger   *zap.SugaredLogger
	mu       sync.RWMutex
}

var _ record.Service = (*Service)(nil)

// Save persists a run record
func (s *Service) Save(ctx context.Context, job *task.Job) error {
	if job == nil {
		return dao.ErrNilEntity
	}
	if job.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	location := s.recordPath(job.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save run record %s: %w", location, err)
	}
	return nil
}

// Load retrieves a run record
func (s *Service) Load(ctx context.Context, id string) (*task.Job, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.recordPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check run record: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}
	ret := &task.Job{}
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return ret, nil
}

// Delete removes a run record
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.recordPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check run record: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, location)
}

// List returns stored records ordered by begin time; unreadable files are logged and skipped.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	var ret []*task.Job
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warnw("failed to read run record", "url", object.URL(), "error", err)
			continue
		}
		job := &task.Job{}
		if err = json.Unmarshal(data, job); err != nil {
			s.logger.Warnw("failed to unmarshal run record", "url", object.URL(), "error", err)
			continue
		}
		if !criteria.Match(record.Attributes(job), parameters) {
			continue
		}
		ret = append(ret, job)
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Begin.Before(ret[j].Begin) })
	return ret, nil
}

func (s *Service) recordPath(id string) string {
	return url.Join(s.basePath, id+".json")
}

// New creates a file based record store under basePath, creating the directory when missing.
func New(ctx context.Context, basePath string, logger *zap.SugaredLogger) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	fs := afs.New()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Service{basePath: url.Normalize(basePath, file.Scheme), fs: fs, logger: logger}, nil
}
