package module

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/service/dao/module/parser"
	"go.uber.org/zap"
)

// Repository yields WFL source for an extern module reference.
type Repository interface {
	Source(ctx context.Context, ref *ast.ExternRef, name, baseURL string) (URL string, data []byte, err error)
}

// Service loads a compilation unit: the entry file plus every extern module it references.
type Service struct {
	fs         afs.Service
	repository Repository
	logger     *zap.SugaredLogger
}

// Load parses the entry file and resolves externs transitively; circular externs are loaded once.
func (s *Service) Load(ctx context.Context, URL string) ([]*ast.File, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, types.NewIoError(fmt.Sprintf("failed to load %s", URL), err)
	}
	return s.Parse(ctx, URL, data)
}

// Parse parses source text as the entry file and resolves its externs.
func (s *Service) Parse(ctx context.Context, URL string, data []byte) ([]*ast.File, error) {
	entry, err := parser.Parse(URL, data)
	if err != nil {
		return nil, types.NewParseError(err)
	}
	files := []*ast.File{entry}
	seen := map[string]bool{}
	for _, module := range entry.Modules {
		seen[strings.ToLower(module.Name)] = true
	}
	pending := []*pendingExtern{{file: entry, URL: URL}}
	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]
		for _, ref := range current.file.Externs {
			for _, name := range ref.Names {
				key := strings.ToLower(name)
				if seen[key] {
					continue
				}
				seen[key] = true
				externURL, source, err := s.repository.Source(ctx, ref, name, parentURL(current.URL))
				if err != nil {
					return nil, err
				}
				externFile, err := parser.Parse(externURL, source)
				if err != nil {
					return nil, types.NewParseError(err)
				}
				for _, module := range externFile.Modules {
					module.Extern = true
					seen[strings.ToLower(module.Name)] = true
				}
				s.logger.Debugw("loaded extern", "module", name, "url", externURL)
				files = append(files, externFile)
				pending = append(pending, &pendingExtern{file: externFile, URL: externURL})
			}
		}
	}
	return files, nil
}

type pendingExtern struct {
	file *ast.File
	URL  string
}

// PathRepository resolves `extern mod N { path = "<dir>"; }` to <dir>/N.gxl relative to the including file.
type PathRepository struct {
	fs afs.Service
}

func (r *PathRepository) Source(ctx context.Context, ref *ast.ExternRef, name, baseURL string) (string, []byte, error) {
	location, ok := ref.Prop("path")
	if !ok {
		if git, has := ref.Prop("git"); has {
			return "", nil, types.NewArgsError("extern %s: git repository %s is not supported, use path", name, git)
		}
		return "", nil, types.NewArgsError("extern %s: missing path", name)
	}
	dir := JoinURL(baseURL, location)
	candidates := []string{JoinURL(dir, name+".gxl"), JoinURL(JoinURL(dir, name), "mod.gxl")}
	for _, candidate := range candidates {
		exists, err := r.fs.Exists(ctx, candidate)
		if err != nil || !exists {
			continue
		}
		data, err := r.fs.DownloadWithURL(ctx, candidate)
		if err != nil {
			return "", nil, types.NewIoError(fmt.Sprintf("failed to load extern %s", name), err)
		}
		return candidate, data, nil
	}
	return "", nil, types.NewIoError(fmt.Sprintf("extern %s not found in %s", name, dir), nil)
}

// JoinURL joins a relative location to base; absolute paths and URLs are returned as is.
func JoinURL(base, location string) string {
	if strings.Contains(location, "://") || filepath.IsAbs(location) || base == "" {
		return location
	}
	if strings.Contains(base, "://") {
		return url.Join(base, location)
	}
	return filepath.Join(base, location)
}

func parentURL(location string) string {
	if strings.Contains(location, "://") {
		parent, _ := url.Split(location, file.Scheme)
		return parent
	}
	return filepath.Dir(location)
}

// New creates a module loader.
func New(opts ...Option) *Service {
	ret := &Service{fs: afs.New(), logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.repository == nil {
		ret.repository = &PathRepository{fs: ret.fs}
	}
	return ret
}
