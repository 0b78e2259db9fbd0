package tpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/transaction"
)

// Service renders handlebars templates to files
type Service struct {
	fs afs.Service
}

// Render renders input.Src into input.Dst; the previous destination content is held for undo.
func (s *Service) Render(ctx context.Context, input *Input, output *Output) error {
	input.Init()
	if input.Src == "" || input.Dst == "" {
		return types.NewArgsError("tpl requires src and dst")
	}
	session := execution.SessionOf(ctx)
	src := session.Path(input.Src)
	dst := session.Path(input.Dst)
	source, err := s.fs.DownloadWithURL(ctx, src)
	if err != nil {
		return types.NewIoError(fmt.Sprintf("failed to read template %s", src), err)
	}
	var data interface{} = input.Data
	if input.Data == nil {
		data = templateData(value.NewObject(execution.VarsOf(ctx).Flatten()))
	}
	rendered, err := raymond.Render(string(source), data)
	if err != nil {
		return types.NewTplError(fmt.Sprintf("failed to render %s", src), err)
	}
	var previous []byte
	if exists, _ := s.fs.Exists(ctx, dst); exists {
		if previous, err = s.fs.DownloadWithURL(ctx, dst); err != nil {
			return types.NewIoError(fmt.Sprintf("failed to read %s", dst), err)
		}
	}
	hold, err := transaction.Snapshot(ctx, s.fs, dst)
	if err != nil {
		return types.NewIoError(fmt.Sprintf("failed to back up %s", dst), err)
	}
	if err = s.fs.Upload(ctx, dst, file.DefaultFileOsMode, strings.NewReader(rendered)); err != nil {
		return types.NewIoError(fmt.Sprintf("failed to write %s", dst), err)
	}
	session.Hold(hold)
	output.Dst = dst
	diff, err := GenerateDiff(previous, []byte(rendered), input.Dst, 3)
	switch {
	case errors.Is(err, ErrNoChange):
		session.Logger.Debugw("tpl unchanged", "dst", dst)
	case err != nil:
		session.Logger.Debugw("tpl diff failed", "dst", dst, "error", err)
	default:
		output.Stats = diff.Stats
		session.Logger.Infow("tpl rendered", "dst", dst, "insertions", diff.Stats.Insertions, "deletions", diff.Stats.Deletions, "hunks", diff.Stats.Hunks)
	}
	return nil
}

// templateData exposes object keys both lower and upper cased so {{name}} and {{NAME}} resolve.
func templateData(v value.Value) interface{} {
	switch v.Kind {
	case value.KindObject:
		ret := make(map[string]interface{}, 2*len(v.Object))
		for k, item := range v.Object {
			converted := templateData(item)
			ret[k] = converted
			ret[strings.ToLower(k)] = converted
		}
		return ret
	case value.KindList:
		ret := make([]interface{}, len(v.List))
		for i, item := range v.List {
			ret[i] = templateData(item)
		}
		return ret
	}
	return v.Interface()
}

// New creates a template service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
