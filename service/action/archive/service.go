// Package archive implements the tar and untar actions.
package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/transaction"
)

type PackInput struct {
	Src  string `json:"src,omitempty" description:"file or directory to pack"`
	File string `json:"file,omitempty" description:"archive location"`
}

type UnpackInput struct {
	File string `json:"file,omitempty" description:"archive location"`
	Dst  string `json:"dst,omitempty" description:"destination directory"`
}

type Output struct {
	File  string   `json:"file,omitempty"`
	Files []string `json:"files,omitempty"`
}

type service struct {
	fs afs.Service
}

func (s *service) pack(ctx context.Context, input *PackInput, output *Output) error {
	if input.Src == "" || input.File == "" {
		return types.NewArgsError("tar requires src and file")
	}
	session := execution.SessionOf(ctx)
	src, location := session.Path(input.Src), session.Path(input.File)
	hold, err := transaction.Snapshot(ctx, s.fs, location)
	if err != nil {
		return types.NewIoError("failed to snapshot "+location, err)
	}
	if err = os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return types.NewIoError("failed to create parent of "+location, err)
	}
	file, err := os.Create(location)
	if err != nil {
		return types.NewIoError("failed to create "+location, err)
	}
	session.Hold(hold)
	if err = s.write(ctx, file, CompressionOf(location), src, output); err != nil {
		_ = file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return types.NewIoError("failed to close "+location, err)
	}
	output.File = location
	session.Logger.Infow("packed", "src", src, "file", location, "entries", len(output.Files))
	return nil
}

func (s *service) write(ctx context.Context, dest io.Writer, compression Compression, src string, output *Output) error {
	compressed, err := compression.writer(dest)
	if err != nil {
		return types.NewIoError("failed to open compressor", err)
	}
	writer := tar.NewWriter(compressed)
	base := filepath.Dir(src)
	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(name)
		if info.IsDir() {
			header.Name += "/"
		}
		if err = writer.WriteHeader(header); err != nil {
			return err
		}
		output.Files = append(output.Files, header.Name)
		if !info.Mode().IsRegular() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return types.NewCancelledError(ctx.Err())
		}
		return types.NewIoError("failed to pack "+src, err)
	}
	if err = writer.Close(); err != nil {
		return types.NewIoError("failed to finish tar stream", err)
	}
	if err = compressed.Close(); err != nil {
		return types.NewIoError("failed to finish compression", err)
	}
	return nil
}

func (s *service) unpack(ctx context.Context, input *UnpackInput, output *Output) error {
	if input.File == "" {
		return types.NewArgsError("untar requires file")
	}
	session := execution.SessionOf(ctx)
	location := session.Path(input.File)
	dst := session.Path(input.Dst)
	if input.Dst == "" {
		dst = session.WorkDir
	}
	file, err := os.Open(location)
	if err != nil {
		return types.NewIoError("failed to open "+location, err)
	}
	defer file.Close()
	compressed, err := CompressionOf(location).reader(file)
	if err != nil {
		return types.NewIoError("failed to open decompressor for "+location, err)
	}
	defer compressed.Close()
	reader := tar.NewReader(compressed)
	for {
		if err := ctx.Err(); err != nil {
			return types.NewCancelledError(err)
		}
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.NewIoError("failed to read "+location, err)
		}
		target := filepath.Join(dst, filepath.FromSlash(header.Name))
		if target != filepath.Clean(dst) && !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) {
			return types.NewIoError(fmt.Sprintf("entry %s escapes %s", header.Name, dst), nil)
		}
		if err = s.extract(ctx, session, reader, header, target); err != nil {
			return err
		}
		output.Files = append(output.Files, target)
	}
	output.File = location
	session.Logger.Infow("unpacked", "file", location, "dst", dst, "entries", len(output.Files))
	return nil
}

func (s *service) extract(ctx context.Context, session *execution.Session, reader io.Reader, header *tar.Header, target string) error {
	switch header.Typeflag {
	case tar.TypeDir:
		if _, err := os.Stat(target); os.IsNotExist(err) {
			session.Hold(transaction.Remove(s.fs, target))
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return types.NewIoError("failed to create "+target, err)
		}
		return nil
	case tar.TypeReg:
		hold, err := transaction.Snapshot(ctx, s.fs, target)
		if err != nil {
			return types.NewIoError("failed to snapshot "+target, err)
		}
		if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return types.NewIoError("failed to create parent of "+target, err)
		}
		file, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode)&os.ModePerm)
		if err != nil {
			return types.NewIoError("failed to create "+target, err)
		}
		session.Hold(hold)
		_, err = io.Copy(file, reader)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return types.NewIoError("failed to write "+target, err)
		}
	}
	return nil
}
