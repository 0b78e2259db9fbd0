// Package download implements the download action: an HTTP GET written to a local file.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/policy"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/transaction"
)

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 30 * time.Second

// Service downloads remote resources
type Service struct {
	fs     afs.Service
	client *http.Client
	retry  *policy.Retry
}

type Input struct {
	URL     string `json:"url,omitempty" description:"resource to GET"`
	Dst     string `json:"dst,omitempty" description:"local file, defaults to the URL base name"`
	Auth    string `json:"auth,omitempty" description:"Authorization header value; a bare token is sent as Bearer"`
	Timeout int    `json:"timeout,omitempty" description:"per attempt timeout in seconds"`
}

type Output struct {
	Dst         string `json:"dst,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Attempts    int    `json:"attempts,omitempty"`
}

// retryable marks failures worth another attempt.
type retryable struct{ error }

func (r retryable) Unwrap() error { return r.error }

// Download fetches input.URL into input.Dst, retrying transient failures.
func (s *Service) Download(ctx context.Context, input *Input, output *Output) error {
	if input.URL == "" {
		return types.NewArgsError("download requires url")
	}
	session := execution.SessionOf(ctx)
	dst := input.Dst
	if dst == "" {
		dst = path.Base(strings.SplitN(input.URL, "?", 2)[0])
	}
	dst = session.Path(dst)
	timeout := DefaultTimeout
	if input.Timeout > 0 {
		timeout = time.Duration(input.Timeout) * time.Second
	}
	display := execution.Display(ctx, "url", input.URL)
	hold, err := transaction.Snapshot(ctx, s.fs, dst)
	if err != nil {
		return types.NewIoError("failed to snapshot "+dst, err)
	}
	session.Hold(hold)
	for {
		output.Attempts++
		err = s.fetch(ctx, input, dst, timeout, output)
		if err == nil {
			break
		}
		var transient retryable
		if !errors.As(err, &transient) {
			return err
		}
		more, delay := s.retry.Next(output.Attempts)
		if !more {
			return unwrap(err)
		}
		session.Logger.Warnw("download failed, retrying", "url", display, "attempt", output.Attempts, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return types.NewCancelledError(ctx.Err())
		case <-time.After(delay):
		}
	}
	output.Dst = dst
	session.Logger.Infow("downloaded", "url", display, "dst", dst, "size", output.Size)
	return nil
}

func (s *Service) fetch(ctx context.Context, input *Input, dst string, timeout time.Duration, output *Output) error {
	display := execution.Display(ctx, "url", input.URL)
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	request, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, input.URL, nil)
	if err != nil {
		return types.NewArgsError("invalid url %s: %v", display, err)
	}
	if auth := strings.TrimSpace(input.Auth); auth != "" {
		if !strings.Contains(auth, " ") {
			auth = "Bearer " + auth
		}
		request.Header.Set("Authorization", auth)
	}
	response, err := s.client.Do(request)
	if err != nil {
		return s.classify(ctx, attemptCtx, display, err)
	}
	defer response.Body.Close()
	if response.StatusCode >= http.StatusInternalServerError || response.StatusCode == http.StatusTooManyRequests {
		return retryable{types.NewNetError(fmt.Sprintf("GET %s: %s", display, response.Status), nil)}
	}
	if response.StatusCode >= http.StatusBadRequest {
		return types.NewNetError(fmt.Sprintf("GET %s: %s", display, response.Status), nil)
	}
	counter := &countingReader{Reader: response.Body}
	if err = s.fs.Upload(attemptCtx, dst, file.DefaultFileOsMode, counter); err != nil {
		if attemptCtx.Err() != nil {
			return s.classify(ctx, attemptCtx, display, attemptCtx.Err())
		}
		return types.NewIoError("failed to write "+dst, err)
	}
	output.Size = counter.n
	output.ContentType = response.Header.Get("Content-Type")
	return nil
}

func (s *Service) classify(ctx, attemptCtx context.Context, display string, err error) error {
	if ctx.Err() != nil {
		return types.NewCancelledError(ctx.Err())
	}
	var netErr net.Error
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return retryable{types.NewNetError("timeout: GET "+display, err)}
	}
	return retryable{types.NewNetError("GET "+display, err)}
}

func unwrap(err error) error {
	var transient retryable
	if errors.As(err, &transient) {
		return transient.error
	}
	return err
}

type countingReader struct {
	io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.n += int64(n)
	return n, err
}

// New creates a download service
func New(opts ...Option) *Service {
	ret := &Service{fs: afs.New(), client: http.DefaultClient, retry: policy.DefaultRetry()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
