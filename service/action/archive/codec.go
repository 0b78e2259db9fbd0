package archive

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

// Compression identifies the stream wrapping a tarball.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
	Xz
)

// CompressionOf infers the compression from the archive name; unknown suffixes default to gzip.
func CompressionOf(name string) Compression {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return Bzip2
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return Xz
	case strings.HasSuffix(lower, ".tar"):
		return None
	}
	return Gzip
}

func (c Compression) writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Bzip2:
		return bzip2.NewWriter(w, nil)
	case Xz:
		return xz.NewWriter(w)
	case None:
		return nopWriteCloser{w}, nil
	}
	return gzip.NewWriter(w), nil
}

func (c Compression) reader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case Bzip2:
		return bzip2.NewReader(r, nil)
	case Xz:
		reader, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(reader), nil
	case None:
		return io.NopCloser(r), nil
	}
	return gzip.NewReader(r)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
