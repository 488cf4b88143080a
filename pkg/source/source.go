// Package source acquires raw bytes for the decoder. It hands back
// seekable streams over disk images, block devices and remote images;
// every I/O failure surfaces here, before the decoder runs.
package source

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Source is a named, seekable byte stream over a device or image.
type Source interface {
	io.ReadSeeker
	io.Closer
	Name() string
}

// Open resolves name into a Source. http:// and https:// names are
// fetched remotely; everything else is opened as a local path, which
// covers plain image files and block devices alike.
func Open(name string) (Source, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return openRemote(name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", name)
	}
	return f, nil
}
