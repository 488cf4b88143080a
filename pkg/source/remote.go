package source

import (
	"io"
	"net/http"

	"github.com/jochasinga/requests"
	"github.com/pkg/errors"
	"github.com/xaionaro-go/bytesextra"
)

// remote keeps a fetched image in memory behind a seeker so extended
// chain walking works the same as on a local file.
type remote struct {
	io.ReadWriteSeeker
	name string
}

func openRemote(url string) (Source, error) {
	addMimeType := func(r *requests.Request) {
		r.Header.Add("Accept", "*/*")
	}

	resp, err := requests.Get(url, addMimeType)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to get %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read body of %s", url)
	}

	return &remote{
		ReadWriteSeeker: bytesextra.NewReadWriteSeeker(body),
		name:            url,
	}, nil
}

func (r *remote) Name() string {
	return r.name
}

func (r *remote) Close() error {
	return nil
}
