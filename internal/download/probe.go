package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
)

// probe issues a header-only request to decide whether a partial local file
// can be resumed and what the full size is. Probe failures are fatal to the
// download: a resume-enabled request either resumes correctly or surfaces
// the error, never silently restarts from zero.
func (d *Downloader) probe(ctx context.Context, url string) (*target, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HEAD request: %v", err)
	}
	log.Debug().Str("op", "download/probe").Msgf("Sending request HEAD %s", url)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error probing %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("probe of %s returned status %d", url, resp.StatusCode)
	}

	filename, err := ResolveFilename(resp)
	if err != nil {
		return nil, err
	}
	t := &target{filename: filename}

	if resp.Header.Get("Accept-Ranges") != "bytes" {
		log.Debug().Str("op", "download/probe").Msgf("Server does not advertise range support for %s", url)
		return t, nil
	}

	info, err := os.Stat(filename)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error checking local file %s: %v", filename, err)
	}
	t.resumeOffset = info.Size()
	if resp.ContentLength > 0 {
		t.totalLength = resp.ContentLength
	}
	log.Debug().Str("op", "download/probe").Msgf("File %s exists with size %d (server total %d)", filename, t.resumeOffset, t.totalLength)
	return t, nil
}
