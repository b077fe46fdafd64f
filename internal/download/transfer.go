package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ddaumiller/psa-update/internal/utils"
)

// transfer streams the response body to disk, appending when a resume offset
// was established by the probe. The filename is resolved again from this
// response: the probe and the transfer are separate round-trips, and a
// server that changes its mind between them must not corrupt another file.
func (d *Downloader) transfer(ctx context.Context, job Job, t *target) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.Request.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GET request: %v", err)
	}
	if t.resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", t.resumeOffset))
		log.Debug().Str("op", "download/transfer").Str("job", job.ID).Msgf("Resuming download of %s from offset %d", t.filename, t.resumeOffset)
	}

	log.Debug().Str("op", "download/transfer").Str("job", job.ID).Msgf("Sending request GET %s", job.Request.URL)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing GET %s: %w", job.Request.URL, err)
	}
	defer resp.Body.Close()

	if t.resumeOffset > 0 && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("server ignored range request for %s (status %d)", job.Request.URL, resp.StatusCode)
	}
	if t.resumeOffset == 0 && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, job.Request.URL)
	}

	filename, err := ResolveFilename(resp)
	if err != nil {
		return nil, err
	}
	if t.resumeOffset > 0 && filename != t.filename {
		return nil, fmt.Errorf("filename changed between probe and transfer: %s became %s", t.filename, filename)
	}

	// On resume this response's Content-Length is only the remainder; the
	// probe already learned the full size.
	totalLength := t.totalLength
	if t.resumeOffset == 0 && resp.ContentLength > 0 {
		totalLength = resp.ContentLength
	}

	var outFile *os.File
	if t.resumeOffset == 0 {
		log.Debug().Str("op", "download/transfer").Msgf("Opening %s in create mode", filename)
		outFile, err = os.Create(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create file %s: %v", filename, err)
		}
	} else {
		log.Debug().Str("op", "download/transfer").Msgf("Opening %s in append mode for resume", filename)
		outFile, err = os.OpenFile(filename, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s in append mode: %v", filename, err)
		}
	}
	defer outFile.Close()
	writer := bufio.NewWriter(outFile)

	progressCh := make(chan int64, 100)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		totalTransferred := t.resumeOffset
		if job.Progress != nil {
			// Initial update seeds the session baseline so speed and ETA
			// estimation exclude bytes that were already on disk.
			job.Progress(totalTransferred, totalLength)
		}
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case n, ok := <-progressCh:
				if !ok {
					if job.Progress != nil {
						job.Progress(totalTransferred, totalLength)
					}
					return
				}
				totalTransferred += n
			case <-ticker.C:
				if job.Progress != nil {
					job.Progress(totalTransferred, totalLength)
				}
			}
		}
	}()
	defer func() {
		close(progressCh)
		<-progressDone
	}()

	written := t.resumeOffset
	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("download of %s cancelled: %w", filename, ctx.Err())
		default:
		}
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := writer.Write(buffer[:bytesRead]); writeErr != nil {
				return nil, fmt.Errorf("error writing to file %s: %v", filename, writeErr)
			}
			written += int64(bytesRead)
			progressCh <- int64(bytesRead)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			// Wrapped so a read aborted by context cancellation stays
			// recognizable to the caller.
			return nil, fmt.Errorf("error reading response body for %s: %w", filename, readErr)
		}
	}

	if err := writer.Flush(); err != nil {
		return nil, fmt.Errorf("error flushing file %s: %v", filename, err)
	}
	if totalLength > 0 && written != totalLength {
		return nil, fmt.Errorf("incomplete download of %s: got %d of %d bytes", filename, written, totalLength)
	}
	log.Debug().Str("op", "download/transfer").Str("job", job.ID).Msgf("Finished download of %s (%d bytes)", filename, written)
	return &Result{JobID: job.ID, Filename: filename}, nil
}
