package download

import (
	"context"

	"github.com/ddaumiller/psa-update/internal/utils"
)

// Request describes a single download to perform. Resume is caller policy,
// not a statement about server capability.
type Request struct {
	URL    string
	Resume bool
}

// Result is the terminal outcome of a successful download: the path of the
// file materialized in the working directory, keyed by the identity of the
// job that produced it. Batch completion order is not submission order, so
// the key is how callers relate results back to what they asked for.
type Result struct {
	JobID    string
	Filename string
}

// ProgressFunc receives cumulative byte counts for one transfer. The first
// call carries the resume offset so rate estimation can exclude bytes that
// were already on disk.
type ProgressFunc func(transferred, total int64)

// Job couples a request with its identity and progress sink.
type Job struct {
	ID       string
	Request  Request
	Progress ProgressFunc
}

// target is the reconciled local/remote state a transfer starts from. It is
// computed once, immediately before the transfer, and never mutated after.
type target struct {
	filename     string
	resumeOffset int64
	totalLength  int64
}

// completed reports whether the local file already holds every byte the
// server advertised.
func (t *target) completed() bool {
	return t.totalLength > 0 && t.resumeOffset == t.totalLength
}

type Downloader struct {
	client utils.HTTPDoer
}

func NewDownloader(client utils.HTTPDoer) *Downloader {
	return &Downloader{client: client}
}

// Run performs one download: probe for resumable state when the request
// allows it, then transfer. A download that is already complete on disk
// returns without issuing a transfer request.
func (d *Downloader) Run(ctx context.Context, job Job) (*Result, error) {
	t := &target{}
	if job.Request.Resume {
		probed, err := d.probe(ctx, job.Request.URL)
		if err != nil {
			return nil, err
		}
		t = probed
		if t.completed() {
			if job.Progress != nil {
				job.Progress(t.totalLength, t.totalLength)
			}
			return &Result{JobID: job.ID, Filename: t.filename}, nil
		}
	}
	return d.transfer(ctx, job, t)
}
