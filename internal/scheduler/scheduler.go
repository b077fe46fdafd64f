package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/ddaumiller/psa-update/internal/download"
	"github.com/ddaumiller/psa-update/internal/output"
	"github.com/ddaumiller/psa-update/internal/utils"
)

// Run fans the requests out across a bounded pool of workers, each running
// the probe/transfer pipeline against the shared display. Every submitted
// request is started; a failure does not cancel siblings already running,
// but the first error becomes the batch result. Completion order is not
// submission order, so results carry their filenames rather than positions.
func Run(ctx context.Context, requests []download.Request, numWorkers int, clientConfig utils.HTTPClientConfig, outputMgr *output.Manager) ([]download.Result, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(requests) {
		numWorkers = len(requests)
	}

	outputMgr.StartDisplay()
	defer outputMgr.StopDisplay()

	jobCh := make(chan download.Job, len(requests))
	for _, request := range requests {
		jobCh <- download.Job{ID: uuid.NewString(), Request: request}
	}
	close(jobCh)

	var (
		mu       sync.Mutex
		results  []download.Result
		firstErr error
	)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := utils.NewUpdateHTTPClient(clientConfig)
			downloader := download.NewDownloader(client)
			for job := range jobCh {
				funcID := outputMgr.RegisterFunction(job.Request.URL)
				outputMgr.SetStatus(funcID, "pending")
				outputMgr.SetMessage(funcID, fmt.Sprintf("Downloading %s", job.Request.URL))
				job.Progress = func(transferred, total int64) {
					outputMgr.TrackProgress(funcID, transferred, total)
				}
				result, err := downloader.Run(ctx, job)
				if err != nil {
					outputMgr.ReportError(funcID, err)
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("failed to download %s: %w", job.Request.URL, err)
					}
					mu.Unlock()
					continue
				}
				outputMgr.Complete(funcID, fmt.Sprintf("Completed %s", result.Filename))
				mu.Lock()
				results = append(results, *result)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
