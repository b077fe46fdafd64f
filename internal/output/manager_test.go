package output

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

func TestManagerRegisterAndComplete(t *testing.T) {
	mgr := NewManager()
	mgr.SetOutput(io.Discard)

	id := mgr.RegisterFunction("https://host/firmware.bin")
	mgr.SetMessage(id, "Downloading")
	mgr.TrackProgress(id, 100, 1000)
	mgr.Complete(id, "")

	info := mgr.outputs["1"]
	if !info.Complete || info.Status != "success" {
		t.Errorf("expected completed success, got %+v", info)
	}
	if info.Progress != "" {
		t.Error("progress line should be cleared on completion")
	}
	if !strings.Contains(info.Message, "firmware.bin") {
		t.Errorf("default completion message should carry the name, got %q", info.Message)
	}
}

func TestManagerErrorKeepsProgress(t *testing.T) {
	mgr := NewManager()
	mgr.SetOutput(io.Discard)

	id := mgr.RegisterFunction("https://host/firmware.bin")
	mgr.TrackProgress(id, 500, 1000)
	mgr.ReportError(id, errors.New("connection reset"))

	info := mgr.outputs["1"]
	if info.Status != "error" || !info.Complete {
		t.Errorf("expected error state, got %+v", info)
	}
	if info.Progress == "" {
		t.Error("failed download should keep its last progress line")
	}
	if len(mgr.errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(mgr.errors))
	}
}

func TestManagerSessionBaseline(t *testing.T) {
	mgr := NewManager()
	mgr.SetOutput(io.Discard)

	id := mgr.RegisterFunction("resumed")
	// First update carries the resume offset and seeds the baseline
	mgr.TrackProgress(id, 4000, 10000)
	info := mgr.outputs["1"]
	if info.sessionStart != 4000 {
		t.Errorf("session baseline = %d, want 4000", info.sessionStart)
	}
	mgr.TrackProgress(id, 6000, 10000)
	if info.sessionStart != 4000 {
		t.Errorf("session baseline must not move, got %d", info.sessionStart)
	}
}

func TestManagerConcurrentUpdates(t *testing.T) {
	mgr := NewManager()
	mgr.SetOutput(io.Discard)
	mgr.StartDisplay()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := mgr.RegisterFunction("worker")
			for i := range 100 {
				mgr.TrackProgress(id, int64(i), 100)
			}
			mgr.Complete(id, "")
		}()
	}
	wg.Wait()
	mgr.StopDisplay()

	if len(mgr.outputs) != 8 {
		t.Errorf("expected 8 registered downloads, got %d", len(mgr.outputs))
	}
}
