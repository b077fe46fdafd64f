package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type FunctionOutput struct {
	ID          int
	Name        string
	Status      string
	Message     string
	Progress    string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
	Index       int

	// Session baseline for rate estimation. Seeded by the first progress
	// update so a resumed transfer's pre-existing bytes do not inflate
	// speed and ETA figures.
	sessionStart   int64
	sessionSeeded  bool
	sessionStarted time.Time
}

type ErrorReport struct {
	FunctionName string
	Error        error
	Time         time.Time
}

// Manager is a shared display surface for concurrently running downloads.
// Workers hold only the integer ID returned by RegisterFunction; all state
// behind it is guarded by the manager's lock.
type Manager struct {
	outputs       map[string]*FunctionOutput
	mutex         sync.RWMutex
	out           io.Writer
	numLines      int
	errors        []ErrorReport
	doneCh        chan struct{}
	displayTick   time.Duration
	functionCount int
	displayWg     sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		outputs:     make(map[string]*FunctionOutput),
		errors:      []ErrorReport{},
		out:         os.Stdout,
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
	}
}

// SetOutput redirects display rendering, primarily for tests.
func (m *Manager) SetOutput(w io.Writer) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.out = w
}

func (m *Manager) RegisterFunction(name string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.functionCount++
	m.outputs[fmt.Sprint(m.functionCount)] = &FunctionOutput{
		ID:          m.functionCount,
		Name:        name,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
		Index:       m.functionCount,
	}
	return m.functionCount
}

func (m *Manager) SetMessage(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[fmt.Sprint(id)]; exists {
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetStatus(id int, status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[fmt.Sprint(id)]; exists {
		info.Status = status
		info.LastUpdated = time.Now()
	}
}

// TrackProgress records a cumulative byte count for one download and
// re-renders its progress line. The first call seeds the session baseline,
// resetting rate and ETA estimation for resumed transfers.
func (m *Manager) TrackProgress(id int, transferred, total int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	info, exists := m.outputs[fmt.Sprint(id)]
	if !exists {
		return
	}
	if !info.sessionSeeded {
		info.sessionSeeded = true
		info.sessionStart = transferred
		info.sessionStarted = time.Now()
	}
	sessionBytes := transferred - info.sessionStart
	sessionElapsed := time.Since(info.sessionStarted).Seconds()
	info.Progress = progressLine(transferred, total, sessionBytes, sessionElapsed)
	info.LastUpdated = time.Now()
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[fmt.Sprint(id)]; exists {
		info.Progress = ""
		if message == "" {
			info.Message = fmt.Sprintf("Completed %s", info.Name)
		} else {
			info.Message = message
		}
		info.Complete = true
		info.Status = "success"
		info.LastUpdated = time.Now()
	}
}

// ReportError marks a download failed. Its progress line is left in the
// last-updated state rather than cleared.
func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[fmt.Sprint(id)]; exists {
		info.Complete = true
		info.Status = "error"
		info.Error = err
		info.Message = fmt.Sprintf("Failed %s", info.Name)
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{
			FunctionName: info.Name,
			Error:        err,
			Time:         time.Now(),
		})
	}
}

func (m *Manager) GetStatusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func (m *Manager) sortFunctions() (active, pending, completed []*FunctionOutput) {
	var allFuncs []*FunctionOutput
	// Sort by index (registration order)
	for _, info := range m.outputs {
		allFuncs = append(allFuncs, info)
	}
	sort.Slice(allFuncs, func(i, j int) bool {
		return allFuncs[i].Index < allFuncs[j].Index
	})
	for _, f := range allFuncs {
		if f.Complete {
			completed = append(completed, f)
		} else if f.Status == "pending" && f.Message == "" {
			pending = append(pending, f)
		} else {
			active = append(active, f)
		}
	}
	return active, pending, completed
}

func (m *Manager) updateDisplay() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	availableLines := getTerminalHeight() - 3 // Leave some buffer for prompt

	if m.numLines > 0 {
		fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
	}

	lineCount := 0
	activeFuncs, pendingFuncs, completedFuncs := m.sortFunctions()

	printFunc := func(f *FunctionOutput) {
		statusDisplay := m.GetStatusIndicator(f.Status)
		elapsed := time.Since(f.StartTime).Round(time.Second)
		if f.Complete {
			elapsed = f.LastUpdated.Sub(f.StartTime).Round(time.Second)
		}
		var styledMessage string
		switch f.Status {
		case "success":
			styledMessage = successStyle.Render(f.Message)
		case "error":
			styledMessage = errorStyle.Render(f.Message)
		default:
			styledMessage = pendingStyle.Render(f.Message)
		}
		fmt.Fprintf(m.out, "%s%s %s %s\n", strings.Repeat(" ", 2), statusDisplay, debugStyle.Render(elapsed.String()), styledMessage)
		lineCount++
		if f.Progress != "" && lineCount < availableLines {
			fmt.Fprintf(m.out, "%s%s\n", strings.Repeat(" ", 2+4), f.Progress)
			lineCount++
		}
	}

	for _, f := range activeFuncs {
		if lineCount >= availableLines {
			break
		}
		printFunc(f)
	}
	for range pendingFuncs {
		if lineCount >= availableLines {
			break
		}
		fmt.Fprintf(m.out, "%s%s %s\n", strings.Repeat(" ", 2), m.GetStatusIndicator("pending"), pendingStyle.Render("Waiting..."))
		lineCount++
	}
	for _, f := range completedFuncs {
		if lineCount >= availableLines {
			break
		}
		printFunc(f)
	}
	m.numLines = lineCount
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				m.ShowSummary()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, err := range m.errors {
		fmt.Fprintf(m.out, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", err.Time.Format("15:04:05"))),
			errorStyle.Render(err.FunctionName))
		fmt.Fprintf(m.out, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", err.Error)))
	}
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	fmt.Fprintln(m.out)
	var success, failures int
	for _, info := range m.outputs {
		if info.Status == "success" {
			success++
		} else if info.Status == "error" {
			failures++
		}
	}
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
	if failures > 0 {
		fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d", failures, len(m.outputs))))
	}
	m.displayErrors()
	fmt.Fprintln(m.out)
}
