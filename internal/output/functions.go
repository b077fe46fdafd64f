package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ddaumiller/psa-update/internal/utils"
)

// PrintProgressBar creates a progress bar string
func PrintProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%% %s ", bar, percent*100, StyleSymbols["bullet"]))
}

// FormatETA renders the estimated remaining time given a byte rate
func FormatETA(remaining int64, speed float64) string {
	if speed <= 0 || remaining <= 0 {
		return "ETA=?"
	}
	eta := time.Duration(float64(remaining)/speed) * time.Second
	return fmt.Sprintf("ETA=%s", eta.Round(time.Second))
}

func getTerminalHeight() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= 0 {
		return 24 // Default fallback height
	}
	return height
}

// progressLine renders one indicator's bar, byte counts, speed and ETA.
func progressLine(transferred, total, sessionBytes int64, sessionElapsed float64) string {
	bar := PrintProgressBar(transferred, total, 30)
	counts := fmt.Sprintf("%s / %s", utils.FormatBytes(uint64(max(transferred, 0))), utils.FormatBytes(uint64(max(total, 0))))
	speed := float64(0)
	if sessionElapsed > 0 {
		speed = float64(sessionBytes) / sessionElapsed
	}
	return fmt.Sprintf("%s%s %s %s %s %s",
		bar,
		debugStyle.Render(counts),
		StyleSymbols["bullet"],
		debugStyle.Render(utils.FormatSpeed(sessionBytes, sessionElapsed)),
		StyleSymbols["bullet"],
		debugStyle.Render(FormatETA(total-transferred, speed)))
}
