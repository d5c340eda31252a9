// internal/monitor/format.go
package monitor

import (
	"fmt"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
)

// Fixed console lines. Rows are aligned under Header.
const (
	IntroLine   = "Monitoring GPSDO regulation loop (press Ctrl+C to stop):"
	HeaderLine  = "Dump | Enabled | 1s Error | 10s Error | 100s Error | DAC Value | State        | Accuracy          | TPulse"
	StoppedLine = "Monitoring stopped."
)

// FormatLine renders one table row for iteration n (1-based).
func FormatLine(n int, s gpsdo.Snapshot) string {
	return fmt.Sprintf("%4d | %-7s | %8d | %9d | %10d | 0x%04X    | %-12s | %-17s | %-6s",
		n,
		boolText(s.Enabled),
		s.Err1s,
		s.Err10s,
		s.Err100s,
		s.DAC,
		s.Status.State,
		s.Status.Accuracy,
		boolText(s.Status.TPulseActive),
	)
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
