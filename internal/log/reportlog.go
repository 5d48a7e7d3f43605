package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// ReportLogger records every HID report written to the gadget device.
type ReportLogger interface {
	Log(report []byte)
}

// reportLogger implements ReportLogger with thread-safe output.
type reportLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewReportLogger creates a ReportLogger. A nil writer yields a no-op logger.
func NewReportLogger(w io.Writer) ReportLogger {
	return &reportLogger{w: w}
}

// Log emits a single-line hex dump of one report with a timestamp.
func (r *reportLogger) Log(report []byte) {
	if r.w == nil || len(report) == 0 {
		return
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range report {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s report: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		len(report),
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
