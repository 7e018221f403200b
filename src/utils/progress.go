package utils

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// ProgressLogger emits rate/ETA lines for long batch loops. It has no
// effect on loop logic and logs on the first, last and every Nth item.
type ProgressLogger struct {
	prefix string
	total  int
	every  int
	start  time.Time
}

func NewProgressLogger(prefix string, total, every int) *ProgressLogger {
	return &ProgressLogger{
		prefix: prefix,
		total:  total,
		every:  every,
		start:  time.Now(),
	}
}

// Log reports progress for 1-based item index i.
func (p *ProgressLogger) Log(i int) {
	if p.total <= 0 {
		return
	}

	if i != 1 && i != p.total && (p.every <= 0 || i%p.every != 0) {
		return
	}

	elapsed := time.Since(p.start).Seconds()
	rate := float64(i)
	if elapsed > 0 {
		rate = float64(i) / elapsed
	}

	eta := 0.0
	if rate > 0 {
		eta = float64(p.total-i) / rate
	}

	log.Infof("%s: %d/%d (%.1f%%) | %.2f it/s | ETA %.1fs", p.prefix, i, p.total, 100*float64(i)/float64(p.total), rate, eta)
}
