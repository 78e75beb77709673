package converter

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Progress counts raw files across all concurrently converted scenes and
// logs coarse completion milestones. All methods are safe for concurrent
// use.
type Progress struct {
	log zerolog.Logger

	toProcess  int64
	processed  int64
	lastDecile int64
}

// NewProgress returns a counter logging through log.
func NewProgress(log zerolog.Logger) *Progress {
	return &Progress{log: log}
}

// AddToProcess grows the expected file total.
func (p *Progress) AddToProcess(n int) {
	atomic.AddInt64(&p.toProcess, int64(n))
}

// AddProcessed records n finished (converted or skipped) files.
func (p *Progress) AddProcessed(n int) {
	processed := atomic.AddInt64(&p.processed, int64(n))
	total := atomic.LoadInt64(&p.toProcess)
	if total == 0 {
		return
	}
	decile := processed * 10 / total
	if prev := atomic.LoadInt64(&p.lastDecile); decile > prev &&
		atomic.CompareAndSwapInt64(&p.lastDecile, prev, decile) {
		p.log.Info().
			Int64("processed", processed).
			Int64("total", total).
			Msgf("%d%% of files processed", decile*10)
	}
}

// Processed reports the number of finished files.
func (p *Progress) Processed() int64 {
	return atomic.LoadInt64(&p.processed)
}
