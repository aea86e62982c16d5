package pipeline

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"
)

// defaultPollInterval is how often the supervisor samples process memory.
const defaultPollInterval = 5 * time.Second

// memorySupervisor polls the process RSS and hard-cancels the batch when
// it exceeds the configured ceiling. Cancellation loses in-flight work but
// never completed files, since every worker writes its output atomically.
type memorySupervisor struct {
	ceiling  uint64
	interval time.Duration
	hit      atomic.Bool
}

func newMemorySupervisor(ceiling uint64, interval time.Duration) *memorySupervisor {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &memorySupervisor{ceiling: ceiling, interval: interval}
}

// tripped reports whether the supervisor tore the run down.
func (m *memorySupervisor) tripped() bool { return m.hit.Load() }

// watch blocks until the context ends or the ceiling is breached, in which
// case it marks itself tripped and cancels the run.
func (m *memorySupervisor) watch(ctx context.Context, cancel context.CancelFunc) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logrus.Warnf("memory supervisor disabled: %v", err)
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mi, err := proc.MemoryInfo()
			if err != nil {
				logrus.Warnf("memory supervisor: read RSS: %v", err)
				continue
			}
			if mi.RSS > m.ceiling {
				logrus.Errorf("process RSS %d bytes exceeds ceiling %d bytes, tearing down pool",
					mi.RSS, m.ceiling)
				m.hit.Store(true)
				cancel()
				return
			}
		}
	}
}
