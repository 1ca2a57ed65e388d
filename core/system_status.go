package core

import (
	"context"
	"log"
	"runtime"
	"time"
)

// SystemStatus is the aggregated view behind /admin/system/status.
type SystemStatus struct {
	Queue struct {
		Pending    int64 `json:"pending"`
		Processing int64 `json:"processing"`
	} `json:"queue"`
	Workers struct {
		Active int `json:"active"`
		Total  int `json:"total"`
	} `json:"workers"`
	Submissions map[string]int64 `json:"submissions"`
	Memory      struct {
		AllocBytes uint64 `json:"alloc_bytes"`
		SysBytes   uint64 `json:"sys_bytes"`
	} `json:"memory"`
	NumGoroutine  int   `json:"num_goroutine"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// StatusCounter reports submission counts per status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// CollectSystemStatus is best-effort: a failing source leaves its section zeroed.
func CollectSystemStatus(ctx context.Context, metrics *MetricsService, counter StatusCounter, startedAt time.Time) SystemStatus {
	var st SystemStatus

	if metrics != nil {
		if qm, err := metrics.Queue(ctx); err == nil {
			st.Queue.Pending = qm.Pending
			st.Queue.Processing = qm.Processing
		} else {
			log.Printf("[status] queue metrics: %v", err)
		}
		workers, _ := metrics.Workers(ctx)
		st.Workers.Total = len(workers)
		for _, w := range workers {
			if w.Status != "starting" {
				st.Workers.Active++
			}
		}
	}

	if counter != nil {
		if counts, err := counter.CountByStatus(ctx); err == nil {
			st.Submissions = counts
		} else {
			log.Printf("[status] submission counts: %v", err)
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	st.Memory.AllocBytes = ms.Alloc
	st.Memory.SysBytes = ms.Sys
	st.NumGoroutine = runtime.NumGoroutine()

	if !startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(startedAt).Seconds())
	}
	return st
}
