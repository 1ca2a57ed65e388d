package core

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"
)

const (
	WorkerHeartbeatPrefix = "worker:heartbeat:"
	WorkerHeartbeatTTL    = 45 * time.Second
	heartbeatInterval     = 5 * time.Second
)

// WorkerHeartbeatKey returns Redis key for given worker ID.
func WorkerHeartbeatKey(id string) string {
	return WorkerHeartbeatPrefix + id
}

// WorkerHeartbeat is the liveness record a worker publishes to Redis as JSON.
type WorkerHeartbeat struct {
	WorkerID       string    `json:"worker_id"`
	Hostname       string    `json:"hostname"`
	PID            int       `json:"pid"`
	Concurrency    int       `json:"concurrency"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	Status         string    `json:"status"` // starting|idle|busy
	RunningCount   int       `json:"running_count"`
	CurrentJob     string    `json:"current_job,omitempty"`
	RunningJobs    []string  `json:"running_jobs,omitempty"`
	ProcessedTotal int64     `json:"processed_total"`
	FailedTotal    int64     `json:"failed_total"`
	LastError      string    `json:"last_error,omitempty"`
	MemoryBytes    uint64    `json:"memory_bytes"`
	NumGoroutine   int       `json:"num_goroutine"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaveHeartbeat stores heartbeat JSON with TTL.
func SaveHeartbeat(ctx context.Context, client RedisClientRaw, hb WorkerHeartbeat) error {
	hb.UpdatedAt = time.Now()
	data, err := json.Marshal(hb)
	if err != nil {
		return err
	}
	return client.Set(ctx, WorkerHeartbeatKey(hb.WorkerID), data, WorkerHeartbeatTTL).Err()
}

// HeartbeatState aggregates the counters of one worker process.
type HeartbeatState struct {
	mu      sync.Mutex
	hb      WorkerHeartbeat
	running map[string]time.Time
}

func NewHeartbeatState(workerID, hostname string, concurrency int) *HeartbeatState {
	now := time.Now()
	return &HeartbeatState{
		hb: WorkerHeartbeat{
			WorkerID:    workerID,
			Hostname:    hostname,
			PID:         os.Getpid(),
			Concurrency: concurrency,
			Status:      "starting",
			StartedAt:   now,
			UpdatedAt:   now,
			RunningJobs: []string{},
		},
		running: make(map[string]time.Time),
	}
}

// Start flushes immediately and then every heartbeatInterval until ctx is done.
func (s *HeartbeatState) Start(ctx context.Context, client RedisClientRaw) {
	s.mu.Lock()
	if s.hb.Status == "starting" {
		s.hb.Status = "idle"
	}
	s.mu.Unlock()
	s.Flush(ctx, client)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx, client)
		}
	}
}

func (s *HeartbeatState) JobStarted(job string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hb.Status = "busy"
	s.running[job] = time.Now()
	s.updateRunningFieldsLocked()
}

func (s *HeartbeatState) JobFinished(job string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, job)
	s.hb.ProcessedTotal++
	if err != nil {
		s.hb.FailedTotal++
		s.hb.LastError = err.Error()
	}
	if len(s.running) == 0 {
		s.hb.Status = "idle"
	}
	s.updateRunningFieldsLocked()
}

// Snapshot returns a copy of the current heartbeat.
func (s *HeartbeatState) Snapshot() WorkerHeartbeat {
	s.mu.Lock()
	defer s.mu.Unlock()
	hb := s.hb
	hb.RunningJobs = append([]string(nil), s.hb.RunningJobs...)
	return hb
}

// updateRunningFieldsLocked lists at most three running jobs, oldest first.
func (s *HeartbeatState) updateRunningFieldsLocked() {
	jobs := make([]string, 0, len(s.running))
	for job := range s.running {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return s.running[jobs[i]].Before(s.running[jobs[j]]) })
	if len(jobs) > 3 {
		jobs = jobs[:3]
	}
	s.hb.RunningCount = len(s.running)
	s.hb.RunningJobs = jobs
	s.hb.CurrentJob = ""
	if len(jobs) > 0 {
		s.hb.CurrentJob = jobs[0]
	}
}

func (s *HeartbeatState) Flush(ctx context.Context, client RedisClientRaw) {
	s.mu.Lock()
	s.hb.UptimeSeconds = int64(time.Since(s.hb.StartedAt).Seconds())
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.hb.MemoryBytes = ms.Sys
	s.hb.NumGoroutine = runtime.NumGoroutine()
	hb := s.hb
	hb.RunningJobs = append([]string(nil), s.hb.RunningJobs...)
	s.mu.Unlock()
	if err := SaveHeartbeat(ctx, client, hb); err != nil && ctx.Err() == nil {
		log.Printf("[heartbeat] save failed: %v", err)
	}
}
