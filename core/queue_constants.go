package core

import "time"

// Redis keys and timings shared by the API (producer) and the worker (consumer).
const (
	PendingQueueKey    = "pending_submissions"
	ProcessingQueueKey = "processing_submissions"
	// DefaultVisibilityTimeout is how long a reserved job stays invisible before the
	// reclaimer hands it to another worker.
	DefaultVisibilityTimeout = 30 * time.Second
	ReclaimInterval          = 15 * time.Second
	// MaxSubmissionRetries is the number of retries before a submission is marked gagal.
	MaxSubmissionRetries = 3
)
