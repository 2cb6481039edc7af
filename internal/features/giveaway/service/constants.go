package service

import "time"

const (
	// Per-giveaway lock guarding the capacity counter and close transition
	lockTTL          = 10 * time.Second
	lockPollInterval = 5 * time.Millisecond
	lockWaitTimeout  = 3 * time.Second

	// Closer worker
	closerMaxRetries = 3
	closerRetryDelay = 500 * time.Millisecond
)
