package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned when the cron expression cannot be parsed
	ErrInvalidSchedule = errors.New("invalid sweep schedule")

	// ErrAlreadyRunning is returned when Start is called twice
	ErrAlreadyRunning = errors.New("sweeper is already running")
)
