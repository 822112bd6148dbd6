package common

import (
	"io/fs"
	"path/filepath"
)

const (
	AppName    = "stagehand"
	TmpDirBase = "/tmp/"
)

func GetTmpDir() string {
	return filepath.Join(TmpDirBase, AppName) + "/"
}

// Ordered logger field keys. The formatter displays these before any
// other fields so log lines stay scannable.
const (
	PlanName      = "Plan"
	StepName      = "Step"
	HostName      = "Host"
	RunID         = "Run"
	LocalHostname = "LocalHost"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
	// FileMode0600 represents rw-------
	FileMode0600 fs.FileMode = 0600
)

const (
	DefaultSSHPort = 22
)

// StepState tracks the lifecycle of a step within a single run:
// not started / running / finished. There is no retry or backoff state.
type StepState int

const (
	StatePending StepState = iota
	StateRunning
	StateFinished
)

func (s StepState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}
