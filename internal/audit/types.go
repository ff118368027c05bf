// Package audit keeps an append-only JSON Lines journal of every rename,
// placement and folder relabel, grouped into runs.
package audit

import "time"

// RunID identifies one program execution (a UUID v4 string).
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File operation events
	EventSuffix       EventType = "SUFFIX"
	EventPlace        EventType = "PLACE"
	EventFolderRename EventType = "FOLDER_RENAME"
	EventError        EventType = "ERROR"

	// System events
	EventRotation       EventType = "ROTATION"
	EventRetentionPrune EventType = "RETENTION_PRUNE"
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// RunType distinguishes batch runs from watch sessions and folder maintenance.
type RunType string

const (
	RunTypeSort    RunType = "SORT"
	RunTypeWatch   RunType = "WATCH"
	RunTypeFolders RunType = "FOLDERS"
)

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent is one journal line. Fields that do not apply to an event type
// are left empty and dropped from the encoded line.
type AuditEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	RunID           RunID             `json:"runId,omitempty"`
	EventType       EventType         `json:"eventType"`
	Status          OperationStatus   `json:"status"`
	SourcePath      string            `json:"sourcePath,omitempty"`
	DestinationPath string            `json:"destinationPath,omitempty"`
	Date            string            `json:"date,omitempty"` // resolved date, YYYY-MM-DD
	Mode            string            `json:"mode,omitempty"`
	Collision       bool              `json:"collision,omitempty"`
	RunStatus       RunStatus         `json:"runStatus,omitempty"` // RUN_END only
	Summary         *RunSummary       `json:"summary,omitempty"`   // RUN_END only
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	TotalFiles int `json:"totalFiles"`
	Suffixed   int `json:"suffixed"`
	Placed     int `json:"placed"`
	Collisions int `json:"collisions"`
	Errors     int `json:"errors"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID      RunID
	StartTime  time.Time
	EndTime    *time.Time
	Status     RunStatus
	RunType    RunType
	AppVersion string
	Year       string
	Summary    RunSummary
}

// AuditConfig holds configuration for the audit system.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	LogDirectory  string `yaml:"directory"`
	RotationSize  int64  `yaml:"rotation_size"`  // Rotate when file exceeds this size
	RetentionDays int    `yaml:"retention_days"` // 0 = keep rotated segments forever
}

// DefaultAuditConfig returns an AuditConfig with sensible defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		LogDirectory:  ".monthsort/audit",
		RotationSize:  10 * 1024 * 1024, // 10MB
		RetentionDays: 0,
	}
}
