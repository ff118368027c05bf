package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ActiveLogName is the file events are appended to; rotated segments sit next to it.
const ActiveLogName = "monthsort-audit.jsonl"

// ErrNoActiveRun is returned by the Record methods before StartRun.
var ErrNoActiveRun = errors.New("no active run: call StartRun first")

// AuditWriter appends events to the active log, one synced JSON line each,
// and rotates the log once it reaches the configured size.
type AuditWriter struct {
	mu      sync.Mutex
	fs      afero.Fs
	file    afero.File
	logPath string
	run     RunID // empty between runs
	config  AuditConfig
}

// NewAuditWriter opens the journal on the OS filesystem.
func NewAuditWriter(config AuditConfig) (*AuditWriter, error) {
	return OpenWriter(afero.NewOsFs(), config)
}

// OpenWriter creates the log directory if needed and opens the active log
// for appending. A freshly created log starts with a LOG_INITIALIZED event.
func OpenWriter(fsys afero.Fs, config AuditConfig) (*AuditWriter, error) {
	if err := fsys.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(config.LogDirectory, ActiveLogName)
	exists, err := afero.Exists(fsys, logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audit log: %w", err)
	}

	w := &AuditWriter{fs: fsys, logPath: logPath, config: config}
	if err := w.openLocked(); err != nil {
		return nil, err
	}
	if !exists {
		if err := w.appendLocked(systemEvent(EventLogInitialized, map[string]string{"logPath": logPath})); err != nil {
			w.file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}
	return w, nil
}

func (w *AuditWriter) openLocked() error {
	file, err := w.fs.OpenFile(w.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	w.file = file
	return nil
}

// GenerateRunID returns a new random run identifier.
func GenerateRunID() RunID {
	return RunID(uuid.NewString())
}

// StartRun begins a run and writes its RUN_START event. meta is copied into
// the event next to the app version and run type.
func (w *AuditWriter) StartRun(runType RunType, appVersion string, meta map[string]string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID := GenerateRunID()
	event := systemEvent(EventRunStart, map[string]string{
		"appVersion": appVersion,
		"runType":    string(runType),
	})
	event.RunID = runID
	for k, v := range meta {
		event.Metadata[k] = v
	}
	if err := w.writeLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}
	w.run = runID
	return runID, nil
}

// EndRun writes the RUN_END event carrying the final status and summary.
func (w *AuditWriter) EndRun(runID RunID, status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	event := systemEvent(EventRunEnd, nil)
	event.RunID = runID
	event.RunStatus = status
	event.Summary = &summary
	if status == RunStatusFailed || status == RunStatusInterrupted {
		event.Status = StatusFailure
	}
	if err := w.writeLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}
	if w.run == runID {
		w.run = ""
	}
	return nil
}

// CurrentRunID returns the open run and whether there is one.
func (w *AuditWriter) CurrentRunID() (RunID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.run, w.run != ""
}

// LogPath returns the path to the active audit log file.
func (w *AuditWriter) LogPath() string {
	return w.logPath
}

// Close closes the active log.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}
	return nil
}

// appendLocked writes one JSON line and syncs it to disk.
func (w *AuditWriter) appendLocked(event AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}
	return nil
}

func (w *AuditWriter) writeLocked(event AuditEvent) error {
	if err := w.appendLocked(event); err != nil {
		return err
	}
	return w.rotateLocked()
}

// rotateLocked moves the active log aside once it reaches RotationSize.
// The ROTATION event is the last line of the old segment.
func (w *AuditWriter) rotateLocked() error {
	if w.config.RotationSize <= 0 {
		return nil
	}
	info, err := w.fs.Stat(w.logPath)
	if err != nil {
		return fmt.Errorf("failed to stat audit log: %w", err)
	}
	if info.Size() < w.config.RotationSize {
		return nil
	}

	name := segmentName(time.Now())
	rotation := systemEvent(EventRotation, map[string]string{
		"previousFile": ActiveLogName,
		"newFile":      name,
	})
	rotation.RunID = w.run
	if err := w.appendLocked(rotation); err != nil {
		return fmt.Errorf("failed to write rotation event: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close file for rotation: %w", err)
	}

	segment := filepath.Join(w.config.LogDirectory, name)
	if ok, _ := afero.Exists(w.fs, segment); ok {
		return fmt.Errorf("rotated segment already exists: %s", segment)
	}
	if err := w.fs.Rename(w.logPath, segment); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	return w.openLocked()
}

// Prune deletes rotated segments older than RetentionDays, journaling a
// RETENTION_PRUNE event before each removal.
func (w *AuditWriter) Prune() (*PruneResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	expired, err := expiredSegments(w.fs, w.config, time.Now())
	if err != nil {
		return nil, err
	}
	result := &PruneResult{PrunedSegments: []string{}}
	for _, info := range expired {
		event := systemEvent(EventRetentionPrune, map[string]string{
			"prunedSegment": info.Name(),
			"bytes":         strconv.FormatInt(info.Size(), 10),
		})
		if err := w.appendLocked(event); err != nil {
			return result, fmt.Errorf("failed to write RETENTION_PRUNE event: %w", err)
		}
		if err := w.fs.Remove(filepath.Join(w.config.LogDirectory, info.Name())); err != nil {
			return result, fmt.Errorf("failed to remove segment %s: %w", info.Name(), err)
		}
		result.PrunedSegments = append(result.PrunedSegments, info.Name())
		result.TotalBytesFreed += info.Size()
	}
	return result, nil
}

// record stamps event with the open run and writes it.
func (w *AuditWriter) record(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.run == "" {
		return ErrNoActiveRun
	}
	event.Timestamp = time.Now().UTC()
	event.RunID = w.run
	if event.Status == "" {
		event.Status = StatusSuccess
	}
	return w.writeLocked(event)
}

// RecordSuffix records an in-place rename that added the date suffix.
func (w *AuditWriter) RecordSuffix(source, dest, date string, collision bool) error {
	return w.record(AuditEvent{
		EventType:       EventSuffix,
		SourcePath:      source,
		DestinationPath: dest,
		Date:            date,
		Collision:       collision,
	})
}

// RecordPlace records a file moved or copied into its month folder.
func (w *AuditWriter) RecordPlace(source, dest, mode, date string, collision bool) error {
	return w.record(AuditEvent{
		EventType:       EventPlace,
		SourcePath:      source,
		DestinationPath: dest,
		Date:            date,
		Mode:            mode,
		Collision:       collision,
	})
}

// RecordFolderRename records one month folder relabelled to another year.
func (w *AuditWriter) RecordFolderRename(oldPath, newPath string) error {
	return w.record(AuditEvent{
		EventType:       EventFolderRename,
		SourcePath:      oldPath,
		DestinationPath: newPath,
	})
}

// RecordError records a failed per-file operation.
func (w *AuditWriter) RecordError(source, errType, errMsg, operation string) error {
	return w.record(AuditEvent{
		EventType:  EventError,
		Status:     StatusFailure,
		SourcePath: source,
		ErrorDetails: &ErrorDetails{
			ErrorType:    errType,
			ErrorMessage: errMsg,
			Operation:    operation,
		},
	})
}
