package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const segmentPrefix = "monthsort-audit-"

// segmentName names a rotated segment so that names sort by rotation time.
func segmentName(t time.Time) string {
	return fmt.Sprintf("%s%s-%09d.jsonl", segmentPrefix, t.Format("20060102-150405"), t.Nanosecond())
}

func isSegment(name string) bool {
	return strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, ".jsonl")
}

// Segments lists the rotated segments in dir, oldest first. A missing
// directory has no segments.
func Segments(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isSegment(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// journalFiles returns the segments followed by the active log, which is
// the order events were written in.
func journalFiles(fsys afero.Fs, dir string) ([]string, error) {
	names, err := Segments(fsys, dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(names)+1)
	for _, name := range names {
		files = append(files, filepath.Join(dir, name))
	}
	active := filepath.Join(dir, ActiveLogName)
	if ok, _ := afero.Exists(fsys, active); ok {
		files = append(files, active)
	}
	return files, nil
}

// PruneResult lists the segments removed by Prune.
type PruneResult struct {
	PrunedSegments  []string
	TotalBytesFreed int64
}

// expiredSegments returns the segments last written before now minus the
// retention period. The active log is never returned.
func expiredSegments(fsys afero.Fs, config AuditConfig, now time.Time) ([]os.FileInfo, error) {
	if config.RetentionDays <= 0 {
		return nil, nil
	}
	names, err := Segments(fsys, config.LogDirectory)
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -config.RetentionDays)
	var expired []os.FileInfo
	for _, name := range names {
		info, err := fsys.Stat(filepath.Join(config.LogDirectory, name))
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			expired = append(expired, info)
		}
	}
	return expired, nil
}
