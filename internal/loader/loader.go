// Package loader discovers raw speed test files and decodes them into records.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/j-veylop/speed-dashboard/internal/logger"
	"github.com/j-veylop/speed-dashboard/internal/models"
)

// RecoveryPolicy decides what happens to a record without a usable timestamp.
type RecoveryPolicy int

const (
	// RecoveryTimestampOnly keeps a placeholder reading stamped with the
	// timestamp found in the file name. Its metrics are missing.
	RecoveryTimestampOnly RecoveryPolicy = iota
	// RecoverySkip drops the record.
	RecoverySkip
)

// String returns the configuration name of the policy.
func (p RecoveryPolicy) String() string {
	switch p {
	case RecoveryTimestampOnly:
		return "timestamp"
	case RecoverySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseRecoveryPolicy resolves a configuration name.
func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	switch s {
	case "", "timestamp":
		return RecoveryTimestampOnly, nil
	case "skip":
		return RecoverySkip, nil
	default:
		return RecoveryTimestampOnly, fmt.Errorf("unknown recovery policy %q", s)
	}
}

// OutcomeKind tags how a record was obtained.
type OutcomeKind int

const (
	// OutcomeParsed is a record decoded from the file content.
	OutcomeParsed OutcomeKind = iota
	// OutcomeRecovered is a timestamp-only placeholder built from the file name.
	OutcomeRecovered
	// OutcomeSkipped means nothing usable was produced.
	OutcomeSkipped
)

// String returns a label suitable for logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeParsed:
		return "parsed"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result for one record of one file.
type Outcome struct {
	Kind   OutcomeKind
	File   string
	Record models.RawReading // unset when skipped
	Reason string            // set when recovered or skipped
}

// Result holds every outcome of a load, in file order.
type Result struct {
	Files    []string
	Outcomes []Outcome
}

// Records returns the parsed and recovered records.
func (r *Result) Records() []models.RawReading {
	records := make([]models.RawReading, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Kind != OutcomeSkipped {
			records = append(records, o.Record)
		}
	}
	return records
}

// Count returns the number of outcomes of the given kind.
func (r *Result) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Report summarizes the load for display.
func (r *Result) Report() models.LoadReport {
	report := models.LoadReport{
		Files:     len(r.Files),
		Parsed:    r.Count(OutcomeParsed),
		Recovered: r.Count(OutcomeRecovered),
		Skipped:   r.Count(OutcomeSkipped),
	}
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeSkipped {
			report.Reasons = append(report.Reasons, fmt.Sprintf("%s: %s", filepath.Base(o.File), o.Reason))
		}
	}
	return report
}

// fileTimestamp matches the timestamp the collector embeds in each file name.
var fileTimestamp = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`)

// TimestampFromName extracts the collector timestamp from a file name.
func TimestampFromName(path string) (string, bool) {
	ts := fileTimestamp.FindString(filepath.Base(path))
	return ts, ts != ""
}

// Loader reads every file matching a glob pattern.
type Loader struct {
	Pattern string
	Policy  RecoveryPolicy
}

// New creates a loader for the given glob pattern.
func New(pattern string, policy RecoveryPolicy) *Loader {
	return &Loader{Pattern: pattern, Policy: policy}
}

// Load decodes all matching files. Per-file problems become outcomes; only
// a malformed pattern or a cancelled context fail the load.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	files, err := filepath.Glob(l.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to match %q: %w", l.Pattern, err)
	}
	sort.Strings(files)

	result := &Result{Files: files}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Outcomes = append(result.Outcomes, l.loadFile(file)...)
	}

	logger.Debug("Loaded speed test files",
		"pattern", l.Pattern,
		"files", len(files),
		"parsed", result.Count(OutcomeParsed),
		"recovered", result.Count(OutcomeRecovered),
		"skipped", result.Count(OutcomeSkipped))
	return result, nil
}

// wireRecord mirrors the speedtest-cli JSON output.
type wireRecord struct {
	Download  *float64 `json:"download"`
	Upload    *float64 `json:"upload"`
	Ping      *float64 `json:"ping"`
	Timestamp *string  `json:"timestamp"`
	Server    struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"server"`
	Client struct {
		ISP string `json:"isp"`
	} `json:"client"`
}

func (l *Loader) loadFile(file string) []Outcome {
	data, err := os.ReadFile(file)
	if err != nil {
		logger.Warn("Failed to read speed test file", "file", file, "error", err)
		return []Outcome{{Kind: OutcomeSkipped, File: file, Reason: fmt.Sprintf("read failed: %v", err)}}
	}

	records, err := decode(data)
	if err != nil {
		logger.Warn("Undecodable speed test file", "file", file, "error", err)
		return []Outcome{l.recoverRecord(file, fmt.Sprintf("undecodable JSON: %v", err))}
	}

	outcomes := make([]Outcome, 0, len(records))
	for _, rec := range records {
		if rec.Timestamp == nil || *rec.Timestamp == "" {
			outcomes = append(outcomes, l.recoverRecord(file, "missing timestamp"))
			continue
		}
		outcomes = append(outcomes, Outcome{
			Kind: OutcomeParsed,
			File: file,
			Record: models.RawReading{
				Timestamp:     *rec.Timestamp,
				Download:      rec.Download,
				Upload:        rec.Upload,
				Ping:          rec.Ping,
				ServerName:    rec.Server.Name,
				ServerCountry: rec.Server.Country,
				ISP:           rec.Client.ISP,
			},
		})
	}
	return outcomes
}

func (l *Loader) recoverRecord(file, reason string) Outcome {
	if l.Policy == RecoverySkip {
		return Outcome{Kind: OutcomeSkipped, File: file, Reason: reason}
	}
	ts, ok := TimestampFromName(file)
	if !ok {
		return Outcome{Kind: OutcomeSkipped, File: file, Reason: reason + "; no timestamp in file name"}
	}
	return Outcome{
		Kind:   OutcomeRecovered,
		File:   file,
		Record: models.RawReading{Timestamp: ts, Recovered: true},
		Reason: reason,
	}
}

// decode accepts a single result object or an array of them.
func decode(data []byte) ([]wireRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	if data[0] == '[' {
		var records []wireRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var record wireRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return []wireRecord{record}, nil
}
