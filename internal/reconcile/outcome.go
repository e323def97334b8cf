package reconcile

import (
	"context"
	"time"
)

// OutcomeKind tags a per-title result.
type OutcomeKind int

const (
	OutcomeDeleted OutcomeKind = iota + 1
	OutcomeNotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// NotFoundReason records why a title ended up in the not-found list. It is
// kept for logs and run history; report documents only carry the title.
type NotFoundReason string

const (
	ReasonNotInCatalog   NotFoundReason = "not_in_catalog"
	ReasonAbsentOnDelete NotFoundReason = "absent_on_delete"
	ReasonDeleteFailed   NotFoundReason = "delete_failed"
	ReasonCanceled       NotFoundReason = "canceled"
)

// Outcome is the result for one requested title. Title always holds the
// normalized key. Year, Path and SizeOnDisk are set only for deletions.
type Outcome struct {
	Kind       OutcomeKind
	Title      string
	Year       int
	Path       string
	SizeOnDisk int64
	Reason     NotFoundReason
}

// Deleted builds a deletion outcome from the matched entry.
func Deleted(key string, entry Entry) Outcome {
	return Outcome{
		Kind:       OutcomeDeleted,
		Title:      key,
		Year:       entry.Year,
		Path:       entry.Path,
		SizeOnDisk: entry.SizeOnDisk,
	}
}

// NotFound builds a not-found outcome.
func NotFound(key string, reason NotFoundReason) Outcome {
	return Outcome{Kind: OutcomeNotFound, Title: key, Reason: reason}
}

// DeleteStatus is the non-error result of a delete call.
type DeleteStatus int

const (
	// DeleteOK means the record and its files were removed.
	DeleteOK DeleteStatus = iota
	// DeleteNotFound means the remote no longer had the record.
	DeleteNotFound
)

// Deleter removes a catalog entry, always purging its files. A non-nil error
// signals a transport failure for that entry only.
type Deleter interface {
	Delete(ctx context.Context, entry Entry) (DeleteStatus, error)
}

// DeleterFunc adapts a function to the Deleter interface.
type DeleterFunc func(ctx context.Context, entry Entry) (DeleteStatus, error)

// Delete calls f.
func (f DeleterFunc) Delete(ctx context.Context, entry Entry) (DeleteStatus, error) {
	return f(ctx, entry)
}

// Summary aggregates a finished reconciliation.
type Summary struct {
	DeletedCount    int
	NotFoundCount   int
	SpaceSavedBytes int64
	SpaceSavedGB    int64
	DateDeleted     time.Time
}

// DateStamp formats the run date the way report directories and documents use it.
func (s Summary) DateStamp() string {
	return DateStamp(s.DateDeleted)
}

// DateStamp renders t as YYYY_MM_DD.
func DateStamp(t time.Time) string {
	return t.Format("2006_01_02")
}

// Summarize derives the run summary from the outcome sequence.
func Summarize(outcomes []Outcome, runStart time.Time) Summary {
	summary := Summary{DateDeleted: runStart}
	for _, outcome := range outcomes {
		switch outcome.Kind {
		case OutcomeDeleted:
			summary.DeletedCount++
			summary.SpaceSavedBytes += outcome.SizeOnDisk
		case OutcomeNotFound:
			summary.NotFoundCount++
		}
	}
	summary.SpaceSavedGB = RoundGB(summary.SpaceSavedBytes)
	return summary
}

const (
	bytesPerGB      = 1_000_000_000
	bytesPerCentiGB = 10_000_000
)

// RoundGB converts bytes to whole decimal gigabytes, rounding half away from zero.
func RoundGB(bytes int64) int64 {
	return roundDiv(bytes, bytesPerGB)
}

// GB converts bytes to decimal gigabytes with two decimals, rounding half away
// from zero. Rounding is done on integer hundredths, so 1_005_000_000 bytes
// is 1.01.
func GB(bytes int64) float64 {
	return float64(roundDiv(bytes, bytesPerCentiGB)) / 100
}

func roundDiv(n, d int64) int64 {
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}
