package tools

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gitscope/gitscope/internal/history"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// dateFormats are the argument shapes accepted for since/until filters.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// validDate reports whether s parses as one of the accepted formats.
func validDate(s string) bool {
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// shortHash abbreviates a full hash for display and filenames.
func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// defaultReportName computes the {kind}-{identifier}-{timestamp} name
// used when the caller supplies no output filename.
func defaultReportName(kind, identifier string) string {
	return fmt.Sprintf("%s-%s-%s", kind, identifier, timeNow().UTC().Format("20060102-150405"))
}

// recordAnalysis persists an analysis entry best-effort. Recording
// never fails a tool call; a broken store only costs a warning.
func recordAnalysis(logger *zap.Logger, store *history.Store, e history.Entry) {
	if store == nil {
		return
	}
	if _, err := store.Record(e); err != nil && logger != nil {
		logger.Warn("recording analysis history", zap.Error(err))
	}
}
