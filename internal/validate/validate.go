// Package validate holds the input-safety predicates that gate every
// external side effect: commit references, report filenames, path
// containment, credentials, and a shell-metacharacter sanitizer.
//
// Every predicate is total. Malformed input yields false (or an empty
// string from Sanitize), never a panic — callers can run these against
// raw tool arguments without guarding.
package validate

import (
	"path/filepath"
	"regexp"
	"strings"
)

// maxRefLength caps branch/tag-like reference tokens. Hash-shaped
// references are capped at 40 by their own pattern.
const maxRefLength = 100

// apiKeyPrefix is the required leading token of a completion-API key.
const apiKeyPrefix = "sk-"

// symbolicRefs are accepted as commit references without any shape check.
var symbolicRefs = map[string]struct{}{
	"HEAD":       {},
	"ORIG_HEAD":  {},
	"FETCH_HEAD": {},
	"MERGE_HEAD": {},
}

var (
	hexRefPattern   = regexp.MustCompile(`^[a-fA-F0-9]{7,40}$`)
	namedRefPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	apiKeyPattern   = regexp.MustCompile(`^sk-[A-Za-z0-9_-]+$`)
	modelIDPattern  = regexp.MustCompile(`^[A-Za-z0-9/_-]+$`)
)

// IsValidCommitRef reports whether s is safe to hand to the VCS backend
// as a commit reference. Accepted shapes, in order:
//
//   - a known symbolic reference (HEAD, ORIG_HEAD, FETCH_HEAD, MERGE_HEAD)
//   - a 7–40 character hexadecimal hash, any case
//   - a branch/tag-like token of at most 100 characters from [A-Za-z0-9._/-]
//
// The last shape is deliberately permissive: tools must accept branch
// and tag names, not only hashes.
func IsValidCommitRef(s string) bool {
	if s == "" {
		return false
	}
	if _, ok := symbolicRefs[s]; ok {
		return true
	}
	if hexRefPattern.MatchString(s) {
		return true
	}
	return len(s) <= maxRefLength && namedRefPattern.MatchString(s)
}

// IsValidFilename reports whether s is safe as a report filename
// (extension excluded). Path separators and traversal sequences are
// rejected outright.
func IsValidFilename(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, "..") || strings.ContainsAny(s, `/\`) {
		return false
	}
	return filenamePattern.MatchString(s)
}

// IsValidPath reports whether inputPath, resolved against basePath,
// stays at or under basePath. The containment check is segment-wise,
// so /base-evil does not pass for base /base. Any resolution failure
// yields false.
func IsValidPath(inputPath, basePath string) bool {
	if inputPath == "" || basePath == "" {
		return false
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	var absInput string
	if filepath.IsAbs(inputPath) {
		absInput = filepath.Clean(inputPath)
	} else {
		absInput = filepath.Join(absBase, inputPath)
	}
	rel, err := filepath.Rel(absBase, absInput)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// IsValidAPIKey reports whether s looks like a completion-API key:
// longer than 10 characters, "sk-" prefixed, and limited to
// [A-Za-z0-9_-] after the prefix.
func IsValidAPIKey(s string) bool {
	return len(s) > 10 && strings.HasPrefix(s, apiKeyPrefix) && apiKeyPattern.MatchString(s)
}

// IsValidModelID reports whether s is a plausible model identifier.
func IsValidModelID(s string) bool {
	return s != "" && modelIDPattern.MatchString(s)
}

// Sanitize strips shell metacharacters (; & | ` $ ( ) { } [ ]) and every
// ".." traversal sequence from s, then trims surrounding whitespace.
// Removal of ".." does not collapse the slashes it leaves behind:
// Sanitize("../../etc/passwd") == "//etc/passwd".
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ';', '&', '|', '`', '$', '(', ')', '{', '}', '[', ']':
			return -1
		}
		return r
	}, s)
	cleaned = strings.ReplaceAll(cleaned, "..", "")
	return strings.TrimSpace(cleaned)
}
