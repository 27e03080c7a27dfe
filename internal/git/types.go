package git

// Commit is one entry from the repository log.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	Date    string
	Subject string
}

// Author is one entry from the contributor roster.
type Author struct {
	Commits int
	Name    string
	Email   string
}

// Stats aggregates repository-level counters.
type Stats struct {
	TotalCommits  int
	Branch        string
	FirstCommitAt string
	LastCommitAt  string
}

// LogOptions filter a log listing. Zero values mean "no filter".
type LogOptions struct {
	Limit  int
	Since  string
	Until  string
	Author string
}

// DiffOptions select what to diff. Commit wins over From/To; with
// neither set the working tree is diffed. Path restricts the diff to
// one file.
type DiffOptions struct {
	Commit string
	From   string
	To     string
	Path   string
}

// ChangeSource tells how the changes of a commit were obtained, so
// callers can distinguish "no changes" from "could not determine".
type ChangeSource int

const (
	// SourceDiffed means the commit was diffed against its parent.
	SourceDiffed ChangeSource = iota
	// SourceRootCommit means the commit has no parent and was shown whole.
	SourceRootCommit
	// SourceUnavailable means neither strategy produced a diff.
	SourceUnavailable
)

func (s ChangeSource) String() string {
	switch s {
	case SourceDiffed:
		return "diffed"
	case SourceRootCommit:
		return "root-commit"
	default:
		return "unavailable"
	}
}
