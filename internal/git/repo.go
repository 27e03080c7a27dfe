package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// logFormat renders one commit per line with unit-separator delimited
// fields: hash, author name, author email, strict-ISO date, subject.
const logFormat = "--pretty=format:%H%x1f%an%x1f%ae%x1f%aI%x1f%s"

// Repo provides the introspection operations the tools need, built on
// a Runner.
type Repo struct {
	runner Runner
}

// Open returns a Repo backed by the git binary for the repository at
// repoPath. The path is not checked here; the first operation surfaces
// "not a repository" as a backend error.
func Open(repoPath string) *Repo {
	return &Repo{runner: execRunner{repoPath: repoPath}}
}

// NewRepo wraps an explicit runner. Used by tests.
func NewRepo(r Runner) *Repo {
	return &Repo{runner: r}
}

// Log lists commits newest first, applying the given filters.
func (r *Repo) Log(ctx context.Context, opts LogOptions) ([]Commit, error) {
	args := []string{"log", logFormat}
	if opts.Limit > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Limit))
	}
	if opts.Since != "" {
		args = append(args, "--since="+opts.Since)
	}
	if opts.Until != "" {
		args = append(args, "--until="+opts.Until)
	}
	if opts.Author != "" {
		args = append(args, "--author="+opts.Author)
	}

	out, err := r.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseCommits(out)
}

// Show returns the metadata of a single commit.
func (r *Repo) Show(ctx context.Context, ref string) (Commit, error) {
	out, err := r.runner.Run(ctx, "log", "-1", logFormat, ref)
	if err != nil {
		return Commit{}, err
	}
	commits, err := parseCommits(out)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) == 0 {
		return Commit{}, fmt.Errorf("commit %s not found", ref)
	}
	return commits[0], nil
}

// Files lists the paths touched by a commit.
func (r *Repo) Files(ctx context.Context, ref string) ([]string, error) {
	out, err := r.runner.Run(ctx, "show", "--format=", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Diff returns the patch text selected by opts.
func (r *Repo) Diff(ctx context.Context, opts DiffOptions) (string, error) {
	var args []string
	switch {
	case opts.Commit != "":
		args = []string{"show", "--format=", "--patch", opts.Commit}
	case opts.From != "" && opts.To != "":
		args = []string{"diff", opts.From, opts.To}
	case opts.From != "":
		args = []string{"diff", opts.From}
	default:
		args = []string{"diff"}
	}
	if opts.Path != "" {
		args = append(args, "--", opts.Path)
	}
	return r.runner.Run(ctx, args...)
}

// DiffForCommit obtains the changes of a commit best-effort: diff
// against the parent, then a root-commit show, then give up. The
// ChangeSource tells which strategy produced the text; Unavailable is
// an answer, not an error.
func (r *Repo) DiffForCommit(ctx context.Context, ref string) (string, ChangeSource, error) {
	if out, err := r.runner.Run(ctx, "diff", ref+"^", ref); err == nil {
		return out, SourceDiffed, nil
	}
	if out, err := r.runner.Run(ctx, "show", "--format=", "--patch", ref); err == nil {
		return out, SourceRootCommit, nil
	}
	return "", SourceUnavailable, nil
}

// Stats aggregates repository counters.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	countOut, err := r.runner.Run(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		return Stats{}, err
	}
	total, err := strconv.Atoi(strings.TrimSpace(countOut))
	if err != nil {
		return Stats{}, fmt.Errorf("parsing commit count %q: %w", strings.TrimSpace(countOut), err)
	}

	branch, err := r.runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return Stats{}, err
	}

	last, err := r.runner.Run(ctx, "log", "-1", "--format=%aI")
	if err != nil {
		return Stats{}, err
	}

	// Oldest first; only the first line matters.
	firstOut, err := r.runner.Run(ctx, "log", "--reverse", "--format=%aI")
	if err != nil {
		return Stats{}, err
	}
	first, _, _ := strings.Cut(firstOut, "\n")

	return Stats{
		TotalCommits:  total,
		Branch:        strings.TrimSpace(branch),
		FirstCommitAt: strings.TrimSpace(first),
		LastCommitAt:  strings.TrimSpace(last),
	}, nil
}

// Authors returns the contributor roster, most commits first.
func (r *Repo) Authors(ctx context.Context) ([]Author, error) {
	out, err := r.runner.Run(ctx, "shortlog", "-sne", "HEAD")
	if err != nil {
		return nil, err
	}
	var authors []Author
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		count, rest, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			continue
		}
		name, email := splitAuthor(rest)
		authors = append(authors, Author{Commits: n, Name: name, Email: email})
	}
	return authors, nil
}

// parseCommits splits log output into commits, one per line with
// unit-separator delimited fields.
func parseCommits(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\x1f")
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed log line with %d fields", len(fields))
		}
		commits = append(commits, Commit{
			Hash:    fields[0],
			Author:  fields[1],
			Email:   fields[2],
			Date:    fields[3],
			Subject: fields[4],
		})
	}
	return commits, nil
}

// splitAuthor separates "Name <email>" into its parts.
func splitAuthor(s string) (name, email string) {
	s = strings.TrimSpace(s)
	open := strings.LastIndex(s, "<")
	if open < 0 {
		return s, ""
	}
	name = strings.TrimSpace(s[:open])
	email = strings.TrimSuffix(s[open+1:], ">")
	return name, email
}
