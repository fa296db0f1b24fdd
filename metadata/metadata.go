package metadata

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nicolagi/gcemetad/tool"
)

// TokenPath and ProjectIDPath are the two paths of the emulated
// metadata surface. They are stored lower-case; request paths are
// folded to lower case before matching.
const (
	TokenPath     = "/computemetadata/v1beta1/instance/service-accounts/default/token"
	ProjectIDPath = "/computemetadata/v1beta1/project/project-id"
)

// Entry is one supported metadata item: the request path it is served
// at, the shell command producing its raw value, and the formatter
// shaping the command's output into a response body.
type Entry struct {
	Name      string
	Path      string
	Command   string
	Formatter Formatter
}

// Result of a lookup, ready to be written as an HTTP response.
type Result struct {
	Body        []byte
	ContentType string
}

// Lookup runs the entry's command and formats its output, after
// trimming trailing whitespace. Command failures and formatter
// failures travel the same error path.
func Lookup(ctx context.Context, run tool.Runner, entry Entry) (Result, error) {
	stdout, err := run.Run(ctx, entry.Command)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", entry.Name, err)
	}
	stdout = bytes.TrimRight(stdout, " \t\r\n")
	body, contentType, err := entry.Formatter.Format(stdout)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", entry.Name, err)
	}
	return Result{Body: body, ContentType: contentType}, nil
}

// Entries returns the route table for the emulated endpoints. The
// command strings are caller-supplied in full; nothing about the shell
// wrapper or the invoking user is assumed here.
func Entries(tokenCommand, projectIDCommand string) []Entry {
	return []Entry{{
		Name:      "access-token",
		Path:      TokenPath,
		Command:   tokenCommand,
		Formatter: AccessTokenFormatter{},
	}, {
		Name:      "project-id",
		Path:      ProjectIDPath,
		Command:   projectIDCommand,
		Formatter: ProjectIDFormatter{},
	}}
}

// Match returns the entry serving the given request path. Matching is
// case-insensitive on the path; the caller is expected to pass the
// path component only, without the query string.
func Match(entries []Entry, path string) (Entry, bool) {
	path = strings.ToLower(path)
	for _, entry := range entries {
		if entry.Path == path {
			return entry, true
		}
	}
	return Entry{}, false
}
