package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme prefixes a DSN handled by this package, e.g. sqlite://./emotion.db.
const Scheme = "sqlite://"

// parseDSN converts a sqlite:// DSN into the path form modernc.org/sqlite
// expects. Relative paths are anchored at the working directory and query
// parameters are passed through untouched.
func parseDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, Scheme) {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected %s", Scheme)
	}

	rest := strings.TrimPrefix(dsn, Scheme)
	if rest == "" {
		return "", fmt.Errorf("sqlite DSN has no path")
	}
	if rest == ":memory:" {
		return rest, nil
	}

	path, query, hasQuery := strings.Cut(rest, "?")
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	path = unescaped

	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}
	if hasQuery {
		return path + "?" + query, nil
	}
	return path, nil
}
