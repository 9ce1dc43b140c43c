package trackers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logpkg "github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
	"github.com/VIJAY-mark/blockd/internal/blocker/repos/trackers/parsers"
)

// LoadFeedDirectory parses every regular file in dir into tracker rules.
// Files whose base name contains "hosts" are parsed in /etc/hosts format;
// everything else is parsed as a plain newline-delimited list. Rules are
// de-duplicated across files by name and kind, first file wins.
//
// An empty dir means no feeds; a missing directory is an error.
func LoadFeedDirectory(dir string, logger logpkg.Logger, now time.Time) ([]domain.TrackerRule, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read feed directory %s: %w", dir, err)
	}

	seen := make(map[string]struct{})
	var out []domain.TrackerRule

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open feed file %s: %w", path, err)
		}

		var rules []domain.TrackerRule
		if strings.Contains(strings.ToLower(entry.Name()), "hosts") {
			rules, err = parsers.ParseHostsFile(f, entry.Name(), logger, now)
		} else {
			rules, err = parsers.ParsePlainList(f, entry.Name(), logger, now)
		}
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse feed file %s: %w", path, err)
		}

		for _, r := range rules {
			key := r.Name + "|" + r.Kind.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}

		logger.Info(map[string]any{
			"file":  entry.Name(),
			"rules": len(rules),
		}, "Tracker feed loaded")
	}

	return out, nil
}
