package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// delimiter joins the fields of one ledger line: identity|timestamp|fingerprint.
const delimiter = "|"

// timestampLayout is the human-readable timestamp written into each entry.
const timestampLayout = "2006-01-02 15:04:05"

// Ledger is the append-only record of processed input identities. It is not
// safe for concurrent writers; runs are scheduled to never overlap.
type Ledger struct {
	path string
	now  func() time.Time
}

// New builds a ledger backed by the file at path. The file is created on the
// first mark; a missing file means nothing was processed yet.
func New(path string) *Ledger {
	return &Ledger{path: path, now: time.Now}
}

// IsProcessed reports whether identity appears in any prior entry. The whole
// file is scanned on every call; runs are rare enough that this never matters.
func (l *Ledger) IsProcessed(identity string) (bool, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		name, _, found := strings.Cut(line, delimiter)
		if !found {
			continue
		}
		if name == identity {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("scan ledger: %w", err)
	}

	return false, nil
}

// MarkProcessed appends one entry for identity. Existing lines are never
// rewritten.
func (l *Ledger) MarkProcessed(identity, fingerprint string) error {
	if identity == "" {
		return errors.New("identity must not be empty")
	}
	if fingerprint == "" {
		fingerprint = "unknown"
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer func() { _ = f.Close() }()

	line := strings.Join([]string{identity, l.now().Format(timestampLayout), fingerprint}, delimiter)
	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}
