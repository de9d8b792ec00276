package didlog

import (
	"fmt"
	"strings"

	"webvh.dev/didlog/diderr"
)

// Log is an ordered DID log entry sequence, the parsed form of a JSON Lines
// log file.
type Log struct {
	entries []*Entry
}

// ParseLog parses a JSON Lines log: one entry per line, blank lines ignored.
func ParseLog(text string) (*Log, error) {
	var entries []*Entry
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return nil, diderr.Wrap(diderr.KindDeserializationFailed,
				fmt.Sprintf("DID log line %d cannot be parsed", i+1), err)
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, diderr.New(diderr.KindDeserializationFailed, "DID log carries no entries")
	}
	return &Log{entries: entries}, nil
}

// NewLog builds a log from already-parsed entries.
func NewLog(entries []*Entry) *Log {
	return &Log{entries: append([]*Entry(nil), entries...)}
}

// Entries returns the log's entries in index order.
func (l *Log) Entries() []*Entry {
	return append([]*Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Genesis returns the first entry.
func (l *Log) Genesis() *Entry { return l.entries[0] }

// Latest returns the last entry.
func (l *Log) Latest() *Entry { return l.entries[len(l.entries)-1] }

// Verify verifies the full chain.
func (l *Log) Verify(opts VerifyOptions) error {
	return VerifyChain(l.entries, opts)
}

// JSONLines serializes the log back to its JSON Lines form, one entry per
// line with a trailing newline.
func (l *Log) JSONLines() (string, error) {
	var b strings.Builder
	for _, e := range l.entries {
		text, err := e.JSONText()
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
