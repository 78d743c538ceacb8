package allowlist

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when the input holds no records after trimming
// and header removal.
var ErrEmptyInput = errors.New("allowlist: input contains no records")

// ParseRecords splits raw input text into candidate records. Lines are
// trimmed and blank lines dropped; if the first non-blank line contains
// "address" (case-insensitive) it is treated as a column header and skipped,
// reported via the second return value. Each remaining line is split on
// commas: the first field is the candidate identifier, later fields ride
// along as opaque metadata. Line numbers refer to the original input,
// 1-based.
func ParseRecords(input string) ([]Record, bool, error) {
	lines := strings.Split(input, "\n")

	records := make([]Record, 0, len(lines))
	sawHeader := false
	first := true
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first {
			first = false
			if strings.Contains(strings.ToLower(line), "address") {
				sawHeader = true
				continue
			}
		}

		fields := strings.Split(line, ",")
		rec := Record{
			Line:       i + 1,
			Identifier: strings.TrimSpace(fields[0]),
		}
		for _, f := range fields[1:] {
			rec.Metadata = append(rec.Metadata, strings.TrimSpace(f))
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, sawHeader, ErrEmptyInput
	}
	return records, sawHeader, nil
}
