package source

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEditConflict is returned when two edits touch overlapping spans.
	ErrEditConflict = errors.New("conflicting edits")
	// ErrEditRange is returned when an edit span falls outside the content.
	ErrEditRange = errors.New("edit span out of range")
	// ErrEditMismatch is returned when OldText does not match the content under the span.
	ErrEditMismatch = errors.New("existing text does not match expected content")
)

// Edit replaces the bytes under Span with NewText.
// When OldText is set, the replaced bytes must equal it.
type Edit struct {
	Span    Span
	NewText string
	OldText string
}

// Deletion builds an edit that removes the bytes under span.
func Deletion(span Span) Edit {
	return Edit{Span: span}
}

// ApplyEdits applies non-overlapping edits to content and returns a new buffer.
// Offsets in every edit refer to the original content; content itself is not modified.
func ApplyEdits(content []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return append([]byte(nil), content...), nil
	}

	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		if a.Span.Start != b.Span.Start {
			if a.Span.Start < b.Span.Start {
				return -1
			}
			return 1
		}
		if a.Span.End < b.Span.End {
			return -1
		}
		if a.Span.End > b.Span.End {
			return 1
		}
		return 0
	})

	size := len(content)
	var reach Span
	for i, e := range sorted {
		if int(e.Span.End) > len(content) || e.Span.End < e.Span.Start {
			return nil, fmt.Errorf("%s: %w", e.Span, ErrEditRange)
		}
		if e.OldText != "" && string(content[e.Span.Start:e.Span.End]) != e.OldText {
			return nil, fmt.Errorf("%s: %w", e.Span, ErrEditMismatch)
		}
		if i > 0 && reach.Overlaps(e.Span) {
			return nil, fmt.Errorf("%s overlaps %s: %w", reach, e.Span, ErrEditConflict)
		}
		if i == 0 || e.Span.End > reach.End {
			reach = e.Span
		}
		size += len(e.NewText) - int(e.Span.Len())
	}

	// собираем результат за один проход слева направо
	out := make([]byte, 0, max(size, 0))
	prev := 0
	for _, e := range sorted {
		out = append(out, content[prev:e.Span.Start]...)
		out = append(out, e.NewText...)
		prev = int(e.Span.End)
	}
	out = append(out, content[prev:]...)
	return out, nil
}
