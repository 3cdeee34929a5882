package todo

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTagNameLength     = 50
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func normalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxTagNameLength {
		return "", invalid("name", "must be between 1 and 50 characters", name)
	}
	return name, nil
}

// tagNameKey is the case-insensitive identity of a tag name.
func tagNameKey(name string) string {
	return strings.ToLower(name)
}

// normalizeColor lowercases a #RRGGBB color. An empty string clears it.
func normalizeColor(color *string) (*string, error) {
	if color == nil {
		return nil, nil
	}
	c := strings.TrimSpace(*color)
	if c == "" {
		return nil, nil
	}
	if !colorRe.MatchString(c) {
		return nil, invalid("color", "must be a hex color like #3b82f6", *color)
	}
	c = strings.ToLower(c)
	return &c, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n == 0 || n > MaxTitleLength {
		return "", invalid("title", "must be between 1 and 200 characters", title)
	}
	return title, nil
}

// normalizeDescription trims the text; blank descriptions become nil.
func normalizeDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		return nil, invalid("description", "must be at most 2000 characters", nil)
	}
	return &d, nil
}

func validatePriority(p Priority) error {
	if !p.Valid() {
		return invalid("priority", "must be one of low, medium, high", string(p))
	}
	return nil
}

func validateRecurrence(r *Recurrence) error {
	if r != nil && !r.Valid() {
		return invalid("recurrence", "must be one of daily, weekly, monthly", string(*r))
	}
	return nil
}

// checkSchedule enforces that recurring tasks have a due date.
func checkSchedule(t *Task) error {
	if t.Recurrence != nil && t.DueDate == nil {
		return invalid("due_date", "is required when recurrence is set", nil)
	}
	return nil
}

// normalizeTime stores times in UTC at millisecond precision, the precision
// exposed on the wire.
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Millisecond)
	return &v
}

// dedupeIDs trims IDs, drops blanks and duplicates, and keeps first-seen order.
func dedupeIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
