package todo

import "time"

// Next returns the due date one period after t. Monthly recurrence keeps the
// day of month, clamped to the last day of a shorter month (Jan 31 -> Feb 29
// in a leap year).
func (r Recurrence) Next(t time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return addMonthClamped(t)
	}
	return t
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	day = min(day, lastDay)
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// nextOccurrence builds the pending successor of a completed recurring task.
// The reminder keeps its offset to the due date. It returns nil when the task
// does not recur.
func nextOccurrence(done Task, id string, now time.Time) *Task {
	if done.Recurrence == nil || done.DueDate == nil {
		return nil
	}
	due := done.Recurrence.Next(*done.DueDate)
	next := done.Clone()
	next.ID = id
	next.Completed = false
	next.DueDate = &due
	if done.ReminderAt != nil {
		reminder := due.Add(done.ReminderAt.Sub(*done.DueDate))
		next.ReminderAt = &reminder
	}
	next.Tags = nil
	next.CreatedAt = now
	next.UpdatedAt = now
	return &next
}
