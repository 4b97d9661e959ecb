package event_bus

import "time"

const CalendarOverrideChangedType EventType = "workdays.override.changed"

// CalendarOverrideChanged is published after a calendar override was created, changed or removed.
type CalendarOverrideChanged struct {
	Date time.Time
}
