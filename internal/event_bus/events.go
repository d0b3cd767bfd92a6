package event_bus

const ScheduleUpdatedEvent EventType = "schedule.updated"

// ScheduleUpdated is published after a schedule mutation has been persisted.
type ScheduleUpdated struct {
	// Actor is the display name of whoever made the change, empty when unknown.
	Actor string
	// Action reads as a verb phrase, e.g. "updated default hours for".
	Action  string
	Details string
}
