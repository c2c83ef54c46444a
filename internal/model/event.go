package model

// UserEvent is a destiny event: a user-declared future date that triggers
// preparatory task generation once it comes within the horizon.
// TasksGenerated is set after the single generation attempt and never cleared.
type UserEvent struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Date           string `json:"date"` // YYYY-MM-DD, no time component
	TasksGenerated bool   `json:"tasksGenerated,omitempty"`
}
