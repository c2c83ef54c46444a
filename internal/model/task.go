package model

// Task is a real-life assignment. Techniques (long-term tasks) share the
// shape and live in their own collection. Completed is monotonic: once set
// it never reverts, and rewards apply exactly once.
type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	XP          int           `json:"xp"`
	Stat        Category      `json:"stat"`
	StatReward  int           `json:"statReward"`
	Gold        int           `json:"gold"`
	Completed   bool          `json:"completed"`
	IsEventTask bool          `json:"isEventTask,omitempty"`
	EventID     string        `json:"eventId,omitempty"`
	EventName   string        `json:"eventName,omitempty"`
	IsLongTerm  bool          `json:"isLongTerm,omitempty"`
	ItemReward  *ItemTemplate `json:"itemReward,omitempty"`
}

// Incomplete filters out completed tasks, preserving order.
func Incomplete(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Titles collects the titles of the given tasks.
func Titles(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}
