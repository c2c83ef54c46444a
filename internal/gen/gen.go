// Package gen is the boundary to the generative content service. Everything
// it returns is validated against the required-field contract before it is
// allowed into state; the application mints its own identifiers.
package gen

import (
	"context"

	"tuluyen/internal/model"
)

// TaskSeed is a task descriptor without identity or completion state.
type TaskSeed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	XP          int            `json:"xp"`
	Stat        model.Category `json:"stat"`
	StatReward  int            `json:"statReward"`
	Gold        int            `json:"gold"`
	ItemReward  *ItemSeed      `json:"itemReward,omitempty"`
}

// ItemSeed mirrors model.ItemTemplate at the wire boundary.
type ItemSeed struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Slot        model.Slot             `json:"type"`
	Rarity      model.Rarity           `json:"rarity"`
	Stats       map[model.Category]int `json:"stats"`
}

// Template converts a validated seed into a model template.
func (s ItemSeed) Template() model.ItemTemplate {
	return model.ItemTemplate{
		Name:        s.Name,
		Description: s.Description,
		Slot:        s.Slot,
		Rarity:      s.Rarity,
		Stats:       s.Stats,
	}
}

// ShopSeed is one shop listing descriptor.
type ShopSeed struct {
	Price int      `json:"price"`
	Item  ItemSeed `json:"item"`
}

// Encounter is a narrated rare opportunity carrying exactly one task.
type Encounter struct {
	Story string   `json:"story"`
	Task  TaskSeed `json:"task"`
}

// Generator produces game content from a character snapshot. Implementations
// must return only validated descriptors; callers treat any error as a
// degraded, non-fatal condition.
type Generator interface {
	Tasks(ctx context.Context, ch model.Character, existingTitles []string, diaryEntry string) ([]TaskSeed, error)
	EventTasks(ctx context.Context, ch model.Character, ev model.UserEvent) ([]TaskSeed, error)
	Encounter(ctx context.Context, ch model.Character) (*Encounter, error)
	Techniques(ctx context.Context, ch model.Character, existingTitles []string) ([]TaskSeed, error)
	ShopItems(ctx context.Context, ch model.Character) ([]ShopSeed, error)
	Avatar(ctx context.Context, ch model.Character, prompt string) (string, error)
}

// PlaceholderTask is the single synthetic entry used when the primary task
// generation path returns nothing usable.
func PlaceholderTask() TaskSeed {
	return TaskSeed{
		Title:       "Lỗi Hệ Thống",
		Description: "Không thể kết nối tới lõi hệ thống. Hãy thử tái khởi động giao thức trong giây lát.",
		XP:          0,
		Stat:        model.StatSpirit,
		StatReward:  0,
		Gold:        0,
	}
}

func (s ItemSeed) valid() bool {
	return s.Name != "" && s.Slot.Valid() && s.Rarity.Valid() && s.Stats != nil
}

func (s TaskSeed) valid() bool {
	return s.Title != "" && s.Description != "" && s.Stat.Valid() &&
		s.XP >= 0 && s.StatReward >= 0 && s.Gold >= 0
}

// SanitizeTasks drops descriptors missing required fields and strips
// malformed optional item-reward templates rather than rejecting the task.
func SanitizeTasks(seeds []TaskSeed) []TaskSeed {
	out := make([]TaskSeed, 0, len(seeds))
	for _, s := range seeds {
		if !s.valid() {
			continue
		}
		if s.ItemReward != nil && !s.ItemReward.valid() {
			s.ItemReward = nil
		}
		out = append(out, s)
	}
	return out
}

// SanitizeShop drops listings without a price or a usable item template.
func SanitizeShop(seeds []ShopSeed) []ShopSeed {
	out := make([]ShopSeed, 0, len(seeds))
	for _, s := range seeds {
		if s.Price <= 0 || !s.Item.valid() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SanitizeEncounter validates the narrative and its single task; the
// item reward is stripped when malformed. Returns nil when unusable.
func SanitizeEncounter(e *Encounter) *Encounter {
	if e == nil || e.Story == "" || !e.Task.valid() {
		return nil
	}
	if e.Task.ItemReward != nil && !e.Task.ItemReward.valid() {
		e.Task.ItemReward = nil
	}
	return e
}
