// Package game holds the progression engine: every state mutation behind a
// user action goes through Engine, which owns the serialization discipline
// described in the design notes.
package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tuluyen/internal/backup"
	"tuluyen/internal/config"
	"tuluyen/internal/event"
	"tuluyen/internal/gen"
	"tuluyen/internal/model"
	"tuluyen/internal/progression"
	"tuluyen/internal/state"
	"tuluyen/internal/storage"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Engine applies rewards, manages inventory and equipment, tracks destiny
// events, and talks to the content generator. All mutations funnel through
// the state store; notifications land on the system feed.
type Engine struct {
	State   *state.Store
	Gen     gen.Generator
	Storage storage.Store
	Clock   Clock
	Rand    func() float64
	Logger  *log.Logger

	Curve            progression.Curve
	PrepHorizonDays  int
	BadgeHorizonDays int
	EncounterChance  float64

	mu       sync.Mutex
	inflight map[Category]bool
}

func New(st *state.Store, g gen.Generator, store storage.Store, cfg *config.Config, logger *log.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		State:            st,
		Gen:              g,
		Storage:          store,
		Clock:            RealClock{},
		Rand:             rand.Float64,
		Logger:           logger,
		Curve:            progression.Curve{Base: cfg.XP.Base, GrowthPct: cfg.XP.GrowthPct},
		PrepHorizonDays:  cfg.Events.PrepHorizonDays,
		BadgeHorizonDays: cfg.Events.BadgeHorizonDays,
		EncounterChance:  cfg.Daily.EncounterChance,
		inflight:         map[Category]bool{},
	}
}

func (e *Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Engine) roll() float64 {
	if e.Rand == nil {
		return rand.Float64()
	}
	return e.Rand()
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

// flush writes the current snapshot to storage, best effort. Used after
// explicit user actions; the autosave loop covers everything else.
func (e *Engine) flush(ctx context.Context) {
	if e.Storage == nil {
		return
	}
	if err := state.Save(ctx, e.Storage, e.State.Snapshot()); err != nil {
		e.logf("[game] flush: %v", err)
	}
}

func findTask(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// applyReward mutates the character for one completed task: stat, xp with
// level-ups, gold, and the optional minted item reward.
func (e *Engine) applyReward(s *state.State, t model.Task) {
	s.Character.Stats.Add(t.Stat, t.StatReward)
	s.Character.XP += t.XP
	s.Character.Gold += t.Gold

	var notes []string
	s.Character, notes = e.Curve.ApplyLevelUps(s.Character)
	for _, n := range notes {
		s.Push(n)
	}

	if t.ItemReward != nil {
		item := t.ItemReward.Materialize(uuid.NewString())
		s.Inventory = append(s.Inventory, item)
		s.Catalog[item.ID] = item
		s.Push(fmt.Sprintf("[VẬT PHẨM]: Bạn đã nhận được Pháp Bảo %q!", item.Name))
	}
}

// CompleteTask applies a task's rewards exactly once. Unknown or already
// completed ids are inert.
func (e *Engine) CompleteTask(id string) bool {
	applied := false
	e.State.Update(func(s *state.State) {
		i := findTask(s.Tasks, id)
		if i < 0 || s.Tasks[i].Completed {
			return
		}
		t := s.Tasks[i]
		s.Tasks[i].Completed = true
		s.Push(fmt.Sprintf("Hoàn thành %q. +%d EXP, +%d %s, +%d Vàng.",
			t.Title, t.XP, t.StatReward, t.Stat, t.Gold))
		e.applyReward(s, t)
		applied = true
	})
	return applied
}

// CompleteTechnique is the long-term variant of CompleteTask, tracked in the
// techniques collection. Same exactly-once contract.
func (e *Engine) CompleteTechnique(id string) bool {
	applied := false
	e.State.Update(func(s *state.State) {
		i := findTask(s.Techniques, id)
		if i < 0 || s.Techniques[i].Completed {
			return
		}
		t := s.Techniques[i]
		s.Techniques[i].Completed = true
		s.Push(fmt.Sprintf("**Đại Đạo Quy Nhất!** Công Pháp %q đã viên mãn. Phần thưởng khổng lồ đang được chuyển tới.", t.Title))
		s.Push(fmt.Sprintf("+%d EXP, +%d %s, +%d Vàng.", t.XP, t.StatReward, t.Stat, t.Gold))
		e.applyReward(s, t)
		applied = true
	})
	return applied
}

// Equip moves an item from the pool into its slot, displacing whatever was
// there back into the pool. Unknown item ids fail silently.
func (e *Engine) Equip(itemID string) bool {
	equipped := false
	e.State.Update(func(s *state.State) {
		var item model.EquipmentItem
		idx := -1
		for i := range s.Inventory {
			if s.Inventory[i].ID == itemID {
				item, idx = s.Inventory[i], i
				break
			}
		}
		if idx < 0 {
			return
		}

		s.Inventory = append(s.Inventory[:idx], s.Inventory[idx+1:]...)
		if displaced := s.Character.EquippedID(item.Slot); displaced != "" {
			if prev, ok := s.Catalog[displaced]; ok {
				s.Inventory = append(s.Inventory, prev)
			}
		}
		s.Character.EnsureEquipment()
		s.Character.Equipment[item.Slot] = item.ID
		s.Push(fmt.Sprintf("Đã trang bị [%s].", item.Name))
		equipped = true
	})
	return equipped
}

// Unequip clears a slot, returning the item to the pool. The item is
// resolved from the catalog, the authoritative index of owned items, so a
// stale filtered view can never lose it. Empty slots are a no-op.
func (e *Engine) Unequip(slot model.Slot) bool {
	moved := false
	e.State.Update(func(s *state.State) {
		id := s.Character.EquippedID(slot)
		if id == "" {
			return
		}
		item, ok := s.Catalog[id]
		if !ok {
			e.logf("[game] unequip: item %s missing from catalog", id)
			return
		}
		s.Inventory = append(s.Inventory, item)
		delete(s.Character.Equipment, slot)
		s.Push(fmt.Sprintf("Đã gỡ bỏ [%s].", item.Name))
		moved = true
	})
	return moved
}

// EquippedBonuses sums the stat bonuses of all slotted items. Absent slots
// contribute nothing.
func EquippedBonuses(ch model.Character, catalog map[string]model.EquipmentItem) map[model.Category]int {
	out := map[model.Category]int{}
	for _, slot := range model.Slots {
		id := ch.EquippedID(slot)
		if id == "" {
			continue
		}
		item, ok := catalog[id]
		if !ok {
			continue
		}
		for cat, bonus := range item.Stats {
			out[cat] += bonus
		}
	}
	return out
}

// Purchase buys a one-time shop listing. Insufficient gold leaves everything
// untouched and produces a user-visible message.
func (e *Engine) Purchase(shopItemID string) bool {
	bought := false
	e.State.Update(func(s *state.State) {
		idx := -1
		for i := range s.ShopItems {
			if s.ShopItems[i].ID == shopItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		offer := s.ShopItems[idx]
		if s.Character.Gold < offer.Price {
			s.Push("Linh thạch không đủ, không thể mua vật phẩm này.")
			return
		}

		s.Character.Gold -= offer.Price
		item := offer.Item.Materialize(uuid.NewString())
		s.Inventory = append(s.Inventory, item)
		s.Catalog[item.ID] = item
		s.ShopItems = append(s.ShopItems[:idx], s.ShopItems[idx+1:]...)
		s.Push(fmt.Sprintf("Mua thành công [%s] với giá %d vàng.", item.Name, offer.Price))
		bought = true
	})
	return bought
}

// AddEvent records a destiny event with a fresh id.
func (e *Engine) AddEvent(name, date string) (model.UserEvent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.UserEvent{}, fmt.Errorf("event name is required")
	}
	if _, err := event.ParseDate(date); err != nil {
		return model.UserEvent{}, fmt.Errorf("invalid event date %q: %w", date, err)
	}
	ev := model.UserEvent{ID: uuid.NewString(), Name: name, Date: date}
	e.State.Update(func(s *state.State) {
		s.Events = append(s.Events, ev)
		s.Push(fmt.Sprintf("Đã ghi lại thiên cơ: %q.", name))
	})
	return ev, nil
}

// DeleteEvent removes the event and its still-incomplete preparatory tasks,
// matched on the explicit event reference. Completed tasks stay as history.
func (e *Engine) DeleteEvent(id string) bool {
	removed := false
	e.State.Update(func(s *state.State) {
		events := make([]model.UserEvent, 0, len(s.Events))
		for _, ev := range s.Events {
			if ev.ID == id {
				removed = true
				continue
			}
			events = append(events, ev)
		}
		if !removed {
			return
		}
		s.Events = events

		tasks := make([]model.Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.IsEventTask && t.EventID == id && !t.Completed {
				continue
			}
			tasks = append(tasks, t)
		}
		s.Tasks = tasks
		s.Push("Một thiên cơ đã được xóa bỏ.")
	})
	return removed
}

// HasUpcomingEvents is the UI badge predicate over the wider horizon.
func (e *Engine) HasUpcomingEvents() bool {
	snap := e.State.Snapshot()
	return event.HasUpcoming(snap.Events, e.now(), e.BadgeHorizonDays)
}

// SetDiaryDraft stores the in-progress diary text.
func (e *Engine) SetDiaryDraft(text string) {
	e.State.Update(func(s *state.State) {
		s.DiaryDraft = text
	})
}

// SaveDiary commits the draft under today's date and clears it. An empty
// draft is a no-op.
func (e *Engine) SaveDiary(ctx context.Context) bool {
	saved := false
	today := event.Stamp(e.now())
	e.State.Update(func(s *state.State) {
		if strings.TrimSpace(s.DiaryDraft) == "" {
			return
		}
		s.Diary[today] = s.DiaryDraft
		s.DiaryDraft = ""
		s.Push("Nhật ký tu luyện đã được lưu trữ.")
		saved = true
	})
	if saved {
		e.flush(ctx)
	}
	return saved
}

// Rename changes the cultivator's name and marks the session as entered.
func (e *Engine) Rename(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	e.State.Update(func(s *state.State) {
		s.Character.Name = name
		s.Entered = true
		s.Push(fmt.Sprintf("Tên của Kẻ Tu Luyện đã được đổi thành %q.", name))
	})
	return true
}

// Backup exports the session as one opaque blob from a single snapshot.
func (e *Engine) Backup() (string, error) {
	return backup.Encode(e.State.Snapshot())
}

// RestoreBackup replaces the session from a blob, all-or-nothing. On any
// validation failure the current state is untouched.
func (e *Engine) RestoreBackup(ctx context.Context, blob string) error {
	data, err := backup.Decode(blob)
	if err != nil {
		e.State.Update(func(s *state.State) {
			s.Push("Lỗi: Không thể khôi phục linh hồn. Dữ liệu sao lưu bị hỏng hoặc không đúng định dạng.")
		})
		return err
	}

	next := backup.Restore(data)
	cur := e.State.Snapshot()
	next.Feed = cur.Feed
	next.Push("Khôi phục linh hồn thành công! Dữ liệu đã được tải.")
	e.State.Replace(next)
	e.flush(ctx)
	return nil
}
