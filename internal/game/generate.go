package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tuluyen/internal/event"
	"tuluyen/internal/gen"
	"tuluyen/internal/model"
	"tuluyen/internal/state"
)

// Category names one kind of generator work. At most one request per
// category runs at a time; the loading map mirrors that for the UI.
type Category string

const (
	CategoryTasks      Category = "tasks"
	CategoryTechniques Category = "techniques"
	CategoryEncounter  Category = "encounter"
	CategoryShop       Category = "shop"
	CategoryAvatar     Category = "avatar"
)

var (
	ErrInFlight             = errors.New("generation already running for this category")
	ErrEncounterUnavailable = errors.New("no encounter available today")
)

func (e *Engine) begin(c Category) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[c] {
		return false
	}
	e.inflight[c] = true
	return true
}

func (e *Engine) end(c Category) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, c)
}

// Busy reports whether a category currently has a request running.
func (e *Engine) Busy(c Category) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight[c]
}

// Loading returns a copy of the per-category in-flight flags.
func (e *Engine) Loading() map[Category]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Category]bool, len(e.inflight))
	for c, v := range e.inflight {
		out[c] = v
	}
	return out
}

func mintTask(seed gen.TaskSeed, longTerm bool) model.Task {
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       seed.Title,
		Description: seed.Description,
		XP:          seed.XP,
		Stat:        seed.Stat,
		StatReward:  seed.StatReward,
		Gold:        seed.Gold,
		IsLongTerm:  longTerm,
	}
	if seed.ItemReward != nil {
		tpl := seed.ItemReward.Template()
		t.ItemReward = &tpl
	}
	return t
}

// RequestTasks asks the generator for a fresh daily batch. Completed tasks
// are pruned; a total generator failure still yields one placeholder task so
// the day is never empty.
func (e *Engine) RequestTasks(ctx context.Context) error {
	if !e.begin(CategoryTasks) {
		return ErrInFlight
	}
	defer e.end(CategoryTasks)

	snap := e.State.Snapshot()
	yesterday := event.Stamp(e.now().AddDate(0, 0, -1))
	diary := snap.Diary[yesterday]

	e.State.Update(func(s *state.State) {
		s.Push("Đang nhận tín hiệu từ hệ thống...")
		if diary != "" {
			s.Push("Phân tích nhật ký tu luyện của ngày hôm qua...")
		}
	})

	seeds, err := e.Gen.Tasks(ctx, snap.Character, model.Titles(model.Incomplete(snap.Tasks)), diary)
	if err != nil {
		e.logf("[game] generate tasks: %v", err)
		seeds = nil
	}
	if len(seeds) == 0 {
		seeds = []gen.TaskSeed{gen.PlaceholderTask()}
	}

	e.State.Update(func(s *state.State) {
		kept := model.Incomplete(s.Tasks)
		for _, seed := range seeds {
			kept = append(kept, mintTask(seed, false))
		}
		s.Tasks = kept
		s.Push(fmt.Sprintf("Hệ thống đã gửi %d nhiệm vụ mới.", len(seeds)))
	})
	return err
}

// RequestTechniques asks for new long-term techniques. Failures leave the
// collection untouched and notify the user.
func (e *Engine) RequestTechniques(ctx context.Context) error {
	if !e.begin(CategoryTechniques) {
		return ErrInFlight
	}
	defer e.end(CategoryTechniques)

	e.State.Update(func(s *state.State) {
		s.Push("Đang suy diễn Công Pháp phù hợp với căn cơ...")
	})

	snap := e.State.Snapshot()
	seeds, err := e.Gen.Techniques(ctx, snap.Character, model.Titles(model.Incomplete(snap.Techniques)))
	if err != nil {
		e.logf("[game] generate techniques: %v", err)
		e.State.Update(func(s *state.State) {
			s.Push("Thiên cơ hỗn loạn, không thể truyền thụ công pháp mới. Hãy thử lại sau.")
		})
		return err
	}

	e.State.Update(func(s *state.State) {
		for _, seed := range seeds {
			s.Techniques = append(s.Techniques, mintTask(seed, true))
		}
		s.Push(fmt.Sprintf("Hệ thống đã truyền thụ %d công pháp mới.", len(seeds)))
	})
	return nil
}

// RequestEncounter consumes today's encounter opportunity and, on success,
// appends the encounter task with its story. The opportunity is spent even
// when the generator fails.
func (e *Engine) RequestEncounter(ctx context.Context) error {
	if !e.State.Snapshot().EncounterAvailable {
		return ErrEncounterUnavailable
	}
	if !e.begin(CategoryEncounter) {
		return ErrInFlight
	}
	defer e.end(CategoryEncounter)

	e.State.Update(func(s *state.State) {
		s.EncounterAvailable = false
		s.Push("Dò xét thiên cơ...")
	})

	snap := e.State.Snapshot()
	enc, err := e.Gen.Encounter(ctx, snap.Character)
	if err != nil {
		e.logf("[game] generate encounter: %v", err)
		e.State.Update(func(s *state.State) {
			s.Push("Thiên cơ hỗn loạn, không thể tìm thấy kỳ ngộ nào hôm nay.")
		})
		return err
	}

	e.State.Update(func(s *state.State) {
		s.Push(fmt.Sprintf("**KỲ NGỘ!** %s", enc.Story))
		s.Tasks = append(s.Tasks, mintTask(enc.Task, false))
		s.Push(fmt.Sprintf("Nhiệm vụ kỳ ngộ xuất hiện: %q.", enc.Task.Title))
	})
	return nil
}

// RefreshShop replaces the whole shop with a fresh batch of listings.
func (e *Engine) RefreshShop(ctx context.Context) error {
	if !e.begin(CategoryShop) {
		return ErrInFlight
	}
	defer e.end(CategoryShop)

	e.State.Update(func(s *state.State) {
		s.Push("Thương Thành đang làm mới vật phẩm...")
	})

	snap := e.State.Snapshot()
	seeds, err := e.Gen.ShopItems(ctx, snap.Character)
	if err != nil {
		e.logf("[game] refresh shop: %v", err)
		e.State.Update(func(s *state.State) {
			s.Push("Lỗi kết nối với Thương Thành, không thể làm mới vật phẩm.")
		})
		return err
	}

	listings := make([]model.ShopItem, 0, len(seeds))
	for _, seed := range seeds {
		listings = append(listings, model.ShopItem{
			ID:    uuid.NewString(),
			Price: seed.Price,
			Item:  seed.Item.Template(),
		})
	}
	e.State.Update(func(s *state.State) {
		s.ShopItems = listings
		s.Push(fmt.Sprintf("Thương Thành đã bày bán %d vật phẩm mới.", len(listings)))
	})
	return nil
}

// GenerateAvatar renders a portrait and stores it inline as a data URL.
func (e *Engine) GenerateAvatar(ctx context.Context, prompt string) error {
	if !e.begin(CategoryAvatar) {
		return ErrInFlight
	}
	defer e.end(CategoryAvatar)

	e.State.Update(func(s *state.State) {
		s.Push("Hệ thống đang hội tụ linh khí để kiến tạo pháp tướng...")
	})

	snap := e.State.Snapshot()
	b64, err := e.Gen.Avatar(ctx, snap.Character, prompt)
	if err != nil {
		e.logf("[game] generate avatar: %v", err)
		e.State.Update(func(s *state.State) {
			s.Push("Lỗi kiến tạo pháp tướng. Hãy thử lại sau.")
		})
		return err
	}

	e.State.Update(func(s *state.State) {
		s.Character.Avatar = "data:image/png;base64," + b64
		s.Push("Pháp tướng mới đã được kiến tạo!")
	})
	return nil
}

// PrepareEventTasks generates preparatory tasks for every not-yet-prepared
// event inside the horizon. Each event is marked prepared exactly once, even
// when its generation fails, so a flaky generator cannot spam retries.
func (e *Engine) PrepareEventTasks(ctx context.Context) error {
	snap := e.State.Snapshot()
	due := event.DueForPreparation(snap.Events, e.now(), e.PrepHorizonDays)
	if len(due) == 0 {
		return nil
	}

	e.State.Update(func(s *state.State) {
		s.Push("Phát hiện thiên cơ biến động... Hệ thống đang chuẩn bị nhiệm vụ.")
	})

	var lastErr error
	for _, ev := range due {
		seeds, err := e.Gen.EventTasks(ctx, snap.Character, ev)
		if err != nil {
			e.logf("[game] prepare event %q: %v", ev.Name, err)
			lastErr = err
		}
		e.State.Update(func(s *state.State) {
			for i := range s.Events {
				if s.Events[i].ID == ev.ID {
					s.Events[i].TasksGenerated = true
				}
			}
			for _, seed := range seeds {
				t := mintTask(seed, false)
				t.IsEventTask = true
				t.EventID = ev.ID
				t.EventName = ev.Name
				s.Tasks = append(s.Tasks, t)
			}
			if len(seeds) > 0 {
				s.Push(fmt.Sprintf("Đã thêm %d nhiệm vụ chuẩn bị cho thiên cơ %q.", len(seeds), ev.Name))
			}
		})
	}
	return lastErr
}

// EnsureTasks requests a batch when no incomplete tasks remain, so the board
// never sits empty after a fresh day.
func (e *Engine) EnsureTasks(ctx context.Context) {
	snap := e.State.Snapshot()
	if len(model.Incomplete(snap.Tasks)) > 0 {
		return
	}
	if err := e.RequestTasks(ctx); err != nil && !errors.Is(err, ErrInFlight) {
		e.logf("[game] ensure tasks: %v", err)
	}
}

// CheckDaily runs the once-per-day transitions: shop refresh, the encounter
// roll, event preparation, and task replenishment. The date stamps are
// written before the generator is called, so a failed refresh does not retry
// until the next day.
func (e *Engine) CheckDaily(ctx context.Context) {
	today := event.Stamp(e.now())

	snap := e.State.Snapshot()
	if snap.LastShopRefresh != today {
		e.State.Update(func(s *state.State) {
			s.LastShopRefresh = today
		})
		if err := e.RefreshShop(ctx); err != nil && !errors.Is(err, ErrInFlight) {
			e.logf("[game] daily shop refresh: %v", err)
		}
	}

	snap = e.State.Snapshot()
	if snap.LastEncounterDate != today {
		hit := e.roll() < e.EncounterChance
		e.State.Update(func(s *state.State) {
			s.LastEncounterDate = today
			if hit {
				s.EncounterAvailable = true
				s.Push("Cảm giác có thiên cơ biến động... Một kỳ ngộ có thể đang chờ đợi.")
			}
		})
	}

	if err := e.PrepareEventTasks(ctx); err != nil {
		e.logf("[game] daily event prep: %v", err)
	}
	e.EnsureTasks(ctx)
}
