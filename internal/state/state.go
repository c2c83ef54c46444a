// Package state owns the single mutable application tree. Every mutation
// goes through Store.Update under one mutex; Snapshot returns a deep copy so
// background readers never observe a torn write.
package state

import (
	"sync"

	"tuluyen/internal/model"
	"tuluyen/internal/progression"
)

// FeedLimit caps the system message feed.
const FeedLimit = 20

// State is the full mutable tree. Inventory is the unequipped pool; Catalog
// indexes every owned item (pool and equipped) so slot ids always resolve
// against the authoritative snapshot, never a filtered view.
type State struct {
	Character          model.Character                `json:"character"`
	Tasks              []model.Task                   `json:"tasks"`
	Techniques         []model.Task                   `json:"techniques"`
	Events             []model.UserEvent              `json:"events"`
	Inventory          []model.EquipmentItem          `json:"inventory"`
	Catalog            map[string]model.EquipmentItem `json:"-"`
	ShopItems          []model.ShopItem               `json:"shopItems"`
	Diary              map[string]string              `json:"cultivationDiary"`
	DiaryDraft         string                         `json:"diaryDraft"`
	LastShopRefresh    string                         `json:"lastShopRefresh"`
	LastEncounterDate  string                         `json:"lastEncounterDate"`
	EncounterAvailable bool                           `json:"encounterAvailable"`
	Entered            bool                           `json:"entered"`
	Feed               []string                       `json:"feed"`
}

// DefaultCharacter is the cold-start cultivator.
func DefaultCharacter() model.Character {
	return model.Character{
		Name:          "Kẻ Tu Luyện",
		Level:         1,
		XP:            0,
		XPToNextLevel: progression.ExperienceRequired(1),
		Realm:         progression.RealmForLevel(1).Name,
		Stats:         model.Stats{Strength: 5, Intellect: 5, Spirit: 5, Social: 5, Finance: 5},
		Gold:          100,
		Equipment:     model.Equipment{},
	}
}

// New returns a fresh cold-start state.
func New() State {
	return State{
		Character: DefaultCharacter(),
		Catalog:   map[string]model.EquipmentItem{},
		Diary:     map[string]string{},
		Feed:      []string{"Hệ thống khởi động... Chào mừng Kẻ Tu Luyện."},
	}
}

// Push appends a system message, dropping the oldest beyond FeedLimit.
func (s *State) Push(msg string) {
	s.Feed = append(s.Feed, msg)
	if len(s.Feed) > FeedLimit {
		s.Feed = s.Feed[len(s.Feed)-FeedLimit:]
	}
}

// OwnedItems returns every item in the catalog: pool plus equipped.
func (s *State) OwnedItems() []model.EquipmentItem {
	out := make([]model.EquipmentItem, 0, len(s.Catalog))
	for _, it := range s.Catalog {
		out = append(out, it)
	}
	return out
}

// RebuildCatalog reindexes owned items and moves slot-referenced ids out of
// the pool, restoring the slot/pool exclusivity invariant after a restore.
func (s *State) RebuildCatalog(owned []model.EquipmentItem) {
	s.Catalog = make(map[string]model.EquipmentItem, len(owned))
	for _, it := range owned {
		s.Catalog[it.ID] = it
	}
	equipped := map[string]bool{}
	s.Character.EnsureEquipment()
	for slot, id := range s.Character.Equipment {
		if id == "" {
			continue
		}
		if _, ok := s.Catalog[id]; !ok {
			// Dangling reference from an older backup; free the slot.
			delete(s.Character.Equipment, slot)
			continue
		}
		equipped[id] = true
	}
	pool := make([]model.EquipmentItem, 0, len(owned))
	for _, it := range owned {
		if !equipped[it.ID] {
			pool = append(pool, it)
		}
	}
	s.Inventory = pool
}

func (s State) clone() State {
	out := s
	out.Tasks = append([]model.Task(nil), s.Tasks...)
	out.Techniques = append([]model.Task(nil), s.Techniques...)
	out.Events = append([]model.UserEvent(nil), s.Events...)
	out.Inventory = append([]model.EquipmentItem(nil), s.Inventory...)
	out.ShopItems = append([]model.ShopItem(nil), s.ShopItems...)
	out.Feed = append([]string(nil), s.Feed...)
	out.Catalog = make(map[string]model.EquipmentItem, len(s.Catalog))
	for k, v := range s.Catalog {
		out.Catalog[k] = v
	}
	out.Diary = make(map[string]string, len(s.Diary))
	for k, v := range s.Diary {
		out.Diary[k] = v
	}
	out.Character.Equipment = make(model.Equipment, len(s.Character.Equipment))
	for k, v := range s.Character.Equipment {
		out.Character.Equipment[k] = v
	}
	return out
}

// Store serializes access to the state tree.
type Store struct {
	mu sync.RWMutex
	s  State
}

func NewStore(initial State) *Store {
	if initial.Catalog == nil {
		initial.Catalog = map[string]model.EquipmentItem{}
	}
	if initial.Diary == nil {
		initial.Diary = map[string]string{}
	}
	initial.Character.EnsureEquipment()
	return &Store{s: initial}
}

// Snapshot returns a deep copy of the committed state.
func (st *Store) Snapshot() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.clone()
}

// Update applies fn to the state under the write lock.
func (st *Store) Update(fn func(*State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.s)
}

// Replace swaps the whole tree, all-or-nothing (backup restore path).
func (st *Store) Replace(next State) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if next.Catalog == nil {
		next.Catalog = map[string]model.EquipmentItem{}
	}
	if next.Diary == nil {
		next.Diary = map[string]string{}
	}
	next.Character.EnsureEquipment()
	st.s = next
}
