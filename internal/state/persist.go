package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tuluyen/internal/model"
	"tuluyen/internal/storage"
)

// Load reads the per-key saved state. A missing key falls back to the
// cold-start default; a corrupt value is logged and skipped the same way,
// so a damaged store never prevents the session from starting. The second
// return reports whether a saved character existed, which is the only signal
// that distinguishes a cold start from a returning session.
func Load(ctx context.Context, store storage.Store, logger *log.Logger) (State, bool) {
	if logger == nil {
		logger = log.Default()
	}
	s := New()

	found := loadJSON(ctx, store, storage.KeyCharacter, logger, &s.Character)
	s.Character.EnsureEquipment()
	if s.Character.Level < 1 {
		s.Character = DefaultCharacter()
	}

	loadJSON(ctx, store, storage.KeyTasks, logger, &s.Tasks)
	loadJSON(ctx, store, storage.KeyTechniques, logger, &s.Techniques)
	loadJSON(ctx, store, storage.KeyEvents, logger, &s.Events)
	loadJSON(ctx, store, storage.KeyShopItems, logger, &s.ShopItems)
	loadJSON(ctx, store, storage.KeyDiary, logger, &s.Diary)
	if s.Diary == nil {
		s.Diary = map[string]string{}
	}

	var owned []model.EquipmentItem
	loadJSON(ctx, store, storage.KeyInventory, logger, &owned)
	s.RebuildCatalog(owned)

	s.DiaryDraft = loadString(ctx, store, storage.KeyDiaryDraft, logger)
	s.LastShopRefresh = loadString(ctx, store, storage.KeyLastShopRefresh, logger)
	s.LastEncounterDate = loadString(ctx, store, storage.KeyLastEncounterDate, logger)
	s.Entered = loadString(ctx, store, storage.KeyEntered, logger) == "true"

	return s, found
}

// Save flushes a snapshot per-key. The persisted inventory is the full owned
// set (pool plus equipped) so equipment survives a reload.
func Save(ctx context.Context, store storage.Store, s State) error {
	writes := []struct {
		key string
		val any
	}{
		{storage.KeyCharacter, s.Character},
		{storage.KeyTasks, s.Tasks},
		{storage.KeyTechniques, s.Techniques},
		{storage.KeyEvents, s.Events},
		{storage.KeyShopItems, s.ShopItems},
		{storage.KeyDiary, s.Diary},
		{storage.KeyInventory, s.OwnedItems()},
	}
	for _, w := range writes {
		b, err := json.Marshal(w.val)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", w.key, err)
		}
		if err := store.Set(ctx, w.key, string(b)); err != nil {
			return fmt.Errorf("save %s: %w", w.key, err)
		}
	}

	strings := map[string]string{
		storage.KeyDiaryDraft:        s.DiaryDraft,
		storage.KeyLastShopRefresh:   s.LastShopRefresh,
		storage.KeyLastEncounterDate: s.LastEncounterDate,
	}
	for key, val := range strings {
		var err error
		if val == "" {
			err = store.Delete(ctx, key)
		} else {
			err = store.Set(ctx, key, val)
		}
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	entered := "false"
	if s.Entered {
		entered = "true"
	}
	if err := store.Set(ctx, storage.KeyEntered, entered); err != nil {
		return fmt.Errorf("save %s: %w", storage.KeyEntered, err)
	}
	return nil
}

func loadJSON(ctx context.Context, store storage.Store, key string, logger *log.Logger, out any) bool {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Printf("[storage] read %s: %v", key, err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Printf("[storage] decode %s: %v (using default)", key, err)
		return false
	}
	return true
}

func loadString(ctx context.Context, store storage.Store, key string, logger *log.Logger) string {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Printf("[storage] read %s: %v", key, err)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}
