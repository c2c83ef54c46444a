package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tuluyen/internal/model"
	"tuluyen/internal/state"
)

// Handler exposes the engine over JSON. Routes are registered with method
// plus pattern so the mux handles method dispatch.
type Handler struct {
	Engine *Engine
}

func NewHandler(e *Engine) *Handler {
	return &Handler{Engine: e}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// stateResponse is the full client-facing view: the session plus everything
// derived from it that the UI would otherwise have to recompute.
type stateResponse struct {
	state.State
	Equipped          map[model.Slot]model.EquipmentItem `json:"equipped"`
	EquippedBonuses   map[model.Category]int             `json:"equippedBonuses"`
	HasUpcomingEvents bool                               `json:"hasUpcomingEvents"`
	Loading           map[Category]bool                  `json:"loading"`
}

func (h *Handler) stateView() stateResponse {
	snap := h.Engine.State.Snapshot()
	equipped := map[model.Slot]model.EquipmentItem{}
	for _, slot := range model.Slots {
		if id := snap.Character.EquippedID(slot); id != "" {
			if item, ok := snap.Catalog[id]; ok {
				equipped[slot] = item
			}
		}
	}
	return stateResponse{
		State:             snap,
		Equipped:          equipped,
		EquippedBonuses:   EquippedBonuses(snap.Character, snap.Catalog),
		HasUpcomingEvents: h.Engine.HasUpcomingEvents(),
		Loading:           h.Engine.Loading(),
	}
}

// startGeneration answers 202 immediately and runs the generator work in the
// background; the client polls the loading flags on /api/state. Overlapping
// requests for the same category answer 409.
func (h *Handler) startGeneration(w http.ResponseWriter, cat Category, run func(context.Context) error) {
	if h.Engine.Busy(cat) {
		http.Error(w, "generation already running", http.StatusConflict)
		return
	}
	go func() {
		if err := run(context.Background()); err != nil && !errors.Is(err, ErrInFlight) {
			h.Engine.logf("[game] %s generation: %v", cat, err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]any{"started": true, "category": cat})
}

func (h *Handler) Register(mux *http.ServeMux) {
	e := h.Engine

	mux.HandleFunc("GET /api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("POST /api/tasks/generate", func(w http.ResponseWriter, r *http.Request) {
		h.startGeneration(w, CategoryTasks, e.RequestTasks)
	})

	mux.HandleFunc("POST /api/tasks/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		if !e.CompleteTask(r.PathValue("id")) {
			http.Error(w, "task not found or already completed", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("POST /api/techniques/generate", func(w http.ResponseWriter, r *http.Request) {
		h.startGeneration(w, CategoryTechniques, e.RequestTechniques)
	})

	mux.HandleFunc("POST /api/techniques/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		if !e.CompleteTechnique(r.PathValue("id")) {
			http.Error(w, "technique not found or already completed", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("POST /api/encounter", func(w http.ResponseWriter, r *http.Request) {
		if !e.State.Snapshot().EncounterAvailable {
			http.Error(w, "no encounter available today", http.StatusConflict)
			return
		}
		h.startGeneration(w, CategoryEncounter, e.RequestEncounter)
	})

	mux.HandleFunc("POST /api/shop/refresh", func(w http.ResponseWriter, r *http.Request) {
		h.startGeneration(w, CategoryShop, e.RefreshShop)
	})

	mux.HandleFunc("POST /api/shop/{id}/purchase", func(w http.ResponseWriter, r *http.Request) {
		if !e.Purchase(r.PathValue("id")) {
			http.Error(w, "purchase failed", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("POST /api/equipment/equip", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ItemID string `json:"itemId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if !e.Equip(body.ItemID) {
			http.Error(w, "item not found in inventory", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("POST /api/equipment/unequip", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Slot model.Slot `json:"slot"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if !body.Slot.Valid() {
			http.Error(w, "unknown equipment slot", http.StatusBadRequest)
			return
		}
		if !e.Unequip(body.Slot) {
			http.Error(w, "slot is empty", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		snap := e.State.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"events":            snap.Events,
			"hasUpcomingEvents": e.HasUpcomingEvents(),
		})
	})

	mux.HandleFunc("POST /api/events", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		ev, err := e.AddEvent(body.Name, body.Date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, ev)
	})

	mux.HandleFunc("DELETE /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !e.DeleteEvent(r.PathValue("id")) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("PUT /api/diary/draft", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		e.SetDiaryDraft(body.Text)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("POST /api/diary/save", func(w http.ResponseWriter, r *http.Request) {
		if !e.SaveDiary(r.Context()) {
			http.Error(w, "diary draft is empty", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("PUT /api/character/name", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if !e.Rename(body.Name) {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})

	mux.HandleFunc("POST /api/character/avatar", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(body.Prompt) == "" {
			http.Error(w, "prompt is required", http.StatusBadRequest)
			return
		}
		prompt := body.Prompt
		h.startGeneration(w, CategoryAvatar, func(ctx context.Context) error {
			return e.GenerateAvatar(ctx, prompt)
		})
	})

	mux.HandleFunc("GET /api/backup", func(w http.ResponseWriter, r *http.Request) {
		blob, err := e.Backup()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"backup": blob})
	})

	mux.HandleFunc("POST /api/restore", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Backup string `json:"backup"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if err := e.RestoreBackup(r.Context(), body.Backup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	})
}
