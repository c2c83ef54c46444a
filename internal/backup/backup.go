// Package backup encodes the whole session into one versioned text blob,
// the only interchange format exposed to the user.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"

	"tuluyen/internal/model"
	"tuluyen/internal/progression"
	"tuluyen/internal/state"
)

// Version of the envelope format.
const Version = 2

// ErrInvalid marks a blob that failed shape validation. Nothing is mutated
// when Decode returns it.
var ErrInvalid = errors.New("backup data is invalid")

// Data is the envelope. Inventory carries every owned item, equipped ones
// included, so gear survives the round trip.
type Data struct {
	Version           int                   `json:"version"`
	Character         model.Character       `json:"character"`
	Tasks             []model.Task          `json:"tasks"`
	Techniques        []model.Task          `json:"techniques,omitempty"`
	Events            []model.UserEvent     `json:"events,omitempty"`
	CultivationDiary  map[string]string     `json:"cultivationDiary,omitempty"`
	LastEncounterDate string                `json:"lastEncounterDate,omitempty"`
	Inventory         []model.EquipmentItem `json:"inventory,omitempty"`
}

// Encode captures a single consistent snapshot as the export blob.
func Encode(s state.State) (string, error) {
	data := Data{
		Version:           Version,
		Character:         s.Character,
		Tasks:             s.Tasks,
		Techniques:        s.Techniques,
		Events:            s.Events,
		CultivationDiary:  s.Diary,
		LastEncounterDate: s.LastEncounterDate,
		Inventory:         s.OwnedItems(),
	}
	if data.Tasks == nil {
		data.Tasks = []model.Task{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return string(b), nil
}

// probe distinguishes "missing" from "present but empty" for the fields the
// validation contract cares about.
type probe struct {
	Version   int             `json:"version"`
	Character json.RawMessage `json:"character"`
	Tasks     json.RawMessage `json:"tasks"`
}

// Decode parses and validates the blob. The version marker, character
// object, and tasks array are required; anything else defaults to empty.
func Decode(blob string) (Data, error) {
	var p probe
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if p.Version <= 0 {
		return Data{}, fmt.Errorf("%w: missing version marker", ErrInvalid)
	}
	if !presentObject(p.Character) {
		return Data{}, fmt.Errorf("%w: missing character", ErrInvalid)
	}
	if !presentArray(p.Tasks) {
		return Data{}, fmt.Errorf("%w: missing tasks array", ErrInvalid)
	}

	var data Data
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if data.Character.Level < 1 {
		return Data{}, fmt.Errorf("%w: malformed character", ErrInvalid)
	}
	return data, nil
}

// Restore builds the replacement state from a decoded envelope: absent
// collections default to empty, the diary draft is cleared, and the shop is
// dropped so it regenerates against the restored character.
func Restore(data Data) state.State {
	s := state.New()
	s.Character = data.Character
	s.Character.EnsureEquipment()
	// The curve fields are derived from the level, never trusted from the
	// blob. A zero XPToNextLevel would hand out a free level on the next gain.
	s.Character.XPToNextLevel = progression.ExperienceRequired(s.Character.Level)
	s.Character.Realm = progression.RealmForLevel(s.Character.Level).Name
	s.Tasks = data.Tasks
	s.Techniques = data.Techniques
	s.Events = data.Events
	s.Diary = data.CultivationDiary
	if s.Diary == nil {
		s.Diary = map[string]string{}
	}
	s.LastEncounterDate = data.LastEncounterDate
	s.DiaryDraft = ""
	s.ShopItems = nil
	s.LastShopRefresh = ""
	s.Entered = true
	s.RebuildCatalog(data.Inventory)
	return s
}

func presentObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func presentArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}
