package progression

import (
	"fmt"

	"tuluyen/internal/model"
)

// Realm is a named tier of the level progression.
type Realm struct {
	Name     string `json:"name" yaml:"name"`
	MinLevel int    `json:"minLevel" yaml:"min_level"`
}

// Realms is the ascending threshold table. The first entry is the base
// realm for levels below every other threshold.
var Realms = []Realm{
	{Name: "Phàm Nhân", MinLevel: 0},
	{Name: "Luyện Khí", MinLevel: 1},
	{Name: "Trúc Cơ", MinLevel: 10},
	{Name: "Kim Đan", MinLevel: 25},
	{Name: "Nguyên Anh", MinLevel: 50},
	{Name: "Hóa Thần", MinLevel: 100},
	{Name: "Đại Thừa", MinLevel: 200},
}

// RealmForLevel returns the highest realm whose threshold does not exceed level.
func RealmForLevel(level int) Realm {
	current := Realms[0]
	for _, r := range Realms {
		if level >= r.MinLevel {
			current = r
		} else {
			break
		}
	}
	return current
}

// Curve describes experience growth: the requirement for the next level is
// the previous requirement times GrowthPct/100, rounded down at every step.
type Curve struct {
	Base      int
	GrowthPct int
}

// DefaultCurve starts at 100 xp and grows 15% per level.
var DefaultCurve = Curve{Base: 100, GrowthPct: 115}

// ExperienceRequired returns the xp needed to clear the given level.
// Strictly increasing in level; ExperienceRequired(1) == Base.
func (c Curve) ExperienceRequired(level int) int {
	need := c.Base
	for l := 1; l < level; l++ {
		need = need * c.GrowthPct / 100
	}
	return need
}

// ExperienceRequired uses the default curve.
func ExperienceRequired(level int) int {
	return DefaultCurve.ExperienceRequired(level)
}

// ApplyLevelUps consumes accumulated xp, one level at a time, until
// xp < xpToNextLevel. Each level that crosses a realm threshold produces a
// breakthrough line, every other level a plain level-up line. Terminates
// because the requirement strictly grows while xp is finite. Calling it
// again on a normalized character changes nothing and emits nothing.
func (c Curve) ApplyLevelUps(ch model.Character) (model.Character, []string) {
	var notes []string
	for ch.XP >= ch.XPToNextLevel {
		ch.XP -= ch.XPToNextLevel
		ch.Level++
		ch.XPToNextLevel = c.ExperienceRequired(ch.Level)
		realm := RealmForLevel(ch.Level)
		if realm.Name != ch.Realm {
			ch.Realm = realm.Name
			notes = append(notes, fmt.Sprintf("**ĐỘT PHÁ!** Đã tiến nhập cảnh giới %s!", realm.Name))
		} else {
			notes = append(notes, fmt.Sprintf("TINH! Thăng cấp! Cấp độ hiện tại: %d.", ch.Level))
		}
	}
	return ch, notes
}

// ApplyLevelUps uses the default curve.
func ApplyLevelUps(ch model.Character) (model.Character, []string) {
	return DefaultCurve.ApplyLevelUps(ch)
}
