package model

// Category names one of the five cultivated stats.
type Category string

const (
	StatStrength  Category = "strength"
	StatIntellect Category = "intellect"
	StatSpirit    Category = "spirit"
	StatSocial    Category = "social"
	StatFinance   Category = "finance"
)

var Categories = []Category{StatStrength, StatIntellect, StatSpirit, StatSocial, StatFinance}

func (c Category) Valid() bool {
	switch c {
	case StatStrength, StatIntellect, StatSpirit, StatSocial, StatFinance:
		return true
	}
	return false
}

// Stats are the five base counters of a character.
type Stats struct {
	Strength  int `json:"strength"`
	Intellect int `json:"intellect"`
	Spirit    int `json:"spirit"`
	Social    int `json:"social"`
	Finance   int `json:"finance"`
}

func (s Stats) Get(c Category) int {
	switch c {
	case StatStrength:
		return s.Strength
	case StatIntellect:
		return s.Intellect
	case StatSpirit:
		return s.Spirit
	case StatSocial:
		return s.Social
	case StatFinance:
		return s.Finance
	}
	return 0
}

func (s *Stats) Add(c Category, n int) {
	switch c {
	case StatStrength:
		s.Strength += n
	case StatIntellect:
		s.Intellect += n
	case StatSpirit:
		s.Spirit += n
	case StatSocial:
		s.Social += n
	case StatFinance:
		s.Finance += n
	}
}

// Equipment maps each slot to the id of the equipped item.
// A missing or empty entry means the slot is free.
type Equipment map[Slot]string

// Character is the cultivator. XP stays below XPToNextLevel once
// level-ups have been applied; Realm is derived from Level.
type Character struct {
	Name          string    `json:"name"`
	Level         int       `json:"level"`
	XP            int       `json:"xp"`
	XPToNextLevel int       `json:"xpToNextLevel"`
	Realm         string    `json:"realm"`
	Stats         Stats     `json:"stats"`
	Gold          int       `json:"gold"`
	Avatar        string    `json:"avatar,omitempty"`
	Equipment     Equipment `json:"equipment"`
}

func (c *Character) EnsureEquipment() {
	if c.Equipment == nil {
		c.Equipment = Equipment{}
	}
}

func (c Character) EquippedID(s Slot) string {
	if c.Equipment == nil {
		return ""
	}
	return c.Equipment[s]
}
