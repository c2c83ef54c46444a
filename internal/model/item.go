package model

// Slot is one of the three fixed equipment slots.
type Slot string

const (
	SlotWeapon    Slot = "weapon"
	SlotArmor     Slot = "armor"
	SlotAccessory Slot = "accessory"
)

var Slots = []Slot{SlotWeapon, SlotArmor, SlotAccessory}

func (s Slot) Valid() bool {
	switch s {
	case SlotWeapon, SlotArmor, SlotAccessory:
		return true
	}
	return false
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rank orders rarities from common (0) upward. Unknown rarities rank lowest.
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 0
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	}
	return -1
}

func (r Rarity) Valid() bool { return r.Rank() >= 0 }

// EquipmentItem is an owned Pháp Bảo. The id is always minted by the
// application, never supplied by the content generator.
type EquipmentItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Slot        Slot             `json:"type"`
	Rarity      Rarity           `json:"rarity"`
	Stats       map[Category]int `json:"stats"`
}

// ItemTemplate is an item shape without an identity, as delivered by the
// content generator inside task rewards and shop listings.
type ItemTemplate struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Slot        Slot             `json:"type"`
	Rarity      Rarity           `json:"rarity"`
	Stats       map[Category]int `json:"stats"`
}

// Materialize mints a real inventory item from the template.
func (t ItemTemplate) Materialize(id string) EquipmentItem {
	stats := make(map[Category]int, len(t.Stats))
	for k, v := range t.Stats {
		stats[k] = v
	}
	return EquipmentItem{
		ID:          id,
		Name:        t.Name,
		Description: t.Description,
		Slot:        t.Slot,
		Rarity:      t.Rarity,
		Stats:       stats,
	}
}

// ShopItem is a one-time daily offer.
type ShopItem struct {
	ID    string       `json:"id"`
	Price int          `json:"price"`
	Item  ItemTemplate `json:"item"`
}
