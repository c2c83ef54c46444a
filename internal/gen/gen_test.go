package gen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuluyen/internal/model"
)

func TestSanitizeTasks_DropsInvalidAndStripsBadItemReward(t *testing.T) {
	seeds := []TaskSeed{
		{Title: "Chạy bộ 5km", Description: "ra ngoài trời", XP: 40, Stat: model.StatStrength, StatReward: 2, Gold: 20},
		{Title: "", Description: "thiếu tiêu đề", XP: 10, Stat: model.StatSpirit, StatReward: 1, Gold: 5},
		{Title: "Stat lạ", Description: "x", XP: 10, Stat: "luck", StatReward: 1, Gold: 5},
		{
			Title: "Đọc sách", Description: "một chương", XP: 30, Stat: model.StatIntellect, StatReward: 2, Gold: 10,
			ItemReward: &ItemSeed{Name: "Bút Linh", Slot: "hat", Rarity: model.RarityRare, Stats: map[model.Category]int{}},
		},
		{
			Title: "Thiền", Description: "20 phút", XP: 25, Stat: model.StatSpirit, StatReward: 1, Gold: 5,
			ItemReward: &ItemSeed{Name: "Chuỗi Hạt", Description: "an thần", Slot: model.SlotAccessory,
				Rarity: model.RarityUncommon, Stats: map[model.Category]int{model.StatSpirit: 2}},
		},
	}

	out := SanitizeTasks(seeds)

	require.Len(t, out, 3)
	assert.Nil(t, out[1].ItemReward, "malformed reward template should be stripped, not fatal")
	require.NotNil(t, out[2].ItemReward)
	assert.Equal(t, model.SlotAccessory, out[2].ItemReward.Slot)
}

func TestSanitizeShop(t *testing.T) {
	seeds := []ShopSeed{
		{Price: 120, Item: ItemSeed{Name: "Kiếm Gỗ", Description: "x", Slot: model.SlotWeapon,
			Rarity: model.RarityCommon, Stats: map[model.Category]int{model.StatStrength: 1}}},
		{Price: 0, Item: ItemSeed{Name: "Miễn phí?", Description: "x", Slot: model.SlotWeapon,
			Rarity: model.RarityCommon, Stats: map[model.Category]int{}}},
		{Price: 500, Item: ItemSeed{Name: "", Slot: model.SlotArmor, Rarity: model.RarityRare}},
	}
	out := SanitizeShop(seeds)
	require.Len(t, out, 1)
	assert.Equal(t, "Kiếm Gỗ", out[0].Item.Name)
}

func TestSanitizeEncounter(t *testing.T) {
	ok := &Encounter{
		Story: "Giữa rừng trúc, một cao nhân xuất hiện...",
		Task: TaskSeed{Title: "Dậy sớm 5h", Description: "ba ngày liên tiếp", XP: 80,
			Stat: model.StatSpirit, StatReward: 3, Gold: 60},
	}
	assert.NotNil(t, SanitizeEncounter(ok))
	assert.Nil(t, SanitizeEncounter(nil))
	assert.Nil(t, SanitizeEncounter(&Encounter{Story: "", Task: ok.Task}))
	assert.Nil(t, SanitizeEncounter(&Encounter{Story: "chuyện", Task: TaskSeed{Title: ""}}))
}

// fakeGemini serves a canned generateContent payload whose inner text is the
// JSON the model would produce.
func fakeGemini(t *testing.T, inner any) *httptest.Server {
	t.Helper()
	innerJSON, err := json.Marshal(inner)
	require.NoError(t, err)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": string(innerJSON)}},
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGemini_TasksDecodeAndSanitize(t *testing.T) {
	srv := fakeGemini(t, []map[string]any{
		{"title": "Gọi cho bố mẹ", "description": "hỏi thăm", "xp": 20, "stat": "social", "statReward": 2, "gold": 10},
		{"title": "Trường không hợp lệ", "xp": 20, "stat": "social", "statReward": 2, "gold": 10},
	})
	defer srv.Close()

	g := NewGemini("test-key", "", "")
	g.endpoint = srv.URL

	seeds, err := g.Tasks(context.Background(), model.Character{Name: "x", Level: 1}, nil, "")
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "Gọi cho bố mẹ", seeds[0].Title)
}

func TestGemini_MissingKeyFailsFast(t *testing.T) {
	g := NewGemini("", "", "")
	_, err := g.Tasks(context.Background(), model.Character{}, nil, "")
	assert.Error(t, err)
}
