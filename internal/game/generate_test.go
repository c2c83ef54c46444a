package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuluyen/internal/gen"
	"tuluyen/internal/model"
	"tuluyen/internal/state"
)

func TestRequestTasks_PrunesCompletedAndMints(t *testing.T) {
	g := &stubGen{tasks: []gen.TaskSeed{
		{Title: "Chạy bộ 5km", XP: 20, Stat: model.StatStrength, StatReward: 1, Gold: 5},
		{Title: "Đọc sách", XP: 15, Stat: model.StatIntellect, StatReward: 1, Gold: 5},
	}}
	e := newTestEngine(g)
	e.State.Update(func(s *state.State) {
		s.Tasks = append(s.Tasks,
			model.Task{ID: "old1", Title: "Cũ chưa xong"},
			model.Task{ID: "old2", Title: "Cũ đã xong", Completed: true},
		)
	})

	require.NoError(t, e.RequestTasks(context.Background()))

	snap := e.State.Snapshot()
	titles := model.Titles(snap.Tasks)
	assert.ElementsMatch(t, []string{"Cũ chưa xong", "Chạy bộ 5km", "Đọc sách"}, titles)

	seen := map[string]bool{}
	for _, task := range snap.Tasks {
		require.NotEmpty(t, task.ID)
		require.False(t, seen[task.ID], "ids must be unique")
		seen[task.ID] = true
	}
}

func TestRequestTasks_FailureYieldsPlaceholder(t *testing.T) {
	g := &stubGen{tasksErr: errors.New("upstream down")}
	e := newTestEngine(g)

	err := e.RequestTasks(context.Background())
	require.Error(t, err)

	snap := e.State.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "Lỗi Hệ Thống", snap.Tasks[0].Title)
	assert.NotEmpty(t, snap.Tasks[0].ID)
}

func TestRequestTasks_ReadsYesterdayDiary(t *testing.T) {
	g := &stubGen{tasks: []gen.TaskSeed{{Title: "Nhiệm vụ", XP: 10, Stat: model.StatSpirit, StatReward: 1}}}
	e := newTestEngine(g)
	e.State.Update(func(s *state.State) {
		s.Diary["2026-03-09"] = "Hôm qua tập trung kém."
	})

	require.NoError(t, e.RequestTasks(context.Background()))
	assert.Contains(t, e.State.Snapshot().Feed, "Phân tích nhật ký tu luyện của ngày hôm qua...")
}

func TestRequestTechniques_ErrorLeavesCollectionUntouched(t *testing.T) {
	g := &stubGen{techniquesErr: errors.New("upstream down")}
	e := newTestEngine(g)

	require.Error(t, e.RequestTechniques(context.Background()))
	assert.Empty(t, e.State.Snapshot().Techniques)
}

func TestRequestTechniques_AppendsLongTerm(t *testing.T) {
	g := &stubGen{techniques: []gen.TaskSeed{
		{Title: "Thanh Nguyên Kiếm Quyết", XP: 200, Stat: model.StatStrength, StatReward: 5, Gold: 300},
	}}
	e := newTestEngine(g)

	require.NoError(t, e.RequestTechniques(context.Background()))

	snap := e.State.Snapshot()
	require.Len(t, snap.Techniques, 1)
	assert.True(t, snap.Techniques[0].IsLongTerm)
	assert.NotEmpty(t, snap.Techniques[0].ID)
}

func TestRequestEncounter_ConsumesOpportunity(t *testing.T) {
	g := &stubGen{encounter: &gen.Encounter{
		Story: "Một lão giả thần bí xuất hiện...",
		Task:  gen.TaskSeed{Title: "Giúp lão giả", XP: 80, Stat: model.StatSocial, StatReward: 2, Gold: 50},
	}}
	e := newTestEngine(g)

	// Not available yet.
	require.ErrorIs(t, e.RequestEncounter(context.Background()), ErrEncounterUnavailable)

	e.State.Update(func(s *state.State) { s.EncounterAvailable = true })
	require.NoError(t, e.RequestEncounter(context.Background()))

	snap := e.State.Snapshot()
	assert.False(t, snap.EncounterAvailable)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "Giúp lão giả", snap.Tasks[0].Title)

	// Spent for the day.
	require.ErrorIs(t, e.RequestEncounter(context.Background()), ErrEncounterUnavailable)
}

func TestRequestEncounter_FailureStillConsumes(t *testing.T) {
	g := &stubGen{encounterErr: errors.New("upstream down")}
	e := newTestEngine(g)
	e.State.Update(func(s *state.State) { s.EncounterAvailable = true })

	require.Error(t, e.RequestEncounter(context.Background()))

	snap := e.State.Snapshot()
	assert.False(t, snap.EncounterAvailable)
	assert.Empty(t, snap.Tasks)
}

func TestRefreshShop_ReplacesListings(t *testing.T) {
	g := &stubGen{shop: []gen.ShopSeed{
		{Price: 50, Item: gen.ItemSeed{Name: "Hồi Nguyên Đan", Slot: model.SlotAccessory, Rarity: model.RarityCommon}},
		{Price: 120, Item: gen.ItemSeed{Name: "Huyền Thiết Giáp", Slot: model.SlotArmor, Rarity: model.RarityRare}},
	}}
	e := newTestEngine(g)
	e.State.Update(func(s *state.State) {
		s.ShopItems = []model.ShopItem{{ID: "stale", Price: 1}}
	})

	require.NoError(t, e.RefreshShop(context.Background()))

	snap := e.State.Snapshot()
	require.Len(t, snap.ShopItems, 2)
	for _, offer := range snap.ShopItems {
		assert.NotEmpty(t, offer.ID)
		assert.NotEqual(t, "stale", offer.ID)
	}
}

func TestGenerateAvatar_StoresDataURL(t *testing.T) {
	g := &stubGen{avatar: "aGVsbG8="}
	e := newTestEngine(g)

	require.NoError(t, e.GenerateAvatar(context.Background(), "kiếm tu áo trắng"))
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", e.State.Snapshot().Character.Avatar)
}

func TestPrepareEventTasks_WithinHorizon(t *testing.T) {
	g := &stubGen{eventTasks: []gen.TaskSeed{
		{Title: "Chuẩn bị hành trang", XP: 25, Stat: model.StatIntellect, StatReward: 1, Gold: 10},
	}}
	e := newTestEngine(g)
	// Clock is 2026-03-10; horizon is 3 days.
	near, err := e.AddEvent("Đại hội", "2026-03-12")
	require.NoError(t, err)
	_, err = e.AddEvent("Xa xôi", "2026-03-25")
	require.NoError(t, err)

	require.NoError(t, e.PrepareEventTasks(context.Background()))

	snap := e.State.Snapshot()
	require.Len(t, snap.Tasks, 1)
	prep := snap.Tasks[0]
	assert.True(t, prep.IsEventTask)
	assert.Equal(t, near.ID, prep.EventID)
	assert.Equal(t, "Đại hội", prep.EventName)

	for _, ev := range snap.Events {
		if ev.ID == near.ID {
			assert.True(t, ev.TasksGenerated)
		} else {
			assert.False(t, ev.TasksGenerated)
		}
	}

	// Already prepared, a second pass does nothing.
	require.NoError(t, e.PrepareEventTasks(context.Background()))
	assert.Equal(t, 1, g.count("eventTasks"))
}

func TestPrepareEventTasks_FailureStillMarksPrepared(t *testing.T) {
	g := &stubGen{eventErr: errors.New("upstream down")}
	e := newTestEngine(g)
	_, err := e.AddEvent("Đại hội", "2026-03-11")
	require.NoError(t, err)

	require.Error(t, e.PrepareEventTasks(context.Background()))

	snap := e.State.Snapshot()
	assert.True(t, snap.Events[0].TasksGenerated)
	assert.Empty(t, snap.Tasks)

	require.NoError(t, e.PrepareEventTasks(context.Background()))
	assert.Equal(t, 1, g.count("eventTasks"))
}

func TestCheckDaily_ShopRefreshOncePerDay(t *testing.T) {
	g := &stubGen{
		shop:  []gen.ShopSeed{{Price: 10, Item: gen.ItemSeed{Name: "Đan dược", Slot: model.SlotAccessory}}},
		tasks: []gen.TaskSeed{{Title: "Nhiệm vụ", XP: 10, Stat: model.StatSpirit, StatReward: 1}},
	}
	e := newTestEngine(g)

	e.CheckDaily(context.Background())
	e.CheckDaily(context.Background())
	assert.Equal(t, 1, g.count("shop"))
	assert.Equal(t, "2026-03-10", e.State.Snapshot().LastShopRefresh)
}

func TestCheckDaily_StampsBeforeRefresh(t *testing.T) {
	g := &stubGen{
		shopErr: errors.New("upstream down"),
		tasks:   []gen.TaskSeed{{Title: "Nhiệm vụ", XP: 10, Stat: model.StatSpirit, StatReward: 1}},
	}
	e := newTestEngine(g)

	e.CheckDaily(context.Background())
	// The failed refresh must not retry until the next day.
	e.CheckDaily(context.Background())
	assert.Equal(t, 1, g.count("shop"))
}

func TestCheckDaily_EncounterRoll(t *testing.T) {
	g := &stubGen{tasks: []gen.TaskSeed{{Title: "Nhiệm vụ", XP: 10, Stat: model.StatSpirit, StatReward: 1}}}

	e := newTestEngine(g)
	e.Rand = func() float64 { return 0.1 }
	e.CheckDaily(context.Background())
	assert.True(t, e.State.Snapshot().EncounterAvailable)

	e = newTestEngine(g)
	e.Rand = func() float64 { return 0.9 }
	e.CheckDaily(context.Background())
	assert.False(t, e.State.Snapshot().EncounterAvailable)
}

func TestCheckDaily_RollsOncePerDay(t *testing.T) {
	g := &stubGen{tasks: []gen.TaskSeed{{Title: "Nhiệm vụ", XP: 10, Stat: model.StatSpirit, StatReward: 1}}}
	e := newTestEngine(g)
	rolls := 0
	e.Rand = func() float64 { rolls++; return 0.9 }

	e.CheckDaily(context.Background())
	e.CheckDaily(context.Background())
	assert.Equal(t, 1, rolls)
}

func TestCheckDaily_ReplenishesEmptyBoard(t *testing.T) {
	g := &stubGen{tasks: []gen.TaskSeed{{Title: "Nhiệm vụ mới", XP: 10, Stat: model.StatSpirit, StatReward: 1}}}
	e := newTestEngine(g)
	e.State.Update(func(s *state.State) {
		s.Tasks = []model.Task{{ID: "done", Title: "Đã xong", Completed: true}}
	})

	e.CheckDaily(context.Background())
	assert.Equal(t, 1, g.count("tasks"))

	// Board has an open task now, no second request.
	e.CheckDaily(context.Background())
	assert.Equal(t, 1, g.count("tasks"))
}

func TestBusyGate_BlocksConcurrentCategory(t *testing.T) {
	e := newTestEngine(&stubGen{})
	require.True(t, e.begin(CategoryTasks))
	assert.True(t, e.Busy(CategoryTasks))
	assert.False(t, e.Busy(CategoryShop))

	err := e.RequestTasks(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)

	e.end(CategoryTasks)
	assert.False(t, e.Busy(CategoryTasks))
}
