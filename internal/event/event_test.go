package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tuluyen/internal/model"
)

var today = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func TestDueForPreparation(t *testing.T) {
	events := []model.UserEvent{
		{ID: "e1", Name: "thi cuối kỳ", Date: "2026-03-10"},
		{ID: "e2", Name: "phỏng vấn", Date: "2026-03-13"},
		{ID: "e3", Name: "quá xa", Date: "2026-03-14"},
		{ID: "e4", Name: "đã qua", Date: "2026-03-09"},
		{ID: "e5", Name: "đã chuẩn bị", Date: "2026-03-11", TasksGenerated: true},
		{ID: "e6", Name: "ngày hỏng", Date: "not-a-date"},
	}

	due := DueForPreparation(events, today, 3)

	ids := make([]string, 0, len(due))
	for _, ev := range due {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"e1", "e2"}, ids)
}

func TestDueForPreparation_SameWindowInEveryTimezone(t *testing.T) {
	events := []model.UserEvent{
		{ID: "today", Name: "hôm nay", Date: "2026-03-10"},
		{ID: "edge", Name: "cuối chân trời", Date: "2026-03-13"},
	}

	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC+7", 7*3600),
		time.FixedZone("UTC-5", -5*3600),
	}
	for _, loc := range zones {
		now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)
		due := DueForPreparation(events, now, 3)

		ids := make([]string, 0, len(due))
		for _, ev := range due {
			ids = append(ids, ev.ID)
		}
		assert.Equal(t, []string{"today", "edge"}, ids, "zone %s", loc)
	}
}

func TestHasUpcoming_WiderHorizonIgnoresGeneratedFlag(t *testing.T) {
	events := []model.UserEvent{
		{ID: "e1", Date: "2026-03-17", TasksGenerated: true},
	}
	assert.True(t, HasUpcoming(events, today, 7))
	assert.False(t, HasUpcoming(events, today, 3))
	assert.False(t, HasUpcoming(nil, today, 7))
}

func TestStamp(t *testing.T) {
	assert.Equal(t, "2026-03-10", Stamp(today))
}
