package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_MissingKeyIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	v, ok, err := s.Get(ctx, KeyCharacter)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestFile_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyTasks, `[{"id":"t1"}]`))
	require.NoError(t, s.Set(ctx, KeyLastShopRefresh, "2026-03-10"))
	require.NoError(t, s.Delete(ctx, KeyLastShopRefresh))

	reopened, err := NewFile(dir)
	require.NoError(t, err)

	v, ok, err := reopened.Get(ctx, KeyTasks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"t1"}]`, v)

	_, ok, err = reopened.Get(ctx, KeyLastShopRefresh)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()

	s, err := NewSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, KeyDiaryDraft, "hôm nay thiền 20 phút"))
	require.NoError(t, s.Set(ctx, KeyDiaryDraft, "hôm nay thiền 30 phút"))

	v, ok, err := s.Get(ctx, KeyDiaryDraft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hôm nay thiền 30 phút", v)

	require.NoError(t, s.Delete(ctx, KeyDiaryDraft))
	_, ok, err = s.Get(ctx, KeyDiaryDraft)
	require.NoError(t, err)
	assert.False(t, ok)
}
