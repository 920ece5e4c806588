package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funding-advisor/internal/common/database"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/models"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewStore(rdb, "funding:programs", logger.NewTestLogger(t)), mr
}

func samplePrograms() []models.FundingProgram {
	return []models.FundingProgram{
		{
			ProgramID:   "bf-1a2b3c4d",
			Source:      models.SourceBusinessFinland,
			ProgramName: "Tutkimusrahoitus",
			Description: "Research funding for companies developing new knowledge",
			FundingType: models.FundingTypeGrant,
			MinFunding:  50000,
			MaxFunding:  500000,
		},
		{
			ProgramID:   "bf-5e6f7a8b",
			Source:      models.SourceBusinessFinland,
			ProgramName: "Innovaatioseteli",
			Description: "Innovation voucher for first innovation activities",
			FundingType: models.FundingTypeGrant,
			MaxFunding:  6000,
		},
	}
}

func TestKeyDeterministicAndOrderIndependent(t *testing.T) {
	a := Key(models.SourceELY, map[string]string{"industry": "software", "region": "uusimaa"})
	b := Key(models.SourceELY, map[string]string{"region": "uusimaa", "industry": "software"})
	assert.Equal(t, a, b)
}

func TestKeyNormalizesValues(t *testing.T) {
	a := Key(models.SourceELY, map[string]string{"industry": "  Software "})
	b := Key(models.SourceELY, map[string]string{"industry": "software"})
	assert.Equal(t, a, b)
}

func TestKeySeparatesSourcesAndParams(t *testing.T) {
	base := Key(models.SourceELY, map[string]string{"industry": "software"})
	assert.NotEqual(t, base, Key(models.SourceFinnvera, map[string]string{"industry": "software"}))
	assert.NotEqual(t, base, Key(models.SourceELY, map[string]string{"industry": "biotech"}))
	assert.NotEqual(t, base, Key(models.SourceELY, nil))
}

func TestKeyPrefixedBySource(t *testing.T) {
	key := Key(models.SourceAIDiscovery, map[string]string{"industry": "software"})
	assert.Equal(t, "ai_discovery", sourceOf(key))
}

func TestPutThenGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := Key(models.SourceBusinessFinland, map[string]string{"industry": "software"})

	store.Put(ctx, key, samplePrograms(), 30*time.Minute)

	got, ok := store.Get(ctx, key, 30*time.Minute)
	require.True(t, ok)
	assert.Equal(t, samplePrograms(), got)
}

func TestGetMissOnAbsentKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, ok := store.Get(context.Background(), "business_finland:deadbeef", 30*time.Minute)
	assert.False(t, ok)
}

func TestGetMissAfterTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := Key(models.SourceBusinessFinland, map[string]string{"industry": "software"})

	store.Put(ctx, key, samplePrograms(), 30*time.Minute)
	mr.FastForward(31 * time.Minute)

	_, ok := store.Get(ctx, key, 30*time.Minute)
	assert.False(t, ok)
}

func TestGetHonorsLoweredTTLOnRead(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := Key(models.SourceBusinessFinland, map[string]string{"industry": "software"})

	store.Put(ctx, key, samplePrograms(), 24*time.Hour)

	// Entry written 40 minutes ago under a longer TTL must still read as
	// stale when the effective TTL is 30 minutes.
	store.now = func() time.Time { return time.Now().Add(40 * time.Minute) }
	_, ok := store.Get(ctx, key, 30*time.Minute)
	assert.False(t, ok)
}

func TestGetMissOnCorruptEntry(t *testing.T) {
	store, mr := newTestStore(t)
	key := Key(models.SourceBusinessFinland, map[string]string{"industry": "software"})

	require.NoError(t, mr.Set("funding:programs:"+key, "not json"))

	_, ok := store.Get(context.Background(), key, 30*time.Minute)
	assert.False(t, ok)
}

func TestGetMissOnStorageError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(database.NewRedisFromClient(client), "funding:programs", logger.NewNoOpLogger())

	key := Key(models.SourceBusinessFinland, map[string]string{"industry": "software"})
	mock.ExpectGet("funding:programs:" + key).SetErr(assert.AnError)

	_, ok := store.Get(context.Background(), key, 30*time.Minute)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutSwallowsStorageError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(database.NewRedisFromClient(client), "funding:programs", logger.NewNoOpLogger())
	mock.Regexp().ExpectSet(`funding:programs:.*`, `.*`, 30*time.Minute).SetErr(assert.AnError)

	key := Key(models.SourceBusinessFinland, map[string]string{"industry": "software"})
	store.Put(context.Background(), key, samplePrograms(), 30*time.Minute)
}

func TestClearRemovesOnlyPrefixedKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	store.Put(ctx, Key(models.SourceBusinessFinland, nil), samplePrograms(), time.Hour)
	store.Put(ctx, Key(models.SourceELY, nil), samplePrograms(), time.Hour)
	require.NoError(t, mr.Set("other:key", "keep"))

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, mr.Exists("other:key"))
}

func TestClearEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	removed, err := store.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
