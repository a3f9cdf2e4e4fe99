package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domainerrors "github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
	"github.com/homeward-crm/lead-routing-engine/internal/infrastructure/config"
)

func newTestStore(t *testing.T) (*RuleStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := &config.RedisConfig{
		URL:         mr.Addr(),
		DialTimeout: time.Second,
	}

	store, err := NewRuleStore(cfg, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func validRuleConfig() *routing.RoutingRuleConfig {
	return &routing.RoutingRuleConfig{
		Mode: routing.ModeAutoAssign,
		Conditions: routing.RoutingConditions{
			Sources: &routing.SourceCondition{Include: []string{"zillow"}},
		},
		Targets: []routing.RoutingTarget{{
			Type:     routing.TargetTeam,
			ID:       uuid.New(),
			Strategy: routing.StrategyBestFit,
		}},
	}
}

func TestRuleStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	tenantID, ruleID := uuid.New(), uuid.New()

	cfg := validRuleConfig()
	require.NoError(t, store.PutRuleConfig(ctx, tenantID, ruleID, cfg))

	got, err := store.GetRuleConfig(ctx, tenantID, ruleID)
	require.NoError(t, err)
	assert.Equal(t, cfg.Mode, got.Mode)
	assert.Equal(t, cfg.Targets[0].ID, got.Targets[0].ID)
	require.NotNil(t, got.Conditions.Sources)
	assert.Equal(t, []string{"zillow"}, got.Conditions.Sources.Include)
}

func TestRuleStoreMissingRule(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetRuleConfig(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeNotFound))
}

func TestRuleStoreRejectsInvalidConfig(t *testing.T) {
	store, mr := newTestStore(t)
	tenantID, ruleID := uuid.New(), uuid.New()

	cfg := validRuleConfig()
	cfg.Targets = nil

	err := store.PutRuleConfig(context.Background(), tenantID, ruleID, cfg)
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))

	// Nothing was written
	assert.Empty(t, mr.Keys())
}

func TestRuleStoreCorruptPayload(t *testing.T) {
	store, mr := newTestStore(t)
	tenantID, ruleID := uuid.New(), uuid.New()

	require.NoError(t, mr.Set(ruleKey(tenantID, ruleID), `{"targets": "nope"}`))

	_, err := store.GetRuleConfig(context.Background(), tenantID, ruleID)
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
}

func TestRuleStoreTenantIsolation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ruleID := uuid.New()

	require.NoError(t, store.PutRuleConfig(ctx, uuid.New(), ruleID, validRuleConfig()))

	// Same rule id under a different tenant is a miss
	_, err := store.GetRuleConfig(ctx, uuid.New(), ruleID)
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeNotFound))
}

func TestRuleStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	tenantID, ruleID := uuid.New(), uuid.New()

	require.NoError(t, store.PutRuleConfig(ctx, tenantID, ruleID, validRuleConfig()))
	require.NoError(t, store.DeleteRuleConfig(ctx, tenantID, ruleID))

	_, err := store.GetRuleConfig(ctx, tenantID, ruleID)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeNotFound))
}

func TestRuleStoreEntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	tenantID, ruleID := uuid.New(), uuid.New()

	require.NoError(t, store.PutRuleConfig(ctx, tenantID, ruleID, validRuleConfig()))

	mr.FastForward(2 * time.Minute)

	_, err := store.GetRuleConfig(ctx, tenantID, ruleID)
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeNotFound))
}

func TestNewRuleStoreValidation(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("nil config", func(t *testing.T) {
		_, err := NewRuleStore(nil, time.Minute, zaptest.NewLogger(t))
		assert.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewRuleStore(&config.RedisConfig{URL: mr.Addr(), DialTimeout: time.Second}, time.Minute, nil)
		assert.Error(t, err)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := &config.RedisConfig{URL: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond}
		_, err := NewRuleStore(cfg, time.Minute, zaptest.NewLogger(t))
		assert.Error(t, err)
	})
}
