package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/homeward-crm/lead-routing-engine/internal/domain/errors"
	"github.com/homeward-crm/lead-routing-engine/internal/domain/routing"
	"github.com/homeward-crm/lead-routing-engine/internal/infrastructure/config"
)

const ruleKeyPrefix = "lre:routing:rule:"

// DefaultRuleTTL bounds how long a cached rule config is served before
// the surrounding application must republish it
const DefaultRuleTTL = 15 * time.Minute

// RuleStore is a Redis-backed store of validated routing rule configs.
// Configs are re-validated on read: a corrupt cached config is an
// error, never evaluated.
type RuleStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRuleStore connects to Redis and returns a rule store
func NewRuleStore(cfg *config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RuleStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.URL,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("rule store connected",
		zap.String("addr", cfg.URL),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", ttl))

	return &RuleStore{client: client, logger: logger, ttl: ttl}, nil
}

func ruleKey(tenantID, ruleID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", ruleKeyPrefix, tenantID, ruleID)
}

// GetRuleConfig fetches and re-validates a cached rule config
func (s *RuleStore) GetRuleConfig(ctx context.Context, tenantID, ruleID uuid.UUID) (*routing.RoutingRuleConfig, error) {
	data, err := s.client.Get(ctx, ruleKey(tenantID, ruleID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("routing rule %s", ruleID))
	}
	if err != nil {
		return nil, errors.NewExternalError("redis", "rule lookup failed").WithCause(err)
	}

	cfg, err := routing.ParseRuleConfig(data)
	if err != nil {
		s.logger.Error("cached rule config failed validation",
			zap.String("tenant_id", tenantID.String()),
			zap.String("rule_id", ruleID.String()),
			zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// PutRuleConfig validates and caches a rule config with the store TTL
func (s *RuleStore) PutRuleConfig(ctx context.Context, tenantID, ruleID uuid.UUID, cfg *routing.RoutingRuleConfig) error {
	if err := routing.ValidateRuleConfig(cfg); err != nil {
		return err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError("marshaling rule config").WithCause(err)
	}

	if err := s.client.Set(ctx, ruleKey(tenantID, ruleID), data, s.ttl).Err(); err != nil {
		return errors.NewExternalError("redis", "rule store failed").WithCause(err)
	}

	s.logger.Debug("rule config cached",
		zap.String("tenant_id", tenantID.String()),
		zap.String("rule_id", ruleID.String()))
	return nil
}

// DeleteRuleConfig evicts a cached rule config
func (s *RuleStore) DeleteRuleConfig(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	if err := s.client.Del(ctx, ruleKey(tenantID, ruleID)).Err(); err != nil {
		return errors.NewExternalError("redis", "rule delete failed").WithCause(err)
	}
	return nil
}

// Close releases the Redis connection
func (s *RuleStore) Close() error {
	return s.client.Close()
}
