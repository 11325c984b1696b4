package repository

import (
	"context"
	"fmt"

	"github.com/fieldstack/auth-service/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// blacklistSetKey is the Redis set mirroring the blacklist table. Entries
// carry no TTL: the blacklist never expires tokens.
const blacklistSetKey = "auth:blacklisted_tokens"

// BlacklistRepository records tokens that must no longer be honored.
// The database row is authoritative; the Redis set is a fast membership
// path populated on write and backfilled on read-through.
type BlacklistRepository interface {
	Add(ctx context.Context, tokens ...string) error
	Contains(ctx context.Context, token string) (bool, error)
}

type blacklistRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewBlacklistRepository creates a new BlacklistRepository instance.
func NewBlacklistRepository(db *gorm.DB, redisClient *redis.Client) BlacklistRepository {
	return &blacklistRepository{db: db, redis: redisClient}
}

func (r *blacklistRepository) Add(ctx context.Context, tokens ...string) error {
	rows := make([]models.BlacklistedToken, 0, len(tokens))
	members := make([]interface{}, 0, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		rows = append(rows, models.BlacklistedToken{Token: token})
		members = append(members, token)
	}
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to blacklist tokens: %w", err)
	}

	// Best effort: a failed mirror write only costs a read-through later.
	r.redis.SAdd(ctx, blacklistSetKey, members...)
	return nil
}

func (r *blacklistRepository) Contains(ctx context.Context, token string) (bool, error) {
	member, err := r.redis.SIsMember(ctx, blacklistSetKey, token).Result()
	if err == nil && member {
		return true, nil
	}

	var count int64
	dbErr := r.db.WithContext(ctx).
		Model(&models.BlacklistedToken{}).
		Where("token = ?", token).
		Count(&count).Error
	if dbErr != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", dbErr)
	}
	if count > 0 {
		r.redis.SAdd(ctx, blacklistSetKey, token)
		return true, nil
	}
	return false, nil
}
