package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Store bundles the repositories over one database handle and provides the
// transaction boundary the authentication flows run inside.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	OTPs() OTPRepository
	Roles() RoleRepository
	Services() ServiceRepository
	Blacklist() BlacklistRepository
	APILogs() APILogRepository

	// Atomically runs fn against a Store whose repositories share a single
	// transaction. The transaction commits when fn returns nil and rolls
	// back otherwise, so an OTP delete-then-insert and the identity
	// mutation it belongs to land together or not at all.
	Atomically(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db    *gorm.DB
	redis *redis.Client

	users     UserRepository
	profiles  ProfileRepository
	otps      OTPRepository
	roles     RoleRepository
	services  ServiceRepository
	blacklist BlacklistRepository
	apiLogs   APILogRepository
}

// NewStore creates a Store over the given database and Redis handles.
func NewStore(db *gorm.DB, redisClient *redis.Client) Store {
	return &gormStore{
		db:        db,
		redis:     redisClient,
		users:     NewUserRepository(db),
		profiles:  NewProfileRepository(db),
		otps:      NewOTPRepository(db),
		roles:     NewRoleRepository(db),
		services:  NewServiceRepository(db),
		blacklist: NewBlacklistRepository(db, redisClient),
		apiLogs:   NewAPILogRepository(db),
	}
}

func (s *gormStore) Users() UserRepository           { return s.users }
func (s *gormStore) Profiles() ProfileRepository     { return s.profiles }
func (s *gormStore) OTPs() OTPRepository             { return s.otps }
func (s *gormStore) Roles() RoleRepository           { return s.roles }
func (s *gormStore) Services() ServiceRepository     { return s.services }
func (s *gormStore) Blacklist() BlacklistRepository  { return s.blacklist }
func (s *gormStore) APILogs() APILogRepository       { return s.apiLogs }

func (s *gormStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.redis))
	})
}
