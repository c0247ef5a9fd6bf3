package session

import (
	"context"
	"errors"
	"time"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore keeps sessions in the application database.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, userID uint, ttl time.Duration) (*model.Session, error) {
	sess := newSession(userID, ttl)
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *gormStore) Get(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *gormStore) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error
}

func (s *gormStore) DeleteUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Session{}).Error
}

func (s *gormStore) Purge(ctx context.Context) (int, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&model.Session{})
	return int(res.RowsAffected), res.Error
}

// Close is a no-op; the database handle is owned by the caller.
func (s *gormStore) Close() error {
	return nil
}
