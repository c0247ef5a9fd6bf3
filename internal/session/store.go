// Package session keeps logins on the server side. The browser only carries
// an opaque token; everything else is looked up per request.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ampnm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoSession is returned for unknown or expired tokens.
var ErrNoSession = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, userID uint, ttl time.Duration) (*model.Session, error)
	Get(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, userID uint) error
	// Purge removes expired sessions and returns how many were dropped.
	Purge(ctx context.Context) (int, error)
	Close() error
}

// Open returns the store selected by backend ("database" or "bolt").
func Open(backend string, db *gorm.DB, boltPath string) (Store, error) {
	switch backend {
	case "database":
		return NewGormStore(db), nil
	case "bolt":
		return NewBoltStore(boltPath)
	}
	return nil, fmt.Errorf("unknown session backend %q", backend)
}

func newSession(userID uint, ttl time.Duration) *model.Session {
	now := time.Now()
	return &model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
