package session

import (
	"context"
	"encoding/json"
	"time"

	"ampnm-backend/internal/model"

	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

type boltStore struct {
	db *bolt.DB
}

// NewBoltStore keeps sessions in an embedded bbolt file at path.
func NewBoltStore(path string) (Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Create(_ context.Context, userID uint, ttl time.Duration) (*model.Session, error) {
	sess := newSession(userID, ttl)
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(sess.Token), data)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *boltStore) Get(ctx context.Context, token string) (*model.Session, error) {
	var sess *model.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(token))
		if data == nil {
			return nil
		}
		sess = &model.Session{}
		return json.Unmarshal(data, sess)
	})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *boltStore) Delete(_ context.Context, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(token))
	})
}

func (s *boltStore) DeleteUser(_ context.Context, userID uint) error {
	return s.deleteWhere(func(sess model.Session) bool { return sess.UserID == userID })
}

func (s *boltStore) Purge(_ context.Context) (int, error) {
	now := time.Now()
	var n int
	err := s.deleteWhere(func(sess model.Session) bool {
		if sess.Expired(now) {
			n++
			return true
		}
		return false
	})
	return n, err
}

// deleteWhere removes every session matching fn in a single write transaction.
func (s *boltStore) deleteWhere(fn func(model.Session) bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		var doomed [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var sess model.Session
			if err := json.Unmarshal(v, &sess); err != nil || fn(sess) {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
