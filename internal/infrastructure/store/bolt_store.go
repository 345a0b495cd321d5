package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketRecent = []byte("recent")
	bucketPromo  = []byte("promo")
)

// BoltCartStore keeps cart state in an embedded bbolt file. List buckets are
// keyed "{userID}\x00{lineKey}".
type BoltCartStore struct {
	db *bolt.DB
}

func OpenBoltCartStore(path string) (*BoltCartStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{[]byte(ListCart), []byte(ListSaved), bucketRecent, bucketPromo} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create bolt buckets")
	}
	return &BoltCartStore{db: db}, nil
}

func userPrefix(userID string) []byte {
	return append([]byte(userID), 0)
}

func lineKey(userID, key string) []byte {
	return append(userPrefix(userID), key...)
}

func (s *BoltCartStore) GetItems(_ context.Context, userID string, list List) ([]LineItem, error) {
	if !list.Valid() {
		return nil, ErrUnknownList
	}
	items := []LineItem{}
	err := s.db.View(func(tx *bolt.Tx) error {
		prefix := userPrefix(userID)
		c := tx.Bucket([]byte(list)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var item LineItem
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read %s items", list)
	}
	SortItems(items)
	return items, nil
}

func (s *BoltCartStore) PutItem(_ context.Context, userID string, list List, item LineItem) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	data, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, "encode cart line")
	}
	return errors.Wrap(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(list)).Put(lineKey(userID, item.Key), data)
	}), "put cart line")
}

func (s *BoltCartStore) DeleteItem(_ context.Context, userID string, list List, key string) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	return errors.Wrap(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(list)).Delete(lineKey(userID, key))
	}), "delete cart line")
}

func (s *BoltCartStore) ClearCart(_ context.Context, userID string) error {
	return errors.Wrap(s.db.Update(func(tx *bolt.Tx) error {
		if err := clearLines(tx.Bucket([]byte(ListCart)), userID); err != nil {
			return err
		}
		return tx.Bucket(bucketPromo).Delete([]byte(userID))
	}), "clear cart")
}

func clearLines(b *bolt.Bucket, userID string) error {
	prefix := userPrefix(userID)
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *BoltCartStore) MoveItem(_ context.Context, userID string, from, to List, item LineItem) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownList
	}
	data, err := json.Marshal(item)
	if err != nil {
		return errors.Wrap(err, "encode cart line")
	}
	return errors.Wrap(s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(from)).Delete(lineKey(userID, item.Key)); err != nil {
			return err
		}
		return tx.Bucket([]byte(to)).Put(lineKey(userID, item.Key), data)
	}), "move cart line")
}

func (s *BoltCartStore) GetRecentlyViewed(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRecent).Get([]byte(userID))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &ids)
	})
	return ids, errors.Wrap(err, "read recently viewed")
}

func (s *BoltCartStore) SetRecentlyViewed(_ context.Context, userID string, productIDs []string) error {
	data, err := json.Marshal(productIDs)
	if err != nil {
		return errors.Wrap(err, "encode recently viewed")
	}
	return errors.Wrap(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecent).Put([]byte(userID), data)
	}), "write recently viewed")
}

func (s *BoltCartStore) GetAppliedPromo(_ context.Context, userID string) (*AppliedPromo, error) {
	var promo *AppliedPromo
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPromo).Get([]byte(userID))
		if v == nil {
			return nil
		}
		promo = &AppliedPromo{}
		return json.Unmarshal(v, promo)
	})
	if err != nil {
		return nil, errors.Wrap(err, "read applied promo")
	}
	return promo, nil
}

func (s *BoltCartStore) SetAppliedPromo(_ context.Context, userID string, promo *AppliedPromo) error {
	return errors.Wrap(s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPromo)
		if promo == nil {
			return b.Delete([]byte(userID))
		}
		data, err := json.Marshal(promo)
		if err != nil {
			return err
		}
		return b.Put([]byte(userID), data)
	}), "write applied promo")
}

func (s *BoltCartStore) Close() error {
	return s.db.Close()
}
