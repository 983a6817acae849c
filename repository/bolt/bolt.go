// Package bolt implements the local persistence ports on a single BoltDB
// file: one bucket for the sealed credential record, one for the cart cache.
package bolt

import (
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

var (
	credentialBucket = []byte("credential")
	cartBucket       = []byte("cart")

	credentialKey = []byte("jwt_token")
	cartKey       = []byte("cart_items_v2")
)

// DB wraps the shared BoltDB handle behind the store constructors.
type DB struct {
	db *bbolt.DB
}

// Open initializes the BoltDB file and ensures both buckets exist.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{credentialBucket, cartBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close releases the underlying file handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) put(bucket, key, value []byte) error {
	if d == nil || d.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

func (d *DB) get(bucket, key []byte) ([]byte, error) {
	if d == nil || d.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}
	var out []byte
	err := d.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (d *DB) delete(bucket, key []byte) error {
	if d == nil || d.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}
