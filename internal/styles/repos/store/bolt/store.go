// Package bolt implements the style storage collaborator on bbolt. Styles
// live in one bucket keyed by big-endian id, so GetAll iterates in
// assignment (insertion) order; ids come from the bucket sequence and are
// never reused.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/calliso/stylecache/internal/styles/domain"
	"github.com/calliso/stylecache/internal/styles/services/engine"
)

var (
	bucketStyles = []byte("styles")
	bucketMeta   = []byte("meta")
	keySchema    = []byte("schema")
)

// schemaVersion marks the on-disk layout; bumped on incompatible changes.
const schemaVersion = 1

// ErrNotFound is returned by Delete when the id has no stored style.
var ErrNotFound = errors.New("style not found")

type Store struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketStyles); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if meta.Get(keySchema) == nil {
			return meta.Put(keySchema, []byte{schemaVersion})
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// SchemaVersion returns the database's schema version byte.
func (s *Store) SchemaVersion() uint8 {
	var v uint8
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketMeta).Get(keySchema); len(b) == 1 {
			v = b[0]
		}
		return nil
	})
	return v
}

func (s *Store) Close() error { return s.db.Close() }

// GetAll returns every stored style in id-assignment order.
func (s *Store) GetAll(ctx context.Context) ([]*domain.Style, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var styles []*domain.Style
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStyles)
		return b.ForEach(func(k, v []byte) error {
			st, err := decodeStyle(v)
			if err != nil {
				return fmt.Errorf("decoding style %d: %w", btoi(k), err)
			}
			styles = append(styles, st)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return styles, nil
}

// Get returns the style with the given id, reporting presence separately
// from errors.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Style, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var st *domain.Style
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketStyles).Get(itob(id))
		if v == nil {
			return nil
		}
		decoded, err := decodeStyle(v)
		if err != nil {
			return err
		}
		st = decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return st, st != nil, nil
}

// Put persists the style, assigning an id from the bucket sequence when
// the style has none, and returns the assigned id.
func (s *Store) Put(ctx context.Context, st *domain.Style) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := st.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStyles)
		id = st.ID
		if id == 0 {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			id = int64(seq)
		}
		encoded, err := encodeStyle(st, id)
		if err != nil {
			return err
		}
		return b.Put(itob(id), encoded)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the style with the given id. Deleting an unknown id
// returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStyles)
		if b.Get(itob(id)) == nil {
			return ErrNotFound
		}
		return b.Delete(itob(id))
	})
}

// Count returns the number of stored styles.
func (s *Store) Count() int {
	var n int
	_ = s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketStyles).Stats().KeyN
		return nil
	})
	return n
}

// itob encodes an id as a sortable big-endian key.
func itob(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func btoi(key []byte) int64 {
	if len(key) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(key))
}

var _ engine.StyleStore = (*Store)(nil)
