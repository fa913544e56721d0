package index

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketFiles = []byte("files")
	bucketDirs  = []byte("dirs")
)

// Store persists an Index in a bbolt database at a caller-chosen path.
// bbolt's file lock gives single-writer discipline across processes:
// two scans against the same store file cannot run concurrently.
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens or creates the store at dbPath. The parent directory is
// created if missing. A store file that cannot be opened (corrupt or
// truncated) is moved aside and replaced with a fresh one: the store is
// advisory and rebuildable, so corruption is recovered, not fatal.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("index: create store directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		log.Printf("index: store %s unreadable (%v), reinitializing empty", dbPath, err)
		if renameErr := os.Rename(dbPath, dbPath+".corrupt"); renameErr != nil {
			return nil, fmt.Errorf("index: move corrupt store aside: %w", renameErr)
		}
		db, err = bbolt.Open(dbPath, 0600, nil)
		if err != nil {
			return nil, fmt.Errorf("index: reopen store: %w", err)
		}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketFiles, bucketDirs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index: create buckets: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Load reads the persisted index into memory. Missing buckets or entries
// that fail to decode yield a fresh empty index rather than an error; the
// store contents are rebuildable by rescanning.
func (s *Store) Load() (*Index, error) {
	ix := New()

	err := s.db.View(func(tx *bbolt.Tx) error {
		if err := loadBuckets(tx.Bucket(bucketFiles), ix.Files); err != nil {
			return err
		}
		return loadBuckets(tx.Bucket(bucketDirs), ix.Dirs)
	})
	if err != nil {
		log.Printf("index: store %s corrupt (%v), starting from empty index", s.path, err)
		return New(), nil
	}

	return ix, nil
}

// loadBuckets decodes every hash entry of a bolt bucket into dst.
func loadBuckets(b *bbolt.Bucket, dst Buckets) error {
	if b == nil {
		return nil
	}
	return b.ForEach(func(k, v []byte) error {
		var paths []string
		if err := decodeGob(v, &paths); err != nil {
			return fmt.Errorf("decode bucket entry %q: %w", k, err)
		}
		dst[string(k)] = paths
		return nil
	})
}

// Save writes the complete index in a single transaction, replacing the
// previous contents. The transaction either commits fully or leaves the
// old state intact, so a crash cannot leave a half-written store.
func (s *Store) Save(ix *Index) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := saveBuckets(tx, bucketFiles, ix.Files); err != nil {
			return err
		}
		return saveBuckets(tx, bucketDirs, ix.Dirs)
	})
	if err != nil {
		return fmt.Errorf("index: save store: %w", err)
	}
	return nil
}

// saveBuckets replaces the named bolt bucket with the contents of src.
func saveBuckets(tx *bbolt.Tx, name []byte, src Buckets) error {
	if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
		return fmt.Errorf("reset bucket %q: %w", name, err)
	}
	b, err := tx.CreateBucket(name)
	if err != nil {
		return fmt.Errorf("create bucket %q: %w", name, err)
	}

	for hash, paths := range src {
		data, err := encodeGob(paths)
		if err != nil {
			return fmt.Errorf("encode bucket entry %q: %w", hash, err)
		}
		if err := b.Put([]byte(hash), data); err != nil {
			return fmt.Errorf("put bucket entry %q: %w", hash, err)
		}
	}
	return nil
}

// Clear overwrites the persisted state with an empty index.
func (s *Store) Clear() error {
	return s.Save(New())
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
