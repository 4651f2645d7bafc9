package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BadgerDB is a badger database shared by several wallet namespaces.
type BadgerDB struct {
	db *badger.DB
}

// OpenBadger opens the database at path. An empty path opens an in-memory
// database.
func OpenBadger(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, wrapStorage(err, "database at %s is locked by another process", path)
		}
		return nil, wrapStorage(err, "opening database at %s", path)
	}
	return &BadgerDB{db: db}, nil
}

// Close closes the database.
func (b *BadgerDB) Close() error {
	return b.db.Close()
}

// Namespace loads the values stored under ns, usually an asset id such as
// "ethereum@ethereum".
func (b *BadgerDB) Namespace(ns string) (*Badger, error) {
	prefix := []byte(ns + "/")
	data := make(map[string]string)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			data[strings.TrimPrefix(string(item.Key()), string(prefix))] = string(val)
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err, "loading namespace %s", ns)
	}

	return &Badger{values: newValues(data), db: b.db, prefix: string(prefix)}, nil
}

// Badger is a Store over one namespace of a BadgerDB.
type Badger struct {
	*values
	db     *badger.DB
	prefix string
}

// Save flushes every value in one transaction.
func (s *Badger) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.snapshot()
	err := s.db.Update(func(txn *badger.Txn) error {
		for k, v := range snapshot {
			if err := txn.Set([]byte(s.prefix+k), []byte(v)); err != nil {
				return fmt.Errorf("setting %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return wrapStorage(err, "saving namespace %s", strings.TrimSuffix(s.prefix, "/"))
	}
	return nil
}
