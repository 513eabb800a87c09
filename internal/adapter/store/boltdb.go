// Package store persists vector index snapshots in a bbolt file. The
// index itself never touches disk; this adapter owns the serialized
// bundle of vectors, problems, and build metadata.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"dilr/internal/adapter/memstore"
	"dilr/internal/domain"
)

var (
	bucketVectors  = []byte("vectors")
	bucketProblems = []byte("problems")
	bucketMeta     = []byte("meta")
	keyMeta        = []byte("snapshot")
)

// Meta describes a saved snapshot.
type Meta struct {
	Dimension int       `json:"dimension"`
	Count     int       `json:"count"`
	Model     string    `json:"model"`
	BuiltAt   time.Time `json:"built_at"`
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

// Save writes the index and its problems to a bbolt file, replacing any
// previous snapshot. Keys are big-endian insertion indexes so a later
// load reassembles entries in their original order.
func Save(path string, index *memstore.FlatIndex, model string) error {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer db.Close()

	vectors, problems := index.Entries()

	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketVectors, bucketProblems, bucketMeta} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return fmt.Errorf("failed to reset bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		vb := tx.Bucket(bucketVectors)
		pb := tx.Bucket(bucketProblems)

		for i := range vectors {
			key := indexKey(uint64(i))

			vData, err := json.Marshal(storedVector{Vector: vectors[i]})
			if err != nil {
				return err
			}
			if err := vb.Put(key, vData); err != nil {
				return err
			}

			pData, err := json.Marshal(problems[i])
			if err != nil {
				return err
			}
			if err := pb.Put(key, pData); err != nil {
				return err
			}
		}

		meta := Meta{
			Dimension: index.Dimension(),
			Count:     index.Len(),
			Model:     model,
			BuiltAt:   time.Now().UTC(),
		}
		mData, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyMeta, mData)
	})
}

// Load rebuilds a flat index from a snapshot file.
func Load(path string) (*memstore.FlatIndex, Meta, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to open snapshot db: %w", err)
	}
	defer db.Close()

	var meta Meta
	var vectors [][]float32
	var problems []domain.Problem

	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return fmt.Errorf("snapshot has no meta bucket")
		}
		mData := mb.Get(keyMeta)
		if mData == nil {
			return fmt.Errorf("snapshot has no meta record")
		}
		if err := json.Unmarshal(mData, &meta); err != nil {
			return fmt.Errorf("corrupt snapshot meta: %w", err)
		}

		vb := tx.Bucket(bucketVectors)
		pb := tx.Bucket(bucketProblems)
		if vb == nil || pb == nil {
			return fmt.Errorf("snapshot missing vector or problem bucket")
		}

		// Big-endian keys iterate in insertion order.
		return vb.ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt vector at key %d: %w", keyIndex(k), err)
			}

			pData := pb.Get(k)
			if pData == nil {
				return fmt.Errorf("vector %d has no matching problem", keyIndex(k))
			}
			var p domain.Problem
			if err := json.Unmarshal(pData, &p); err != nil {
				return fmt.Errorf("corrupt problem at key %d: %w", keyIndex(k), err)
			}

			vectors = append(vectors, stored.Vector)
			problems = append(problems, p)
			return nil
		})
	})
	if err != nil {
		return nil, Meta{}, err
	}

	index, err := memstore.New(meta.Dimension)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("snapshot meta has bad dimension: %w", err)
	}
	if err := index.Add(vectors, problems); err != nil {
		return nil, Meta{}, fmt.Errorf("snapshot entries inconsistent: %w", err)
	}

	return index, meta, nil
}

func indexKey(i uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, i)
	return key
}

func keyIndex(key []byte) uint64 {
	if len(key) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key)
}
