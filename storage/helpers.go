package storage

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// getArtifact decodes the value stored under prefix+key into out. It returns
// ErrNotFound if there is no such key.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return decodeArtifact(data, out)
}

// setArtifacts stores every value under prefix+key in a single transaction.
func (s *Storage) setArtifacts(entries ...entry) error {
	wTx := s.db.WriteTx()
	for _, e := range entries {
		val, err := encodeArtifact(e.value)
		if err != nil {
			wTx.Discard()
			return err
		}
		if err := prefixeddb.NewPrefixedWriteTx(wTx, e.prefix).Set(e.key, val); err != nil {
			wTx.Discard()
			return err
		}
	}
	return wTx.Commit()
}

type entry struct {
	prefix []byte
	key    []byte
	value  any
}

// listArtifacts returns the keys stored under prefix.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := rd.Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, append([]byte{}, k...))
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}
