package types

import (
	ssz "github.com/ferranbt/fastssz"
)

// The hash tree roots below are hand-rolled rather than sszgen generated
// since only the three small fixed containers ever need them in this core.

// HashTreeRoot ssz hashes the AttestationData object.
func (a *AttestationData) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	if err := a.HashTreeRootWith(hh); err != nil {
		ssz.DefaultHasherPool.Put(hh)
		return [32]byte{}, err
	}
	root, err := hh.HashRoot()
	ssz.DefaultHasherPool.Put(hh)
	return root, err
}

// HashTreeRootWith ssz hashes the AttestationData object with a hasher.
func (a *AttestationData) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(a.Slot)
	hh.PutUint64(a.Shard)
	hh.PutBytes(a.ShardBlockRoot)
	hh.PutUint64(a.JustifiedEpoch)
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the CrosslinkRecord object.
func (c *CrosslinkRecord) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	if err := c.HashTreeRootWith(hh); err != nil {
		ssz.DefaultHasherPool.Put(hh)
		return [32]byte{}, err
	}
	root, err := hh.HashRoot()
	ssz.DefaultHasherPool.Put(hh)
	return root, err
}

// HashTreeRootWith ssz hashes the CrosslinkRecord object with a hasher.
func (c *CrosslinkRecord) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(c.Epoch)
	hh.PutBytes(c.ShardBlockRoot)
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot ssz hashes the Fork object.
func (f *Fork) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	if err := f.HashTreeRootWith(hh); err != nil {
		ssz.DefaultHasherPool.Put(hh)
		return [32]byte{}, err
	}
	root, err := hh.HashRoot()
	ssz.DefaultHasherPool.Put(hh)
	return root, err
}

// HashTreeRootWith ssz hashes the Fork object with a hasher.
func (f *Fork) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(f.PreviousVersion)
	hh.PutUint64(f.CurrentVersion)
	hh.PutUint64(f.Epoch)
	hh.Merkleize(indx)
	return nil
}
