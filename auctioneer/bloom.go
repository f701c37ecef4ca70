package auctioneer

import (
	"bytes"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
	"github.com/willf/bloom"
	"sync"
)

// Sized for 10,000 commitments at a 1e-6 false positive rate.
const (
	CommitmentBloomM = 287552
	CommitmentBloomK = 20
)

// CommitmentBloom is a fast negative check in front of the commitments
// table. A hit must be confirmed against the database.
type CommitmentBloom struct {
	filter *bloom.BloomFilter
	mtx    sync.RWMutex
}

func NewCommitmentBloom(commitments []gcrypto.Hash) *CommitmentBloom {
	filter := bloom.New(CommitmentBloomM, CommitmentBloomK)
	for _, c := range commitments {
		filter.Add(c)
	}
	return &CommitmentBloom{
		filter: filter,
	}
}

func CommitmentBloomFromBytes(buf []byte) (*CommitmentBloom, error) {
	filter := new(bloom.BloomFilter)
	if _, err := filter.ReadFrom(bytes.NewReader(buf)); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling bloom filter")
	}
	return &CommitmentBloom{
		filter: filter,
	}, nil
}

func (c *CommitmentBloom) Add(commitment gcrypto.Hash) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.filter.Add(commitment)
}

func (c *CommitmentBloom) Test(commitment gcrypto.Hash) bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.filter.Test(commitment)
}

func (c *CommitmentBloom) Bytes() []byte {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	buf := new(bytes.Buffer)
	if _, err := c.filter.WriteTo(buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
