package checkout

import (
	"fmt"
	"sync/atomic"
	"time"

	hashids "github.com/speps/go-hashids/v2"
)

const (
	referencePrefix   = "ORD-"
	referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// ReferenceGenerator issues display-only order references.
type ReferenceGenerator interface {
	Next(now time.Time) (string, error)
}

// HashReferenceGenerator encodes the wall clock plus a process-local sequence.
// Uniqueness across instances is enforced by the orders table.
type HashReferenceGenerator struct {
	codec *hashids.HashID
	seq   atomic.Int64
}

func NewHashReferenceGenerator(salt string, minLength int) (*HashReferenceGenerator, error) {
	data := hashids.NewData()
	data.Alphabet = referenceAlphabet
	data.Salt = salt
	data.MinLength = minLength
	codec, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("order reference codec: %w", err)
	}
	return &HashReferenceGenerator{codec: codec}, nil
}

func (g *HashReferenceGenerator) Next(now time.Time) (string, error) {
	n := g.seq.Add(1) % 1000
	encoded, err := g.codec.EncodeInt64([]int64{now.UnixMilli()*1000 + n})
	if err != nil {
		return "", fmt.Errorf("encode order reference: %w", err)
	}
	return referencePrefix + encoded, nil
}
