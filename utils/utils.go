package utils

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

var Has = struct{}{}

type Set map[string]struct{}

func (s Set) Add(key string) { s[key] = Has }

func (s Set) Has(key string) bool {
	_, in := s[key]
	return in
}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Hash creates an ID from a string.
func Hash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Fingerprint accumulates values into a 64 bits FNV-1a digest.
// The zero value is not usable, see NewFingerprint.
type Fingerprint struct {
	h   hash.Hash64
	buf [8]byte
}

func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: fnv.New64a()}
}

func (f *Fingerprint) Uint64(v uint64) *Fingerprint {
	binary.LittleEndian.PutUint64(f.buf[:], v)
	f.h.Write(f.buf[:])
	return f
}

func (f *Fingerprint) Int(v int) *Fingerprint { return f.Uint64(uint64(v)) }

func (f *Fingerprint) Float(v Fl) *Fingerprint {
	return f.Uint64(uint64(math.Float32bits(v)))
}

func (f *Fingerprint) Bool(b bool) *Fingerprint {
	if b {
		return f.Uint64(1)
	}
	return f.Uint64(0)
}

func (f *Fingerprint) String(s string) *Fingerprint {
	f.Int(len(s))
	f.h.Write([]byte(s))
	return f
}

func (f *Fingerprint) Sum() uint64 { return f.h.Sum64() }

func IsIn(l []string, s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}
