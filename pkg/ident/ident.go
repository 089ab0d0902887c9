// Package ident generates and encodes the 128-bit identifiers used for
// every persisted CRM record.
//
// Two generation schemes exist. Business entities (tenants, contacts,
// companies, deals) use random identifiers so record IDs cannot be
// enumerated or guessed across tenants. High-volume temporal entities
// (activities) use time-ordered identifiers whose high 48 bits carry the
// creation time in unix milliseconds, giving insertion-order locality and
// cheap keyset pagination. The scheme per entity kind is fixed in the
// repositories, not chosen at call time.
package ident

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Scheme identifies how an identifier was generated.
type Scheme int

const (
	// SchemeUnknown is reported for identifiers this package did not issue.
	SchemeUnknown Scheme = iota
	// SchemeRandom identifiers carry no semantics beyond uniqueness.
	SchemeRandom
	// SchemeTimeOrdered identifiers embed their creation time in the
	// high 48 bits and sort chronologically.
	SchemeTimeOrdered
)

// String returns a human-readable scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeRandom:
		return "random"
	case SchemeTimeOrdered:
		return "time-ordered"
	default:
		return "unknown"
	}
}

// maxMillis is the largest timestamp representable in 48 bits (year ~10889).
const maxMillis = int64(1)<<48 - 1

// Generator issues fresh identifiers from an explicit entropy source.
// The zero source (nil) is crypto/rand. A failing entropy source is not a
// recoverable condition: generation panics, since the process cannot
// safely keep issuing identifiers without entropy.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator reading entropy from r.
// Pass nil to use crypto/rand. Tests inject a deterministic reader.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// NewRandom returns a fresh random-scheme identifier (UUID v4 layout,
// 122 bits of entropy after the version/variant markers).
func (g *Generator) NewRandom() uuid.UUID {
	var b [16]byte
	g.mustRead(b[:])
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	id, _ := uuid.FromBytes(b[:])
	return id
}

// NewTimeOrdered returns a time-ordered identifier (UUID v7 layout) for
// the given instant. The 74-bit random tail is drawn directly from the
// entropy source, independent of the timestamp. Two identifiers from the
// same millisecond are still totally ordered by their tail bytes.
//
// Panics if at is before the unix epoch or past the 48-bit millisecond
// range; that is a caller bug, not a runtime condition.
func (g *Generator) NewTimeOrdered(at time.Time) uuid.UUID {
	ms := at.UnixMilli()
	if ms < 0 || ms > maxMillis {
		panic(fmt.Sprintf("ident: timestamp %d out of 48-bit millisecond range", ms))
	}

	var b [16]byte
	g.mustRead(b[6:])
	b[0] = byte(ms >> 40)
	b[1] = byte(ms >> 32)
	b[2] = byte(ms >> 24)
	b[3] = byte(ms >> 16)
	b[4] = byte(ms >> 8)
	b[5] = byte(ms)
	b[6] = (b[6] & 0x0f) | 0x70 // version 7
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	id, _ := uuid.FromBytes(b[:])
	return id
}

// NewTimeOrderedNow is NewTimeOrdered at the current wall clock.
func (g *Generator) NewTimeOrderedNow() uuid.UUID {
	return g.NewTimeOrdered(time.Now())
}

func (g *Generator) mustRead(p []byte) {
	if _, err := io.ReadFull(g.rand, p); err != nil {
		panic(fmt.Sprintf("ident: entropy source failed: %v", err))
	}
}

// SchemeOf reports the generation scheme encoded in the identifier's
// version bits.
func SchemeOf(id uuid.UUID) Scheme {
	switch id.Version() {
	case 4:
		return SchemeRandom
	case 7:
		return SchemeTimeOrdered
	default:
		return SchemeUnknown
	}
}

// Timestamp recovers the creation instant embedded in a time-ordered
// identifier, at millisecond resolution. Returns ErrWrongScheme for
// identifiers of any other scheme.
func Timestamp(id uuid.UUID) (time.Time, error) {
	if SchemeOf(id) != SchemeTimeOrdered {
		return time.Time{}, fmt.Errorf("%w: %s identifier has no timestamp", ErrWrongScheme, SchemeOf(id))
	}
	ms := int64(id[0])<<40 | int64(id[1])<<32 | int64(id[2])<<24 |
		int64(id[3])<<16 | int64(id[4])<<8 | int64(id[5])
	return time.UnixMilli(ms).UTC(), nil
}
