package ident

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Decode errors. All are caller-input problems and safe to surface.
var (
	ErrMalformedLength  = errors.New("malformed identifier length")
	ErrInvalidCharacter = errors.New("invalid character in identifier")
	ErrInvalidFormat    = errors.New("invalid identifier format")
	ErrWrongScheme      = errors.New("wrong identifier scheme")
)

// Encoding is a fixed storage representation of an identifier.
// All three encodings agree bit-for-bit on the underlying value and
// preserve the identifier's byte ordering.
type Encoding int

const (
	// Binary is the raw 16-byte form.
	Binary Encoding = iota
	// CompactText is 32 lowercase hex characters, no separators.
	CompactText
	// CanonicalText is the 36-character dashed form, the only
	// representation exposed outside the persistence layer.
	CanonicalText
)

// Dash positions in the canonical form map to byte offsets 4, 6, 8, 10.
var canonicalDashes = [4]int{8, 13, 18, 23}

// Width returns the encoded size in bytes for this encoding.
func (e Encoding) Width() int {
	switch e {
	case Binary:
		return 16
	case CompactText:
		return 32
	default:
		return 36
	}
}

// String returns the configuration name of the encoding.
func (e Encoding) String() string {
	switch e {
	case Binary:
		return "binary"
	case CompactText:
		return "compact"
	default:
		return "canonical"
	}
}

// ParseEncoding parses a configuration value into an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "binary":
		return Binary, nil
	case "compact":
		return CompactText, nil
	case "canonical":
		return CanonicalText, nil
	default:
		return Binary, fmt.Errorf("unknown identifier encoding %q", s)
	}
}

// Encode serializes id in the given encoding. Text encodings emit
// lowercase hex.
func Encode(e Encoding, id uuid.UUID) []byte {
	switch e {
	case Binary:
		out := make([]byte, 16)
		copy(out, id[:])
		return out
	case CompactText:
		out := make([]byte, 32)
		hex.Encode(out, id[:])
		return out
	default:
		out := make([]byte, 36)
		encodeCanonical(out, id)
		return out
	}
}

func encodeCanonical(dst []byte, id uuid.UUID) {
	hex.Encode(dst[0:8], id[0:4])
	dst[8] = '-'
	hex.Encode(dst[9:13], id[4:6])
	dst[13] = '-'
	hex.Encode(dst[14:18], id[6:8])
	dst[18] = '-'
	hex.Encode(dst[19:23], id[8:10])
	dst[23] = '-'
	hex.Encode(dst[24:36], id[10:16])
}

// Decode parses a value in the given encoding back to an identifier.
// It never partially decodes: on any failure the zero UUID is returned
// with a typed error. Hex digits are accepted in either case.
func Decode(e Encoding, v []byte) (uuid.UUID, error) {
	if len(v) != e.Width() {
		return uuid.Nil, fmt.Errorf("%w: got %d bytes, want %d for %s encoding",
			ErrMalformedLength, len(v), e.Width(), e)
	}

	var id uuid.UUID
	switch e {
	case Binary:
		copy(id[:], v)
		return id, nil
	case CompactText:
		if _, err := hex.Decode(id[:], v); err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q is not hex", ErrInvalidCharacter, v)
		}
		return id, nil
	default:
		for _, pos := range canonicalDashes {
			if v[pos] != '-' {
				return uuid.Nil, fmt.Errorf("%w: expected separator at position %d", ErrInvalidCharacter, pos)
			}
		}
		var compact [32]byte
		n := 0
		for i, c := range v {
			if i == canonicalDashes[0] || i == canonicalDashes[1] ||
				i == canonicalDashes[2] || i == canonicalDashes[3] {
				continue
			}
			compact[n] = c
			n++
		}
		if _, err := hex.Decode(id[:], compact[:]); err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q is not hex", ErrInvalidCharacter, v)
		}
		return id, nil
	}
}

// Convert re-encodes a value from one encoding to another through the
// decoded form.
func Convert(from, to Encoding, v []byte) ([]byte, error) {
	id, err := Decode(from, v)
	if err != nil {
		return nil, err
	}
	return Encode(to, id), nil
}

// ParseCanonical parses the strict canonical text form
// hhhhhhhh-hhhh-hhhh-hhhh-hhhhhhhhhhhh. Unlike uuid.Parse it rejects
// braces, URN prefixes and any other variant spelling: this is the wire
// format validator for identifiers arriving from external callers.
func ParseCanonical(text string) (uuid.UUID, error) {
	id, err := Decode(CanonicalText, []byte(text))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	return id, nil
}

// Codec binds identifiers to SQL statements in one configured storage
// encoding. Repositories hold a Codec so no call site chooses (or can
// bypass) the encoding.
type Codec struct {
	enc Encoding
}

// NewCodec creates a codec for the given storage encoding.
func NewCodec(e Encoding) Codec {
	return Codec{enc: e}
}

// Encoding returns the configured storage encoding.
func (c Codec) Encoding() Encoding {
	return c.enc
}

// Bind returns the driver value for an identifier column: []byte for the
// binary encoding, string for the text encodings.
func (c Codec) Bind(id uuid.UUID) any {
	v := Encode(c.enc, id)
	if c.enc == Binary {
		return v
	}
	return string(v)
}

// BindPtr is Bind for nullable identifier columns; nil maps to SQL NULL.
func (c Codec) BindPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return c.Bind(*id)
}

// ScanTarget returns a sql.Scanner that decodes a stored identifier
// column into dst.
func (c Codec) ScanTarget(dst *uuid.UUID) sql.Scanner {
	return &idScanner{enc: c.enc, dst: dst}
}

// ScanNullTarget returns a sql.Scanner for a nullable identifier column;
// SQL NULL leaves *dst nil.
func (c Codec) ScanNullTarget(dst **uuid.UUID) sql.Scanner {
	return &idScanner{enc: c.enc, nullDst: dst}
}

type idScanner struct {
	enc     Encoding
	dst     *uuid.UUID
	nullDst **uuid.UUID
}

func (s *idScanner) Scan(src any) error {
	if src == nil {
		if s.nullDst == nil {
			return fmt.Errorf("%w: NULL in non-nullable identifier column", ErrMalformedLength)
		}
		*s.nullDst = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: cannot decode %T as identifier", ErrInvalidFormat, src)
	}

	id, err := Decode(s.enc, raw)
	if err != nil {
		return err
	}
	if s.nullDst != nil {
		*s.nullDst = &id
		return nil
	}
	*s.dst = id
	return nil
}
