package ident

import (
	"bytes"
	"errors"
	"sort"
	"testing"
	"time"
)

// seqReader is a deterministic entropy source for tests.
type seqReader struct {
	next byte
}

func (r *seqReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

type failReader struct{}

func (failReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestNewRandom_MarkerBits(t *testing.T) {
	g := NewGenerator(nil)

	for i := 0; i < 100; i++ {
		id := g.NewRandom()
		if id.Version() != 4 {
			t.Fatalf("version = %d, want 4", id.Version())
		}
		if id[8]&0xc0 != 0x80 {
			t.Fatalf("variant bits = %02x, want 10xxxxxx", id[8])
		}
		if SchemeOf(id) != SchemeRandom {
			t.Fatalf("SchemeOf = %v, want SchemeRandom", SchemeOf(id))
		}
	}
}

func TestNewRandom_Deterministic(t *testing.T) {
	a := NewGenerator(&seqReader{}).NewRandom()
	b := NewGenerator(&seqReader{}).NewRandom()

	if a != b {
		t.Errorf("same entropy source produced different identifiers: %s vs %s", a, b)
	}
}

func TestNewRandom_Unique(t *testing.T) {
	g := NewGenerator(nil)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := g.NewRandom().String()
		if seen[id] {
			t.Fatalf("duplicate identifier %s", id)
		}
		seen[id] = true
	}
}

func TestNewTimeOrdered_TimestampRecovery(t *testing.T) {
	g := NewGenerator(nil)

	tests := []struct {
		name   string
		millis int64
	}{
		{name: "epoch", millis: 0},
		{name: "known instant", millis: 1700000000000},
		{name: "max 48-bit", millis: maxMillis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := g.NewTimeOrdered(time.UnixMilli(tt.millis))

			if id.Version() != 7 {
				t.Fatalf("version = %d, want 7", id.Version())
			}
			if SchemeOf(id) != SchemeTimeOrdered {
				t.Fatalf("SchemeOf = %v, want SchemeTimeOrdered", SchemeOf(id))
			}

			got, err := Timestamp(id)
			if err != nil {
				t.Fatalf("Timestamp failed: %v", err)
			}
			if got.UnixMilli() != tt.millis {
				t.Errorf("Timestamp = %d, want %d", got.UnixMilli(), tt.millis)
			}
		})
	}
}

func TestTimestamp_WrongScheme(t *testing.T) {
	g := NewGenerator(nil)

	_, err := Timestamp(g.NewRandom())
	if !errors.Is(err, ErrWrongScheme) {
		t.Errorf("Timestamp on random identifier = %v, want ErrWrongScheme", err)
	}
}

func TestNewTimeOrdered_Monotonic(t *testing.T) {
	g := NewGenerator(nil)
	base := int64(1700000000000)

	var ids []string
	var raws [][]byte
	for i := int64(0); i < 100; i++ {
		id := g.NewTimeOrdered(time.UnixMilli(base + i))
		ids = append(ids, id.String())
		raws = append(raws, Encode(Binary, id))
	}

	if !sort.StringsAreSorted(ids) {
		t.Error("canonical text ordering does not follow generation order")
	}
	for i := 1; i < len(raws); i++ {
		if bytes.Compare(raws[i-1], raws[i]) >= 0 {
			t.Errorf("byte ordering inverted between %x and %x", raws[i-1], raws[i])
		}
	}
}

func TestNewTimeOrdered_OutOfRangePanics(t *testing.T) {
	g := NewGenerator(nil)

	tests := []struct {
		name string
		at   time.Time
	}{
		{name: "before epoch", at: time.UnixMilli(-1)},
		{name: "past 48-bit range", at: time.UnixMilli(maxMillis + 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic for out-of-range timestamp")
				}
			}()
			g.NewTimeOrdered(tt.at)
		})
	}
}

func TestGenerator_EntropyFailurePanics(t *testing.T) {
	g := NewGenerator(failReader{})

	defer func() {
		if recover() == nil {
			t.Error("expected panic when entropy source fails")
		}
	}()
	g.NewRandom()
}

func TestSchemeOf_Unknown(t *testing.T) {
	id, err := ParseCanonical("00000000-0000-1000-8000-000000000000") // version 1
	if err != nil {
		t.Fatalf("ParseCanonical failed: %v", err)
	}
	if SchemeOf(id) != SchemeUnknown {
		t.Errorf("SchemeOf(v1) = %v, want SchemeUnknown", SchemeOf(id))
	}
}
