package ident

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

const sampleCanonical = "550e8400-e29b-41d4-a716-446655440000"

var sampleBinary = []byte{
	0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4,
	0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00,
}

func TestEncode_KnownVector(t *testing.T) {
	id := uuid.MustParse(sampleCanonical)

	if got := Encode(Binary, id); !bytes.Equal(got, sampleBinary) {
		t.Errorf("Binary = % x, want % x", got, sampleBinary)
	}
	if got := string(Encode(CompactText, id)); got != strings.ReplaceAll(sampleCanonical, "-", "") {
		t.Errorf("CompactText = %q", got)
	}
	if got := string(Encode(CanonicalText, id)); got != sampleCanonical {
		t.Errorf("CanonicalText = %q, want %q", got, sampleCanonical)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	g := NewGenerator(nil)
	encodings := []Encoding{Binary, CompactText, CanonicalText}

	ids := []uuid.UUID{
		g.NewRandom(),
		g.NewTimeOrderedNow(),
		uuid.Nil,
		uuid.MustParse(sampleCanonical),
	}

	for _, enc := range encodings {
		for _, id := range ids {
			got, err := Decode(enc, Encode(enc, id))
			if err != nil {
				t.Fatalf("%s: Decode(Encode(%s)) failed: %v", enc, id, err)
			}
			if got != id {
				t.Errorf("%s: round trip = %s, want %s", enc, got, id)
			}
		}
	}
}

func TestConvert_CrossEncoding(t *testing.T) {
	g := NewGenerator(nil)
	encodings := []Encoding{Binary, CompactText, CanonicalText}
	id := g.NewRandom()

	for _, from := range encodings {
		for _, to := range encodings {
			v, err := Convert(from, to, Encode(from, id))
			if err != nil {
				t.Fatalf("Convert(%s, %s) failed: %v", from, to, err)
			}
			got, err := Decode(to, v)
			if err != nil {
				t.Fatalf("Decode after Convert(%s, %s) failed: %v", from, to, err)
			}
			if got != id {
				t.Errorf("Convert(%s, %s) = %s, want %s", from, to, got, id)
			}
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		enc   Encoding
		input string
		want  error
	}{
		{
			name:  "binary wrong length",
			enc:   Binary,
			input: "short",
			want:  ErrMalformedLength,
		},
		{
			name:  "compact wrong length",
			enc:   CompactText,
			input: "550e8400",
			want:  ErrMalformedLength,
		},
		{
			name:  "compact non-hex",
			enc:   CompactText,
			input: "550e8400e29b41d4a7164466554400zz",
			want:  ErrInvalidCharacter,
		},
		{
			name:  "canonical wrong length",
			enc:   CanonicalText,
			input: "550e8400-e29b-41d4-a716",
			want:  ErrMalformedLength,
		},
		{
			name:  "canonical separator misplaced",
			enc:   CanonicalText,
			input: "550e84000e29b-41d4-a716-446655440000",
			want:  ErrInvalidCharacter,
		},
		{
			name:  "canonical non-hex",
			enc:   CanonicalText,
			input: "550e8400-e29b-41d4-a716-44665544000g",
			want:  ErrInvalidCharacter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.enc, []byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_AcceptsUppercaseHex(t *testing.T) {
	got, err := Decode(CanonicalText, []byte(strings.ToUpper(sampleCanonical)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != uuid.MustParse(sampleCanonical) {
		t.Errorf("Decode uppercase = %s, want %s", got, sampleCanonical)
	}
}

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: sampleCanonical},
		{name: "braced form rejected", input: "{550e8400-e29b-41d4-a716-446655440000}", wantErr: true},
		{name: "urn form rejected", input: "urn:uuid:" + sampleCanonical, wantErr: true},
		{name: "compact form rejected", input: strings.ReplaceAll(sampleCanonical, "-", ""), wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseCanonical(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("ParseCanonical = %v, want ErrInvalidFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCanonical failed: %v", err)
			}
			if id.String() != tt.input {
				t.Errorf("ParseCanonical = %s, want %s", id, tt.input)
			}
		})
	}
}

func TestCodec_BindAndScan(t *testing.T) {
	id := uuid.MustParse(sampleCanonical)

	tests := []struct {
		name string
		enc  Encoding
	}{
		{name: "binary", enc: Binary},
		{name: "compact", enc: CompactText},
		{name: "canonical", enc: CanonicalText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCodec(tt.enc)

			bound := c.Bind(id)
			if tt.enc == Binary {
				if _, ok := bound.([]byte); !ok {
					t.Fatalf("Bind = %T, want []byte", bound)
				}
			} else {
				if _, ok := bound.(string); !ok {
					t.Fatalf("Bind = %T, want string", bound)
				}
			}

			// Drivers hand back either []byte or string depending on the
			// column type; the scanner must accept both.
			var fromBytes uuid.UUID
			if err := c.ScanTarget(&fromBytes).Scan([]byte(Encode(tt.enc, id))); err != nil {
				t.Fatalf("Scan []byte failed: %v", err)
			}
			if fromBytes != id {
				t.Errorf("Scan []byte = %s, want %s", fromBytes, id)
			}

			var fromString uuid.UUID
			if err := c.ScanTarget(&fromString).Scan(string(Encode(tt.enc, id))); err != nil {
				t.Fatalf("Scan string failed: %v", err)
			}
			if fromString != id {
				t.Errorf("Scan string = %s, want %s", fromString, id)
			}
		})
	}
}

func TestCodec_NullableColumns(t *testing.T) {
	c := NewCodec(CanonicalText)
	id := uuid.MustParse(sampleCanonical)

	if v := c.BindPtr(nil); v != nil {
		t.Errorf("BindPtr(nil) = %v, want nil", v)
	}
	if v := c.BindPtr(&id); v != sampleCanonical {
		t.Errorf("BindPtr = %v, want %s", v, sampleCanonical)
	}

	var dst *uuid.UUID
	if err := c.ScanNullTarget(&dst).Scan(nil); err != nil {
		t.Fatalf("Scan NULL failed: %v", err)
	}
	if dst != nil {
		t.Errorf("Scan NULL = %v, want nil", dst)
	}

	if err := c.ScanNullTarget(&dst).Scan(sampleCanonical); err != nil {
		t.Fatalf("Scan value failed: %v", err)
	}
	if dst == nil || *dst != id {
		t.Errorf("Scan value = %v, want %s", dst, id)
	}

	var nonNull uuid.UUID
	if err := c.ScanTarget(&nonNull).Scan(nil); err == nil {
		t.Error("Scan NULL into non-nullable target should fail")
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		input   string
		want    Encoding
		wantErr bool
	}{
		{input: "binary", want: Binary},
		{input: "compact", want: CompactText},
		{input: "canonical", want: CanonicalText},
		{input: "hex", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEncoding(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("ParseEncoding should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEncoding failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseEncoding = %v, want %v", got, tt.want)
			}
		})
	}
}
