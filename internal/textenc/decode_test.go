package textenc

import (
	"errors"
	"testing"
)

func TestIsUTF8(t *testing.T) {
	for _, label := range []string{"utf-8", "UTF-8", "utf8", "Utf8", " utf-8 "} {
		if !IsUTF8(label) {
			t.Errorf("IsUTF8(%q) = false", label)
		}
	}
	for _, label := range []string{"latin1", "utf-16", "windows-1252", ""} {
		if IsUTF8(label) {
			t.Errorf("IsUTF8(%q) = true", label)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		label   string
		want    string
		wantErr error
	}{
		{name: "utf8 passthrough", in: []byte("Zürich,CH"), label: "UTF8", want: "Zürich,CH"},
		{name: "utf8 invalid", in: []byte{'a', 0xff, 'b'}, label: "utf-8", wantErr: ErrInvalidBytes},
		{name: "windows-1252", in: []byte{'c', 'a', 'f', 0xe9}, label: "windows-1252", want: "café"},
		{name: "latin1 alias", in: []byte{0xc5, 'r', 'h', 'u', 's'}, label: "latin1", want: "Århus"},
		{name: "utf-16le", in: []byte{'h', 0, 'i', 0}, label: "utf-16le", want: "hi"},
		{name: "unpaired surrogate", in: []byte{0x00, 0xd8, 'a', 0}, label: "utf-16le", wantErr: ErrInvalidBytes},
		{name: "unmapped byte", in: []byte{'a', 0xa1}, label: "iso-8859-8", wantErr: ErrInvalidBytes},
		{name: "unknown label", in: []byte("x"), label: "klingon", wantErr: ErrUnsupportedEncoding},
		{name: "utf8 bom stripped", in: []byte("\xef\xbb\xbfName,Country"), label: "utf-8", want: "Name,Country"},
		{name: "utf8 bom overrides label", in: []byte("\xef\xbb\xbfK\xc3\xb6ln"), label: "windows-1252", want: "Köln"},
		{name: "utf-16le bom", in: []byte{0xff, 0xfe, 'o', 0, 'k', 0}, label: "utf-8", want: "ok"},
		{name: "utf-16be bom", in: []byte{0xfe, 0xff, 0, 'o', 0, 'k'}, label: "utf-16le", want: "ok"},
		{name: "utf-16 replacement char", in: []byte{'a', 0, 0xfd, 0xff, 'b', 0}, label: "utf-16le", want: "a\ufffdb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in, tt.label)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeWindows1252(t *testing.T) {
	b, err := Encode("Málaga,España", "windows-1252")
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != len("Malaga,Espana") {
		t.Errorf("expected single-byte encoding, got %d bytes", len(b))
	}
	s, err := Decode(b, "windows-1252")
	if err != nil {
		t.Fatal(err)
	}
	if s != "Málaga,España" {
		t.Errorf("got %q", s)
	}
}
