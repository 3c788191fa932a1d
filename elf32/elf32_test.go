package elf32

import (
	"bytes"
	"testing"
)

func TestMatchMagic(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		want bool
	}{
		{"magic only", []byte{0x7f, 'E', 'L', 'F'}, true},
		{"magic with body", append([]byte{0x7f, 'E', 'L', 'F'}, 0xde, 0xad), true},
		{"wrong magic", []byte{0x7f, 'C', 'G', 'C'}, false},
		{"plain text", []byte("hello world"), false},
		{"short", []byte{0x7f, 'E'}, false},
		{"empty", nil, false},
	}
	for _, c := range cases {
		if got := MatchMagic(bytes.NewReader(c.body)); got != c.want {
			t.Errorf("%s: MatchMagic = %v, want %v", c.name, got, c.want)
		}
	}
}
