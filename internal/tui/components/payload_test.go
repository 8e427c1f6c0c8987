package components

import (
	"bytes"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		wantErr  bool
	}{
		{"compact", "48656C6C6F", []byte("Hello"), false},
		{"spaced", "48 65 6c 6c 6f", []byte("Hello"), false},
		{"prefixed", "0x41 0X42", []byte("AB"), false},
		{"tabs and newline", "01\t02\n03", []byte{1, 2, 3}, false},
		{"odd length", "ABC", nil, true},
		{"invalid digit", "GG", nil, true},
		{"empty", "   ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("ParseHex(%q) = % X, expected % X", tt.input, got, tt.expected)
			}
		})
	}
}
