package errors

import (
	"strings"
	"testing"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https url", "https://example.com/cat.jpg", false},
		{"http url with query", "http://example.com/img?id=3", false},
		{"data uri", "data:image/png;base64,iVBORw0KGgo=", false},
		{"local path", "photos/cat.png", false},
		{"absolute path", "/tmp/cat.png", false},

		{"empty", "", true},
		{"data uri without payload", "data:image/png;base64", true},
		{"data uri not an image", "data:text/plain;base64,aGVsbG8=", true},
		{"url without host", "https:///cat.jpg", true},
		{"path with null byte", "cat\x00.png", true},
		{"path with newline", "cat\n.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSource) {
				t.Errorf("ValidateSource(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidSource)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com", false},
		{"http", "http://example.com/a.png", false},

		{"empty", "", true},
		{"ftp scheme", "ftp://example.com/a.png", true},
		{"no scheme", "example.com/a.png", true},
		{"too long", "https://example.com/" + strings.Repeat("a", maxURLLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
