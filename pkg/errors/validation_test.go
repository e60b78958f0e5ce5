package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"node-web-1", false},
		{"3f1c2a9e-7b1d-4c55-9a0e-2f3b1c4d5e6f", false},
		{"edge.v1", false},
		{strings.Repeat("a", MaxIDLength), false},

		{"", true},
		{strings.Repeat("a", MaxIDLength+1), true},
		{"a/b", true},
		{`a\b`, true},
		{"..", true},
		{"a b", true},
		{"a\tb", true},
		{"a\x01b", true},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && GetCode(err) != ErrCodeInvalidID {
			t.Errorf("ValidateID(%q) code = %s", tt.id, GetCode(err))
		}
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("svg", "svg", "png"); err != nil {
		t.Errorf("ValidateFormat(svg) = %v", err)
	}
	err := ValidateFormat("gif", "svg", "png")
	if GetCode(err) != ErrCodeInvalidFormat {
		t.Fatalf("ValidateFormat(gif) = %v, want INVALID_FORMAT", err)
	}
	if !strings.Contains(err.Error(), "svg, png") {
		t.Errorf("message %q does not list the allowed formats", err.Error())
	}
}
