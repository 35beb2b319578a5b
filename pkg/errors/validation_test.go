package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "greeter", false},
		{"valid with underscore", "my_package", false},
		{"valid leading underscore", "_private", false},
		{"valid with digits", "lib2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"dash", "my-package", true},
		{"dot", "my.package", true},
		{"leading digit", "2lib", true},
		{"path traversal", "../x", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidatePackageName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "libs", false},
		{"valid nested", "components/libs", false},

		{"empty", "", true},
		{"absolute", "/etc", true},
		{"traversal", "libs/../..", true},
		{"backslash", "libs\\x", true},
		{"control char", "libs\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
