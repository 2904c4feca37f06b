package errors

import (
	"testing"
)

func TestValidateRegionKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid key", input: "p1c1", wantErr: false},
		{name: "valid with dash", input: "page-1-col-2", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "colon", input: "p1:c1", wantErr: true},
		{name: "space", input: "p1 c1", wantErr: true},
		{name: "control character", input: "p1\x00c1", wantErr: true},
		{name: "too long", input: string(make([]byte, 200)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegionKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegionKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRegion) {
				t.Errorf("ValidateRegionKey(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRegion)
			}
		})
	}
}

func TestValidateComponentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "intro", wantErr: false},
		{name: "valid with dots", input: "section.2", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "colon", input: "a:b", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: "a\\b", wantErr: true},
		{name: "control character", input: "a\x01b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComponentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComponentID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	valid := map[string]bool{"json": true, "svg": true}

	if err := ValidateFormat("json", valid); err != nil {
		t.Errorf("ValidateFormat(json) error = %v, want nil", err)
	}
	if err := ValidateFormat("pdf", valid); err == nil {
		t.Error("ValidateFormat(pdf) error = nil, want error")
	} else if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(pdf) code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
	if err := ValidateFormat("", valid); err == nil {
		t.Error("ValidateFormat(\"\") error = nil, want error")
	}
}
