package errors

import "testing"

func TestValidateCanvasName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Node Canvas", false},
		{"dashes", "float-calc_v2", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"control", "a\tb", true},
		{"too long", string(make([]byte, 129)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvasName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCanvasName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Float", false},
		{"inputNode", false},
		{"_private", false},
		{"vec.x", false},
		{"", true},
		{"1abc", true},
		{"has space", true},
	}

	for _, tt := range tests {
		err := ValidateIdentifier("type", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateColor(t *testing.T) {
	if err := ValidateColor("#00FFFF"); err != nil {
		t.Errorf("ValidateColor(#00FFFF) = %v", err)
	}
	for _, bad := range []string{"", "cyan", "#FFF", "00FFFF", "#GGGGGG"} {
		if err := ValidateColor(bad); err == nil {
			t.Errorf("ValidateColor(%q) = nil, want error", bad)
		}
	}
}
