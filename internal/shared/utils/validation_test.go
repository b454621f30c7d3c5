package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		wantErr  bool
	}{
		{"required empty", "", true, true},
		{"optional empty", "", false, false},
		{"ok", "abc", true, false},
		{"too long", strings.Repeat("a", 11), true, true},
		{"nul byte", "a\x00b", true, true},
		{"bad utf8", "\xff", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.value, "field", 1, 10, tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("ws_01HV3K8Q6J7M9X2C4B5N0PZRTA", "id", true))
	assert.Error(t, ValidateID("ws/../etc", "id", true))
	assert.Error(t, ValidateID("", "id", true))
	assert.NoError(t, ValidateID("", "id", false))
}

func TestValidatePath(t *testing.T) {
	valid := []string{"/", "/README.md", "/src/App.tsx", "/a b/c.txt", "/src/"}
	for _, p := range valid {
		assert.NoError(t, ValidatePath(p, "path"), p)
	}

	invalid := []string{"", "README.md", "/src/../etc", "/./a", "/a\x00", "/" + strings.Repeat("a", MaxPathLength)}
	for _, p := range invalid {
		assert.Error(t, ValidatePath(p, "path"), p)
	}
}
