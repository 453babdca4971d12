package model

import "testing"

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		login string
		ok    bool
	}{
		{"alice", true},
		{"a", true},
		{"user with spaces", true},
		{"Петя", true},
		{"mixedПетя42", true},
		{"", false},
		{"123456789012345678901", false},
		{"12345678901234567890", true},
		{"with|separator", false},
		{"with:colon", false},
		{"tab\there", false},
		{"日本語", false},
	}

	for _, tt := range tests {
		err := ValidateLogin(tt.login)
		if tt.ok && err != nil {
			t.Errorf("ValidateLogin(%q): expected ok, got %v", tt.login, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ValidateLogin(%q): expected error, got nil", tt.login)
		}
	}
}
