package main

import "testing"

func TestGetenvDefault(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		def  string
		want string
	}{
		{"set value wins", "DRIFT_TEST_SET", "custom", "fallback", "custom"},
		{"unset uses default", "DRIFT_TEST_UNSET", "", "fallback", "fallback"},
		{"empty uses default", "DRIFT_TEST_EMPTY", "", ":8080", ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.val != "" {
				t.Setenv(tt.key, tt.val)
			}
			if got := getenvDefault(tt.key, tt.def); got != tt.want {
				t.Errorf("getenvDefault(%q, %q) = %q, want %q", tt.key, tt.def, got, tt.want)
			}
		})
	}
}
