package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"TRUE", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
		{"garbage", false, false},
		{" yes ", false, true},
	}
	for _, c := range cases {
		t.Setenv("TEST_BOOL_ENV", c.value)
		if got := ParseBoolEnv("TEST_BOOL_ENV", c.defaultValue); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.defaultValue, got, c.want)
		}
	}
}

func TestParseFloatEnv(t *testing.T) {
	cases := []struct {
		value        string
		defaultValue float64
		want         float64
	}{
		{"85000", 0, 85000},
		{"0.5", 1, 0.5},
		{" 60000 ", 0, 60000},
		{"", 42, 42},
		{"not-a-number", 42, 42},
	}
	for _, c := range cases {
		t.Setenv("TEST_FLOAT_ENV", c.value)
		if got := ParseFloatEnv("TEST_FLOAT_ENV", c.defaultValue); got != c.want {
			t.Errorf("ParseFloatEnv(%q, %v) = %v, want %v", c.value, c.defaultValue, got, c.want)
		}
	}
}
