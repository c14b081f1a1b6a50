package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"150000", 15000000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{100, "1"},
		{123, "1.23"},
		{15000000, "150000"},
		{-14850000, "-148500"},
		{5, "0.05"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	for _, cents := range []int64{1, 100, 123, 15000000, -14850000} {
		data, err := json.Marshal(Money{Cents: cents})
		if err != nil {
			t.Fatalf("marshal %d: %v", cents, err)
		}
		var got Money
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got.Cents != cents {
			t.Fatalf("round trip %d -> %s -> %d", cents, data, got.Cents)
		}
	}
}

func TestMoneyUnmarshalRejectsGarbage(t *testing.T) {
	for _, in := range []string{`"abc"`, `{}`, `true`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err == nil {
			t.Fatalf("%s expected error", in)
		}
	}
}
