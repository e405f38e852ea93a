package solcgt

import (
	"strings"
	"testing"
)

func TestMoneyRound(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"10.004", "10"},
		{"10.006", "10.01"},
		{"10.005", "10.01"}, // half rounds away from zero
		{"-10.006", "-10.01"},
	}
	for _, tc := range testCases {
		if got := AUD(tc.in).Round(); !got.Equal(AUD(tc.want)) {
			t.Errorf("AUD(%s).Round() = %s, want %s", tc.in, got.Decimal(), tc.want)
		}
	}
}

func TestMoneySignedString(t *testing.T) {
	if got := AUD(0).SignedString(); got != "-" {
		t.Errorf("zero SignedString() = %q, want -", got)
	}
	if got := AUD(5).SignedString(); !strings.HasPrefix(got, "+") {
		t.Errorf("positive SignedString() = %q, want a + prefix", got)
	}
	if got := AUD(-5).SignedString(); !strings.Contains(got, "-") {
		t.Errorf("negative SignedString() = %q, want a - sign", got)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	total := AUD("100.10").Sub(AUD("0.10")).Add(AUD(50))
	assertMoney(t, "chained arithmetic", total, "150")
	assertMoney(t, "mul", AUD(10).Mul(Q("2.5")), "25")
	assertMoney(t, "div", AUD(100).Div(Q(8)), "12.5")
	if !AUD(-1).IsNegative() || !AUD(1).IsPositive() || !AUD(0).IsZero() {
		t.Error("sign predicates disagree with their values")
	}
}

func TestQuantityQuantize(t *testing.T) {
	if got := Q("1.0000000004").Quantize(); !got.Equal(Q(1)) {
		t.Errorf("Quantize() = %s, want 1", got)
	}
	if got := Q("1.0000000006").Quantize(); !got.Equal(Q("1.000000001")) {
		t.Errorf("Quantize() = %s, want 1.000000001", got)
	}
}

func TestQuantityWithinTolerance(t *testing.T) {
	tol := Q("0.00000001")
	if !Q(1).WithinTolerance(Q("1.000000009"), tol) {
		t.Error("difference below tolerance rejected")
	}
	if Q(1).WithinTolerance(Q("1.00000002"), tol) {
		t.Error("difference above tolerance accepted")
	}
}

func TestQuantityMin(t *testing.T) {
	if got := Q(3).Min(Q(2)); !got.Equal(Q(2)) {
		t.Errorf("Min = %s, want 2", got)
	}
	if got := Q(2).Min(Q(3)); !got.Equal(Q(2)) {
		t.Errorf("Min = %s, want 2", got)
	}
}
