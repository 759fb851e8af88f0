package types

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "zero", input: "0", want: "0"},
		{name: "small", input: "12345", want: "12345"},
		{name: "beyond uint64", input: "340282366920938463463374607431768211456", want: "340282366920938463463374607431768211456"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "12x4", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "float", input: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(1000)
	b := NewAmount(300)

	if got := a.Add(b); !got.Equal(NewAmount(1300)) {
		t.Errorf("Add = %s, want 1300", got)
	}
	if got := a.Sub(b); !got.Equal(NewAmount(700)) {
		t.Errorf("Sub = %s, want 700", got)
	}
	if got := a.Mul(3); !got.Equal(NewAmount(3000)) {
		t.Errorf("Mul = %s, want 3000", got)
	}
	if got := a.Div(3); !got.Equal(NewAmount(333)) {
		t.Errorf("Div = %s, want 333 (truncated)", got)
	}
}

func TestAmountSubUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on underflow")
		}
	}()
	NewAmount(1).Sub(NewAmount(2))
}

func TestApplyBasisPoints(t *testing.T) {
	tests := []struct {
		name   string
		amount uint64
		bps    uint32
		want   uint64
	}{
		{name: "five percent", amount: 10_000, bps: 500, want: 500},
		{name: "hundred percent", amount: 10_000, bps: 10_000, want: 10_000},
		{name: "truncates toward zero", amount: 999, bps: 500, want: 49},
		{name: "zero bps", amount: 10_000, bps: 0, want: 0},
		{name: "zero amount", amount: 0, bps: 500, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAmount(tt.amount).ApplyBasisPoints(tt.bps)
			if !got.Equal(NewAmount(tt.want)) {
				t.Errorf("ApplyBasisPoints(%d, %d) = %s, want %d", tt.amount, tt.bps, got, tt.want)
			}
		})
	}
}

func TestAmountZeroValue(t *testing.T) {
	var a Amount
	if !a.IsZero() {
		t.Error("zero value should be zero")
	}
	if a.String() != "0" {
		t.Errorf("zero value String = %q, want 0", a.String())
	}
	if got := a.Add(NewAmount(5)); !got.Equal(NewAmount(5)) {
		t.Errorf("zero value Add = %s, want 5", got)
	}
}

func TestAmountClamp(t *testing.T) {
	lo, hi := NewAmount(100), NewAmount(200)

	if got := NewAmount(50).Clamp(lo, hi); !got.Equal(lo) {
		t.Errorf("Clamp below = %s, want 100", got)
	}
	if got := NewAmount(150).Clamp(lo, hi); !got.Equal(NewAmount(150)) {
		t.Errorf("Clamp inside = %s, want 150", got)
	}
	if got := NewAmount(250).Clamp(lo, hi); !got.Equal(hi) {
		t.Errorf("Clamp above = %s, want 200", got)
	}
}

func TestAmountJSONRoundTrip(t *testing.T) {
	orig := MustParseAmount("123456789012345678901234567890")

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}

	var got Amount
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(orig) {
		t.Errorf("round trip = %s, want %s", got, orig)
	}
}

func TestSumAmounts(t *testing.T) {
	got := SumAmounts(NewAmount(1), NewAmount(2), NewAmount(3))
	if !got.Equal(NewAmount(6)) {
		t.Errorf("SumAmounts = %s, want 6", got)
	}
	if !SumAmounts().IsZero() {
		t.Error("empty sum should be zero")
	}
}
