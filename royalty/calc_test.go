package royalty

import (
	"errors"
	"testing"

	"github.com/veralith/provenance/types"
)

func amt(v uint64) types.Amount { return types.NewAmount(v) }

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		setting  Setting
		usage    uint64
		expected uint64
	}{
		{
			"simple share",
			Setting{Model: ModelPercentage, BasisPoints: 500},
			10_000, 500,
		},
		{
			"truncates toward zero",
			Setting{Model: ModelPercentage, BasisPoints: 333},
			1_000, 33, // 1000*333/10000 = 33.3
		},
		{
			"min amount floor",
			Setting{Model: ModelPercentage, BasisPoints: 100, MinAmount: amt(50)},
			100, 50, // raw 1, floored to 50
		},
		{
			"max amount cap",
			Setting{Model: ModelPercentage, BasisPoints: 1000, MaxAmount: amt(75)},
			10_000, 75, // raw 1000, capped
		},
		{
			"zero max means no upper bound",
			Setting{Model: ModelPercentage, BasisPoints: 1000},
			1_000_000, 100_000,
		},
		{
			"zero usage",
			Setting{Model: ModelPercentage, BasisPoints: 9999},
			0, 0,
		},
		{
			"full basis points",
			Setting{Model: ModelPercentage, BasisPoints: 10_000},
			777, 777,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(&tt.setting, amt(tt.usage))
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if !got.Equal(amt(tt.expected)) {
				t.Errorf("got %s, want %d", got, tt.expected)
			}
		})
	}
}

// Percentage royalties must be monotonic non-decreasing in usage up to the
// cap, then constant.
func TestCalculatePercentageMonotonic(t *testing.T) {
	setting := Setting{
		Model:       ModelPercentage,
		BasisPoints: 750,
		MinAmount:   amt(10),
		MaxAmount:   amt(5_000),
	}

	prev := types.ZeroAmount()
	for usage := uint64(0); usage <= 200_000; usage += 1_337 {
		got, err := Calculate(&setting, amt(usage))
		if err != nil {
			t.Fatalf("Calculate(%d) failed: %v", usage, err)
		}
		if got.LessThan(prev) {
			t.Fatalf("royalty decreased at usage %d: %s < %s", usage, got, prev)
		}
		if got.GreaterThan(amt(5_000)) {
			t.Fatalf("royalty exceeded cap at usage %d: %s", usage, got)
		}
		prev = got
	}

	// Past the cap the result is constant.
	atCap, _ := Calculate(&setting, amt(10_000_000))
	if !atCap.Equal(amt(5_000)) {
		t.Errorf("expected constant %d past cap, got %s", 5_000, atCap)
	}
}

func TestCalculateTiered(t *testing.T) {
	setting := Setting{
		Model: ModelTiered,
		Thresholds: []types.Amount{
			amt(100), amt(1_000), amt(10_000),
		},
		Rates: []uint32{500, 750, 1000},
	}

	tests := []struct {
		name     string
		usage    uint64
		expected uint64
	}{
		{"below all thresholds uses first rate", 50, 2},             // 50*500/10000
		{"at first threshold", 100, 5},                              // 100*500/10000
		{"inside second bracket", 1_000, 75},                        // 1000*750/10000
		{"just under top threshold", 9_999, 749},                    // 9999*750/10000
		{"at top threshold uses top rate", 10_000, 1_000},           // 10000*1000/10000
		{"far beyond top threshold stays top rate", 1_000_000, 100_000},
		{"zero usage", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(&setting, amt(tt.usage))
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if !got.Equal(amt(tt.expected)) {
				t.Errorf("usage %d: got %s, want %d", tt.usage, got, tt.expected)
			}
		})
	}
}

func TestCalculateFixed(t *testing.T) {
	setting := Setting{Model: ModelFixed, Amount: amt(12_345)}

	for _, usage := range []uint64{0, 1, 999, 1_000_000_000} {
		got, err := Calculate(&setting, amt(usage))
		if err != nil {
			t.Fatalf("Calculate(%d) failed: %v", usage, err)
		}
		if !got.Equal(amt(12_345)) {
			t.Errorf("usage %d: got %s, want 12345", usage, got)
		}
	}
}

func TestCalculateArbitraryPrecision(t *testing.T) {
	// Values beyond uint64 range must not overflow.
	usage := types.MustParseAmount("340282366920938463463374607431768211456") // 2^128
	setting := Setting{Model: ModelPercentage, BasisPoints: 2_500}

	got, err := Calculate(&setting, usage)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	want := types.MustParseAmount("85070591730234615865843651857942052864") // 2^128 / 4
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestValidateRejectsMalformedSettings(t *testing.T) {
	tests := []struct {
		name    string
		setting Setting
	}{
		{"unknown model", Setting{Model: "exotic"}},
		{"basis points over 10000", Setting{Model: ModelPercentage, BasisPoints: 10_001}},
		{"max below min", Setting{Model: ModelPercentage, BasisPoints: 100, MinAmount: amt(10), MaxAmount: amt(5)}},
		{"empty tiers", Setting{Model: ModelTiered}},
		{"length mismatch", Setting{
			Model:      ModelTiered,
			Thresholds: []types.Amount{amt(10), amt(20)},
			Rates:      []uint32{100},
		}},
		{"non-increasing thresholds", Setting{
			Model:      ModelTiered,
			Thresholds: []types.Amount{amt(10), amt(10)},
			Rates:      []uint32{100, 200},
		}},
		{"decreasing thresholds", Setting{
			Model:      ModelTiered,
			Thresholds: []types.Amount{amt(100), amt(50)},
			Rates:      []uint32{100, 200},
		}},
		{"tier rate over 10000", Setting{
			Model:      ModelTiered,
			Thresholds: []types.Amount{amt(10)},
			Rates:      []uint32{20_000},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.setting.Validate(); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("expected ErrInvalidModel, got %v", err)
			}
			if _, err := Calculate(&tt.setting, amt(100)); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Calculate: expected ErrInvalidModel, got %v", err)
			}
		})
	}
}

func TestTemplates(t *testing.T) {
	for _, name := range []string{"standard", "commercial", "tiered", "fixed"} {
		tpl, err := TemplateByName(name)
		if err != nil {
			t.Fatalf("TemplateByName(%q) failed: %v", name, err)
		}

		s := tpl.Apply(42, "0xabc")
		if s.ContentID != 42 || s.Recipient != "0xabc" {
			t.Errorf("template %q not bound: %+v", name, s)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("template %q setting invalid: %v", name, err)
		}
	}

	if _, err := TemplateByName("imaginary"); err == nil {
		t.Error("expected error for unknown template")
	}
}
