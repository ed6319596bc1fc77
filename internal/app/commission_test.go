package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/corebank/settlement-service/internal/domain"
)

func TestSplitCommission(t *testing.T) {
	shares := domain.CommissionShares{
		DestinationBranchPercent: decimal.RequireFromString("30"),
		HeadOfficePercent:        decimal.RequireFromString("20"),
		NetworkPercent:           decimal.RequireFromString("10"),
	}

	tests := []struct {
		name        string
		totalCharge int64
		interBranch bool
		want        domain.CommissionSplit
	}{
		{
			name:        "local operation attributes everything to the source branch",
			totalCharge: 500,
			interBranch: false,
			want:        domain.CommissionSplit{SourceBranch: 500},
		},
		{
			name:        "inter-branch split with residual to source",
			totalCharge: 1000,
			interBranch: true,
			want: domain.CommissionSplit{
				SourceBranch:      400,
				DestinationBranch: 300,
				HeadOffice:        200,
				Network:           100,
			},
		},
		{
			name:        "rounding residual lands on the source branch",
			totalCharge: 101,
			interBranch: true,
			want: domain.CommissionSplit{
				SourceBranch:      41,
				DestinationBranch: 30,
				HeadOffice:        20,
				Network:           10,
			},
		},
		{
			name:        "zero charge splits to nothing",
			totalCharge: 0,
			interBranch: true,
			want:        domain.CommissionSplit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitCommission(tt.totalCharge, shares, tt.interBranch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			if got.Total() != tt.totalCharge {
				t.Fatalf("shares sum to %d, want %d", got.Total(), tt.totalCharge)
			}
		})
	}
}

func TestSplitCommissionNeverLosesUnits(t *testing.T) {
	// Awkward percentages that round every share.
	shares := domain.CommissionShares{
		DestinationBranchPercent: decimal.RequireFromString("33.33"),
		HeadOfficePercent:        decimal.RequireFromString("33.33"),
		NetworkPercent:           decimal.RequireFromString("16.67"),
	}
	for _, charge := range []int64{1, 3, 7, 99, 101, 12345, 999999} {
		split, err := SplitCommission(charge, shares, true)
		if err != nil {
			t.Fatalf("charge %d: unexpected error: %v", charge, err)
		}
		if split.Total() != charge {
			t.Fatalf("charge %d: shares sum to %d", charge, split.Total())
		}
	}
}

func TestSplitCommissionRejectsOversubscribedShares(t *testing.T) {
	shares := domain.CommissionShares{
		DestinationBranchPercent: decimal.RequireFromString("60"),
		HeadOfficePercent:        decimal.RequireFromString("30"),
		NetworkPercent:           decimal.RequireFromString("20"),
	}
	_, err := SplitCommission(1000, shares, true)
	if err == nil {
		t.Fatal("expected an error for shares summing above 100 percent")
	}
	if domain.KindOf(err) != domain.KindConfigurationMissing {
		t.Fatalf("expected configuration_missing, got %q (%v)", domain.KindOf(err), err)
	}

	// Local operations never touch the shares, so the same product still
	// settles local charges.
	split, err := SplitCommission(1000, shares, false)
	if err != nil {
		t.Fatalf("unexpected error on local split: %v", err)
	}
	if split.SourceBranch != 1000 {
		t.Fatalf("expected full charge to source branch, got %+v", split)
	}
}
