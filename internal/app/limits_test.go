package app

import (
	"testing"

	"github.com/corebank/settlement-service/internal/domain"
)

func limitProduct() *domain.Product {
	return &domain.Product{
		Name:                   "Standard Savings",
		AllowDirectDeposit:     false,
		AllowInterBranch:       false,
		MinimumBalancePhysical: 1000,
		MinimumBalanceMoral:    5000,
		Limits: []domain.OperationLimit{
			{Kind: domain.OpDeposit, MinAmount: 100, MaxAmount: 1000000},
			{Kind: domain.OpWithdrawal, MinAmount: 100, MaxAmount: 500000},
		},
	}
}

func TestValidateLimits(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		kind          domain.OperationKind
		interBranch   bool
		directDeposit bool
		wantKind      domain.ErrorKind
	}{
		{name: "amount inside range", amount: 10000, kind: domain.OpDeposit},
		{name: "amount at lower bound", amount: 100, kind: domain.OpDeposit},
		{name: "amount at upper bound", amount: 1000000, kind: domain.OpDeposit},
		{name: "amount below minimum", amount: 99, kind: domain.OpDeposit, wantKind: domain.KindValidationFailed},
		{name: "amount above maximum", amount: 1000001, kind: domain.OpDeposit, wantKind: domain.KindValidationFailed},
		{name: "missing limit table fails closed", amount: 10000, kind: domain.OpTransferLocal, wantKind: domain.KindConfigurationMissing},
		{name: "direct deposit disallowed by product", amount: 10000, kind: domain.OpDeposit, directDeposit: true, wantKind: domain.KindValidationFailed},
		{name: "inter-branch disallowed by product", amount: 10000, kind: domain.OpWithdrawal, interBranch: true, wantKind: domain.KindValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLimits(LimitInput{
				Amount:        tt.amount,
				Kind:          tt.kind,
				Product:       limitProduct(),
				InterBranch:   tt.interBranch,
				DirectDeposit: tt.directDeposit,
			})
			if domain.KindOf(err) != tt.wantKind {
				t.Fatalf("expected error kind %q, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestValidateDebitFloor(t *testing.T) {
	tests := []struct {
		name      string
		legalForm domain.LegalForm
		balance   int64
		blocked   int64
		amount    int64
		charges   int64
		wantKind  domain.ErrorKind
	}{
		{name: "stays above physical floor", legalForm: domain.LegalFormPhysical, balance: 12000, amount: 10000, charges: 100},
		{name: "lands exactly on the floor", legalForm: domain.LegalFormPhysical, balance: 11100, amount: 10000, charges: 100},
		{name: "breaches the floor by one unit", legalForm: domain.LegalFormPhysical, balance: 11099, amount: 10000, charges: 100, wantKind: domain.KindInsufficientFunds},
		{name: "blocked funds count against the floor", legalForm: domain.LegalFormPhysical, balance: 12000, blocked: 1000, amount: 10000, charges: 100, wantKind: domain.KindInsufficientFunds},
		{name: "moral floor is higher", legalForm: domain.LegalFormMoral, balance: 12000, amount: 10000, charges: 100, wantKind: domain.KindInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.Account{
				AccountNumber: "0001-000123",
				LegalForm:     tt.legalForm,
				Balance:       tt.balance,
				BlockedAmount: tt.blocked,
			}
			err := ValidateDebitFloor(account, limitProduct(), tt.amount, tt.charges)
			if domain.KindOf(err) != tt.wantKind {
				t.Fatalf("expected error kind %q, got %v", tt.wantKind, err)
			}
		})
	}
}
