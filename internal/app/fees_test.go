package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/settlement-service/internal/domain"
)

func rateSchedule(rate string) *domain.FeeSchedule {
	return &domain.FeeSchedule{
		Mode: domain.FeeModeRate,
		Rate: decimal.RequireFromString(rate),
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent string
		want    int64
	}{
		{name: "one percent of ten thousand", amount: 10000, percent: "1", want: 100},
		{name: "rounds half away from zero", amount: 50, percent: "1", want: 1},
		{name: "rounds down below half", amount: 49, percent: "1", want: 0},
		{name: "fractional percent", amount: 200000, percent: "0.25", want: 500},
		{name: "zero percent", amount: 10000, percent: "0", want: 0},
		{name: "full percent", amount: 12345, percent: "100", want: 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentOf(tt.amount, decimal.RequireFromString(tt.percent))
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestComputeFeesRate(t *testing.T) {
	schedule := rateSchedule("1")
	schedule.FormCharge = 50

	fees, err := ComputeFees(FeeInput{Amount: 10000, Schedule: schedule})
	if err != nil {
		t.Fatalf("ComputeFees returned error: %v", err)
	}
	if fees.ServiceCharge != 100 {
		t.Fatalf("expected service charge 100, got %d", fees.ServiceCharge)
	}
	if fees.FormCharge != 50 {
		t.Fatalf("expected form charge 50, got %d", fees.FormCharge)
	}
	if fees.Total() != 150 {
		t.Fatalf("expected total 150, got %d", fees.Total())
	}
}

func TestComputeFeesRange(t *testing.T) {
	schedule := &domain.FeeSchedule{
		Mode: domain.FeeModeRange,
		Bands: []domain.FeeBand{
			{AmountFrom: 1, AmountTo: 50000, Charge: 200},
			{AmountFrom: 50001, AmountTo: 200000, Charge: 500},
		},
	}

	tests := []struct {
		name       string
		amount     int64
		wantCharge int64
		wantKind   domain.ErrorKind
	}{
		{name: "first band lower bound", amount: 1, wantCharge: 200},
		{name: "first band upper bound inclusive", amount: 50000, wantCharge: 200},
		{name: "second band", amount: 50001, wantCharge: 500},
		{name: "no matching band fails closed", amount: 200001, wantKind: domain.KindConfigurationMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, err := ComputeFees(FeeInput{Amount: tt.amount, Schedule: schedule})
			if tt.wantKind != "" {
				if domain.KindOf(err) != tt.wantKind {
					t.Fatalf("expected error kind %s, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeFees returned error: %v", err)
			}
			if fees.ServiceCharge != tt.wantCharge {
				t.Fatalf("expected charge %d, got %d", tt.wantCharge, fees.ServiceCharge)
			}
		})
	}
}

func TestComputeFeesMissingSchedule(t *testing.T) {
	_, err := ComputeFees(FeeInput{Amount: 10000})
	if domain.KindOf(err) != domain.KindConfigurationMissing {
		t.Fatalf("expected configuration_missing, got %v", err)
	}
}

func TestComputeFeesWithdrawalNotice(t *testing.T) {
	schedule := rateSchedule("1")
	schedule.FormCharge = 50
	schedule.NotificationPenaltyPercent = decimal.RequireFromString("2")

	t.Run("missing notice adds penalty on top of form charge", func(t *testing.T) {
		fees, err := ComputeFees(FeeInput{Amount: 10000, Schedule: schedule, NoticeRequired: true})
		if err != nil {
			t.Fatalf("ComputeFees returned error: %v", err)
		}
		if fees.NotificationPenalty != 200 {
			t.Fatalf("expected penalty 200, got %d", fees.NotificationPenalty)
		}
		if fees.FormCharge != 50 {
			t.Fatalf("expected form charge 50, got %d", fees.FormCharge)
		}
		if fees.Total() != 350 {
			t.Fatalf("expected total 350, got %d", fees.Total())
		}
	})

	t.Run("registered notice removes penalty and form charge", func(t *testing.T) {
		notice := &domain.WithdrawalNotification{Amount: 10000, Status: "pending", NotifiedAt: time.Now()}
		fees, err := ComputeFees(FeeInput{Amount: 10000, Schedule: schedule, NoticeRequired: true, Notice: notice})
		if err != nil {
			t.Fatalf("ComputeFees returned error: %v", err)
		}
		if fees.NotificationPenalty != 0 {
			t.Fatalf("expected no penalty, got %d", fees.NotificationPenalty)
		}
		if fees.FormCharge != 0 {
			t.Fatalf("expected no form charge, got %d", fees.FormCharge)
		}
		if fees.Total() != 100 {
			t.Fatalf("expected total 100, got %d", fees.Total())
		}
	})
}

func TestComputeFeesWaiver(t *testing.T) {
	schedule := rateSchedule("1")
	schedule.FormCharge = 50
	schedule.NotificationPenaltyPercent = decimal.RequireFromString("2")

	waiver := &domain.ChargeWaiver{Amount: 25, Status: "pending"}
	fees, err := ComputeFees(FeeInput{
		Amount:         10000,
		Schedule:       schedule,
		Waiver:         waiver,
		NoticeRequired: true,
	})
	if err != nil {
		t.Fatalf("ComputeFees returned error: %v", err)
	}
	if fees.ServiceCharge != 25 {
		t.Fatalf("expected waived service charge 25, got %d", fees.ServiceCharge)
	}
	if fees.FormCharge != 0 || fees.NotificationPenalty != 0 {
		t.Fatalf("expected ancillary charges zeroed, got form=%d penalty=%d", fees.FormCharge, fees.NotificationPenalty)
	}
}

func TestComputeFeesZeroWaiver(t *testing.T) {
	waiver := &domain.ChargeWaiver{Amount: 0, Status: "pending"}
	fees, err := ComputeFees(FeeInput{Amount: 10000, Schedule: rateSchedule("1"), Waiver: waiver})
	if err != nil {
		t.Fatalf("ComputeFees returned error: %v", err)
	}
	if fees.Total() != 0 {
		t.Fatalf("expected zero total under full waiver, got %d", fees.Total())
	}
}

func TestComputeFeesManualCharge(t *testing.T) {
	manual := func(v int64) *int64 { return &v }
	schedule := rateSchedule("1")

	tests := []struct {
		name     string
		manual   *int64
		isMinor  bool
		wantKind domain.ErrorKind
	}{
		{name: "exact manual charge accepted", manual: manual(100)},
		{name: "mismatched manual charge rejected", manual: manual(90), wantKind: domain.KindFeeMismatch},
		{name: "mismatch tolerated for minor accounts", manual: manual(90), isMinor: true},
		{name: "absent manual charge accepted", manual: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees, err := ComputeFees(FeeInput{
				Amount:       10000,
				Schedule:     schedule,
				ManualCharge: tt.manual,
				IsMinor:      tt.isMinor,
			})
			if tt.wantKind != "" {
				if domain.KindOf(err) != tt.wantKind {
					t.Fatalf("expected error kind %s, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeFees returned error: %v", err)
			}
			// The computed charge stands even when a matching manual value
			// was entered.
			if fees.ServiceCharge != 100 {
				t.Fatalf("expected service charge 100, got %d", fees.ServiceCharge)
			}
		})
	}
}
