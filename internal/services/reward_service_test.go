package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/utils"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rewardFixture struct {
	store  *memStore
	svc    *rewardService
	userID primitive.ObjectID
	now    time.Time
}

func newRewardFixture(points int64) *rewardFixture {
	s := newMemStore()
	f := &rewardFixture{store: s, userID: primitive.NewObjectID(), now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	s.profiles[f.userID] = models.Profile{ID: f.userID, FullName: "Ada", TotalPoints: points}

	f.svc = NewRewardService(fakeProfileRepo{s}, fakeVoucherRepo{s}, fakeRedemptionRepo{s}, fakeLedgerRepo{s}, s).(*rewardService)
	f.svc.now = fixedClock(f.now)
	return f
}

func (f *rewardFixture) addVoucher(name string, cost, remaining int64, active bool, expiresAt *time.Time) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.store.vouchers[id] = models.Voucher{
		ID: id, Name: name, CompanyName: "Acme", PointsRequired: cost,
		TotalAvailable: remaining, Remaining: remaining, IsActive: active, ExpiresAt: expiresAt,
	}
	return id
}

func TestListVouchers(t *testing.T) {
	f := newRewardFixture(300)
	soon := f.now.Add(3 * 24 * time.Hour)
	later := f.now.Add(30 * 24 * time.Hour)
	past := f.now.Add(-time.Hour)

	f.addVoucher("expensive", 500, 5, true, &later)
	f.addVoucher("cheap", 100, 5, true, &soon)
	f.addVoucher("exact", 300, 1, true, nil)
	f.addVoucher("inactive", 10, 5, false, nil)
	f.addVoucher("empty", 10, 0, true, nil)
	f.addVoucher("expired", 10, 5, true, &past)

	catalog, err := f.svc.ListVouchers(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("ListVouchers: %v", err)
	}
	if catalog.UserPoints != 300 {
		t.Errorf("user points = %d", catalog.UserPoints)
	}

	var names []string
	for _, o := range catalog.Vouchers {
		names = append(names, o.Name)
	}
	if fmt.Sprint(names) != "[cheap exact expensive]" {
		t.Fatalf("vouchers = %v, want [cheap exact expensive]", names)
	}

	cheap, exact, expensive := catalog.Vouchers[0], catalog.Vouchers[1], catalog.Vouchers[2]
	if !cheap.CanRedeem || !cheap.ExpiringSoon || cheap.BalanceAfterRedeem != 200 {
		t.Errorf("cheap = %+v", cheap)
	}
	if !exact.CanRedeem || exact.PointsShort != 0 || exact.ExpiringSoon {
		t.Errorf("exact = %+v", exact)
	}
	if expensive.CanRedeem || expensive.PointsShort != 200 || expensive.ExpiringSoon {
		t.Errorf("expensive = %+v", expensive)
	}
}

func TestRedeem(t *testing.T) {
	f := newRewardFixture(750)
	voucherID := f.addVoucher("coffee", 500, 3, true, nil)

	receipt, err := f.svc.Redeem(context.Background(), f.userID, voucherID)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}

	r := receipt.Redemption
	if !utils.RedemptionCodePattern.MatchString(r.RedemptionCode) {
		t.Errorf("code = %q", r.RedemptionCode)
	}
	if r.PointsSpent != 500 || r.Status != models.RedemptionStatusPending || r.UserID != f.userID {
		t.Errorf("redemption = %+v", r)
	}
	if receipt.RemainingBalance != 250 {
		t.Errorf("remaining balance = %d, want 250", receipt.RemainingBalance)
	}
	if got := f.store.profiles[f.userID].TotalPoints; got != 250 {
		t.Errorf("stored balance = %d, want 250", got)
	}
	if got := f.store.vouchers[voucherID].Remaining; got != 2 {
		t.Errorf("voucher remaining = %d, want 2", got)
	}
	if len(f.store.ledger) != 1 || f.store.ledger[0].Delta != -500 || f.store.ledger[0].Reason != models.PointReasonVoucherRedeemed {
		t.Errorf("ledger = %+v", f.store.ledger)
	}
}

func TestRedeemInsufficientPoints(t *testing.T) {
	f := newRewardFixture(499)
	voucherID := f.addVoucher("coffee", 500, 3, true, nil)

	_, err := f.svc.Redeem(context.Background(), f.userID, voucherID)
	if !apperrors.Is(err, apperrors.CodeInsufficientPoints) {
		t.Fatalf("got %v, want INSUFFICIENT_POINTS", err)
	}
	if f.store.vouchers[voucherID].Remaining != 3 || f.store.profiles[f.userID].TotalPoints != 499 {
		t.Error("state changed on refused redemption")
	}
}

func TestRedeemUnavailableVoucher(t *testing.T) {
	f := newRewardFixture(1000)
	past := f.now.Add(-time.Minute)
	tests := map[string]primitive.ObjectID{
		"inactive": f.addVoucher("a", 10, 5, false, nil),
		"empty":    f.addVoucher("b", 10, 0, true, nil),
		"expired":  f.addVoucher("c", 10, 5, true, &past),
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Redeem(context.Background(), f.userID, id)
			if !apperrors.Is(err, apperrors.CodeVoucherUnavailable) {
				t.Errorf("got %v, want VOUCHER_UNAVAILABLE", err)
			}
		})
	}

	if _, err := f.svc.Redeem(context.Background(), f.userID, primitive.NewObjectID()); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Errorf("unknown voucher: got %v", err)
	}
}

func TestRedeemRollsBackWhenBalanceChangedConcurrently(t *testing.T) {
	f := newRewardFixture(500)
	voucherID := f.addVoucher("coffee", 500, 3, true, nil)

	// The balance drops between the affordability check and the transaction.
	f.svc.newCode = func() (string, error) {
		p := f.store.profiles[f.userID]
		p.TotalPoints = 100
		f.store.profiles[f.userID] = p
		return utils.NewRedemptionCode()
	}

	_, err := f.svc.Redeem(context.Background(), f.userID, voucherID)
	if !apperrors.Is(err, apperrors.CodeInsufficientPoints) {
		t.Fatalf("got %v, want INSUFFICIENT_POINTS", err)
	}
	if got := f.store.vouchers[voucherID].Remaining; got != 3 {
		t.Errorf("voucher remaining = %d, want 3 after rollback", got)
	}
	if len(f.store.redemptions) != 0 || len(f.store.ledger) != 0 {
		t.Error("partial redemption committed")
	}
}

func TestRedeemRetriesOnCodeCollision(t *testing.T) {
	f := newRewardFixture(1000)
	voucherID := f.addVoucher("coffee", 100, 5, true, nil)
	f.store.usedCodes["ECO-AAAAAAAA"] = true

	codes := []string{"ECO-AAAAAAAA", "ECO-AAAAAAAA", "ECO-BBBBBBBB"}
	f.svc.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	receipt, err := f.svc.Redeem(context.Background(), f.userID, voucherID)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if receipt.Redemption.RedemptionCode != "ECO-BBBBBBBB" {
		t.Errorf("code = %s", receipt.Redemption.RedemptionCode)
	}
	if f.store.transactions != 3 {
		t.Errorf("transactions = %d, want 3", f.store.transactions)
	}
	if f.store.profiles[f.userID].TotalPoints != 900 || f.store.vouchers[voucherID].Remaining != 4 {
		t.Error("failed attempts were not rolled back")
	}
}

func TestRedeemGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newRewardFixture(1000)
	voucherID := f.addVoucher("coffee", 100, 5, true, nil)
	f.store.usedCodes["ECO-AAAAAAAA"] = true
	f.svc.newCode = func() (string, error) { return "ECO-AAAAAAAA", nil }

	_, err := f.svc.Redeem(context.Background(), f.userID, voucherID)
	if !apperrors.Is(err, apperrors.CodeInternal) {
		t.Fatalf("got %v, want INTERNAL", err)
	}
	if f.store.transactions != redeemAttempts {
		t.Errorf("transactions = %d, want %d", f.store.transactions, redeemAttempts)
	}
}

func TestConcurrentRedemptionsNeverOverspend(t *testing.T) {
	f := newRewardFixture(1000)
	voucherID := f.addVoucher("coffee", 300, 100, true, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Redeem(context.Background(), f.userID, voucherID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 3 {
		t.Errorf("succeeded = %d, want 3", succeeded)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if got := f.store.profiles[f.userID].TotalPoints; got != 100 {
		t.Errorf("balance = %d, want 100", got)
	}
	if got := f.store.vouchers[voucherID].Remaining; got != 97 {
		t.Errorf("remaining = %d, want 97", got)
	}
}

func TestRedemptionHistory(t *testing.T) {
	f := newRewardFixture(10000)
	voucherID := f.addVoucher("coffee", 100, 50, true, nil)

	for i := 0; i < 12; i++ {
		f.svc.now = fixedClock(f.now.Add(time.Duration(i) * time.Minute))
		if _, err := f.svc.Redeem(context.Background(), f.userID, voucherID); err != nil {
			t.Fatal(err)
		}
	}

	history, err := f.svc.History(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != redemptionHistorySize {
		t.Fatalf("len = %d, want %d", len(history), redemptionHistorySize)
	}
	if !history[0].RedeemedAt.After(history[1].RedeemedAt) {
		t.Error("history not newest first")
	}
	if history[0].Voucher == nil || history[0].Voucher.Name != "coffee" {
		t.Errorf("history not joined with voucher: %+v", history[0])
	}

	ledger, err := f.svc.PointHistory(context.Background(), f.userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ledger) != 12 {
		t.Errorf("ledger = %d rows, want 12", len(ledger))
	}
}
