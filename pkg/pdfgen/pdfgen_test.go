package pdfgen

import (
	"bytes"
	"testing"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
)

func TestRedemptionPDF(t *testing.T) {
	redemption := &models.Redemption{
		Quantity:       2,
		PointsSpent:    500,
		Code:           "AB12CD34",
		RedemptionDate: time.Now(),
		Status:         models.StatusCompleted,
		Voucher: &models.Voucher{
			Name:               "Coffee Shop Voucher",
			Description:        "A free coffee",
			Points:             250,
			ValidUntil:         time.Now().AddDate(1, 0, 0),
			TermsAndConditions: "One per visit.",
		},
	}

	out, err := RedemptionPDF(redemption, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output should be a PDF document")
	}
	if len(out) < 500 {
		t.Errorf("document suspiciously small: %d bytes", len(out))
	}
}

func TestRedemptionPDFWithoutVoucher(t *testing.T) {
	redemption := &models.Redemption{
		Quantity:       1,
		PointsSpent:    100,
		Code:           "ZZ99YY88",
		RedemptionDate: time.Now(),
		Status:         models.StatusCompleted,
	}
	out, err := RedemptionPDF(redemption, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output should be a PDF document")
	}
}
