// Package pdfgen renders proof-of-redemption documents. It is a
// write-only consumer of redemption data; ownership checks happen before
// anything reaches it.
package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rewardsy/rewards-backend/internal/models"
)

// RedemptionPDF renders a single redemption as a downloadable A4 PDF.
func RedemptionPDF(redemption *models.Redemption, username string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Redemption Voucher", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	voucherName := "Voucher"
	if redemption.Voucher != nil {
		voucherName = redemption.Voucher.Name
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, voucherName, "", 1, "C", false, 0, "")

	if redemption.Voucher != nil && redemption.Voucher.Description != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, redemption.Voucher.Description, "", "C", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Courier", "B", 24)
	pdf.CellFormat(0, 14, redemption.Code, "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Redeemed by", username},
		{"Quantity", fmt.Sprintf("%d", redemption.Quantity)},
		{"Points spent", fmt.Sprintf("%d", redemption.PointsSpent)},
		{"Date", redemption.RedemptionDate.Format("2 January 2006")},
		{"Status", redemption.Status},
	}
	if redemption.Voucher != nil {
		rows = append(rows, [2]string{"Valid until", redemption.Voucher.ValidUntil.Format("2 January 2006")})
	}
	for _, row := range rows {
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	if redemption.Voucher != nil && redemption.Voucher.TermsAndConditions != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Terms & Conditions", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, redemption.Voucher.TermsAndConditions, "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().Format(time.RFC1123)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
