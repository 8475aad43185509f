package printer

import (
	"fmt"
	"strings"
	"time"

	"gnwpos/backend/internal/domain"
)

// Receipts target 58mm thermal paper, 32 characters per line.
const maxWidth = 32

type ReceiptLine struct {
	Name       string
	PriceCents int64
	Quantity   int
}

type Receipt struct {
	BusinessName       string
	BranchName         string
	AddressLines       []string
	Timestamp          time.Time
	CustomerName       string
	PaymentMethod      string
	Bank               string
	ReferenceNumber    string
	Lines              []ReceiptLine
	PaymentAmountCents int64
	TotalPriceCents    int64
	DiscountCents      int64
}

// FromSale builds a printable receipt from a committed sale. branch may be
// nil when the branch record is gone; the header then omits the address.
func FromSale(businessName string, sale domain.Sale, lines []domain.SoldProduct, branch *domain.Branch) Receipt {
	r := Receipt{
		BusinessName:       businessName,
		BranchName:         sale.BranchName,
		Timestamp:          sale.CreatedAt,
		CustomerName:       sale.CustomerName,
		PaymentMethod:      sale.PaymentMethod,
		Bank:               sale.Bank,
		ReferenceNumber:    sale.ReferenceNumber,
		PaymentAmountCents: sale.PaymentAmountCents,
		TotalPriceCents:    sale.TotalPriceCents,
		DiscountCents:      sale.DiscountCents,
	}
	if branch != nil {
		r.AddressLines = branch.AddressLines()
	}
	for _, line := range lines {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:       line.ProductName,
			PriceCents: line.PriceCents,
			Quantity:   line.Quantity,
		})
	}
	return r
}

func (r Receipt) Render() string {
	var b strings.Builder
	divider := strings.Repeat("-", maxWidth)

	b.WriteString(center(r.BusinessName) + "\n")
	if r.BranchName != "" {
		b.WriteString(center(r.BranchName) + "\n")
	}
	for _, line := range r.AddressLines {
		b.WriteString(center(line) + "\n")
	}
	b.WriteString(center(r.Timestamp.Format("02 Jan 2006 15:04")) + "\n")
	b.WriteString(divider + "\n")

	if r.CustomerName != "" {
		b.WriteString(twoCol("Customer", r.CustomerName) + "\n")
	}
	b.WriteString(twoCol("Payment", r.PaymentMethod) + "\n")
	if r.PaymentMethod == domain.PaymentBankTransfer {
		b.WriteString(twoCol("Bank", r.Bank) + "\n")
		b.WriteString(twoCol("Ref No", r.ReferenceNumber) + "\n")
	}
	b.WriteString(divider + "\n")

	for _, line := range r.Lines {
		b.WriteString(clip(line.Name) + "\n")
		qtyPrice := fmt.Sprintf("%s x%d", formatMoney(line.PriceCents), line.Quantity)
		subtotal := formatMoney(line.PriceCents * int64(line.Quantity))
		b.WriteString(twoCol(qtyPrice, subtotal) + "\n")
	}
	b.WriteString(divider + "\n")

	if r.DiscountCents > 0 {
		b.WriteString(twoCol("Discount", formatMoney(r.DiscountCents)) + "\n")
	}
	b.WriteString(twoCol("Total", formatMoney(r.TotalPriceCents)) + "\n")
	b.WriteString(twoCol("Payment", formatMoney(r.PaymentAmountCents)) + "\n")
	b.WriteString(twoCol("Change", formatMoney(r.PaymentAmountCents-r.TotalPriceCents)) + "\n")
	b.WriteString(divider + "\n")
	b.WriteString(center("Thank you for your purchase!") + "\n")

	return b.String()
}

func center(text string) string {
	text = clip(text)
	padding := (maxWidth - len(text)) / 2
	if padding < 1 {
		return text
	}
	return strings.Repeat(" ", padding) + text
}

func twoCol(left string, right string) string {
	gap := maxWidth - len(left) - len(right)
	if gap < 1 {
		// Left column yields; the amount must stay intact.
		keep := maxWidth - len(right) - 1
		if keep < 1 {
			return clip(right)
		}
		left = left[:keep]
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func clip(text string) string {
	if len(text) > maxWidth {
		return text[:maxWidth]
	}
	return text
}

// formatMoney renders cents as a grouped amount, e.g. 1234550 -> "12,345.50".
func formatMoney(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	units := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", units)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	out := fmt.Sprintf("%s.%02d", grouped.String(), frac)
	if negative {
		return "-" + out
	}
	return out
}
