package printer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gnwpos/backend/internal/domain"
)

type captureDevice struct {
	buf     strings.Builder
	openErr error
	failAt  int
}

type captureWriter struct {
	dev *captureDevice
}

func (d *captureDevice) Open(_ context.Context) (io.WriteCloser, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return &captureWriter{dev: d}, nil
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if w.dev.failAt > 0 && w.dev.buf.Len()+len(p) > w.dev.failAt {
		return 0, errors.New("paper jam")
	}
	return w.dev.buf.Write(p)
}

func (w *captureWriter) Close() error { return nil }

func sampleReceipt() Receipt {
	return Receipt{
		BusinessName:  "GNW Computer Center",
		BranchName:    "Main Branch",
		AddressLines:  []string{"Jl. Veteran No. 21", "Makassar, Sulawesi Selatan 90141"},
		Timestamp:     time.Date(2025, 11, 12, 14, 30, 0, 0, time.UTC),
		PaymentMethod: domain.PaymentCash,
		Lines: []ReceiptLine{
			{Name: "Wireless Mouse", PriceCents: 1800000, Quantity: 2},
		},
		PaymentAmountCents: 4000000,
		TotalPriceCents:    3600000,
	}
}

func TestRenderWidthAndContent(t *testing.T) {
	text := sampleReceipt().Render()

	for _, line := range strings.Split(text, "\n") {
		if len(line) > maxWidth {
			t.Fatalf("line exceeds %d columns: %q", maxWidth, line)
		}
	}
	for _, want := range []string{"GNW Computer Center", "Wireless Mouse", "18,000.00 x2", "36,000.00", "Change"} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt missing %q:\n%s", want, text)
		}
	}

	// Change = payment - total.
	if !strings.Contains(text, "4,000.00") {
		t.Fatalf("expected change of 4,000.00 in receipt:\n%s", text)
	}
}

func TestRenderBankTransferBlock(t *testing.T) {
	r := sampleReceipt()
	r.PaymentMethod = domain.PaymentBankTransfer
	r.Bank = "BCA"
	r.ReferenceNumber = "TRX-9912"
	text := r.Render()

	if !strings.Contains(text, "BCA") || !strings.Contains(text, "TRX-9912") {
		t.Fatalf("bank transfer block missing:\n%s", text)
	}

	cash := sampleReceipt().Render()
	if strings.Contains(cash, "Ref No") {
		t.Fatalf("cash receipt should not carry a reference block:\n%s", cash)
	}
}

func TestPrintWritesEscposFrame(t *testing.T) {
	dev := &captureDevice{}
	p := New(dev)

	if err := p.Print(context.Background(), sampleReceipt()); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := dev.buf.String()
	if !strings.HasPrefix(out, "\x1b\x40") {
		t.Fatalf("frame missing initialize sequence")
	}
	if !strings.HasSuffix(out, "\x1d\x56\x41\x10") {
		t.Fatalf("frame missing cut sequence")
	}
}

func TestPrintUnavailableDevice(t *testing.T) {
	dev := &captureDevice{openErr: ErrUnavailable}
	err := New(dev).Print(context.Background(), sampleReceipt())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	err = New(nil).Print(context.Background(), sampleReceipt())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for missing device, got %v", err)
	}
}

func TestPrintMidPrintFailure(t *testing.T) {
	dev := &captureDevice{failAt: 10}
	err := New(dev).Print(context.Background(), sampleReceipt())
	if err == nil {
		t.Fatal("expected mid-print error")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("mid-print failure must not be reported as unavailable: %v", err)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{150, "1.50"},
		{1234550, "12,345.50"},
		{100000000, "1,000,000.00"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := formatMoney(tc.cents); got != tc.want {
			t.Errorf("formatMoney(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
