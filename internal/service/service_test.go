package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gnwpos/backend/internal/cache"
	"gnwpos/backend/internal/domain"
	"gnwpos/backend/internal/store"
	"gnwpos/backend/internal/store/memory"
)

func newTestService() (*Service, *memory.Store) {
	repo := memory.NewSeeded()
	svc := New(repo, cache.NoopReportCache{}, time.Second)
	return svc, repo
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func cartLineFor(p *domain.Product, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductBrand: p.Brand,
		PriceCents:   p.PriceCents,
		Quantity:     qty,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
	}
}

func saleRequestFor(lines []domain.CartLine, discount int64, payment int64) domain.SaleRequest {
	total := int64(0)
	for _, line := range lines {
		total += line.PriceCents * int64(line.Quantity)
	}
	total -= discount
	if total < 0 {
		total = 0
	}
	return domain.SaleRequest{
		Products:           lines,
		PaymentMethod:      domain.PaymentCash,
		PaymentAmountCents: payment,
		TotalPriceCents:    total,
		DiscountCents:      discount,
		BranchID:           "branch-main",
		BranchName:         "Main Branch",
	}
}

func TestProcessSaleHappyPath(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	ram, _ := repo.GetProductByID(ctx, "prd-ram-01")
	req := saleRequestFor([]domain.CartLine{cartLineFor(ram, 2)}, 0, ram.PriceCents*2)

	result, err := svc.ProcessSale(ctx, req)
	if err != nil {
		t.Fatalf("process sale: %v", err)
	}
	if result.Sale.TotalPriceCents != ram.PriceCents*2 {
		t.Fatalf("total = %d, want %d", result.Sale.TotalPriceCents, ram.PriceCents*2)
	}
	if result.Sale.ChangeCents != 0 {
		t.Fatalf("change = %d, want 0", result.Sale.ChangeCents)
	}
	if result.Sale.TotalCostCents != ram.CostCents*2 {
		t.Fatalf("cost = %d, want %d", result.Sale.TotalCostCents, ram.CostCents*2)
	}

	after, _ := repo.GetProductByID(ctx, ram.ID)
	if after.Stock != ram.Stock-2 {
		t.Fatalf("stock = %d, want %d", after.Stock, ram.Stock-2)
	}

	// Line total invariant: sum(line totals) - discount == sale total.
	sum := int64(0)
	for _, line := range result.Lines {
		sum += line.TotalPriceCents
	}
	if sum-result.Sale.DiscountCents != result.Sale.TotalPriceCents {
		t.Fatalf("line sum %d - discount %d != total %d", sum, result.Sale.DiscountCents, result.Sale.TotalPriceCents)
	}

	logs, err := repo.ListInventoryLogs(ctx, "branch-main", 10)
	if err != nil {
		t.Fatalf("list inventory logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != domain.StockActionSale {
		t.Fatalf("expected one Sale inventory log, got %+v", logs)
	}
	if logs[0].OldStock != ram.Stock || logs[0].NewStock != ram.Stock-2 {
		t.Fatalf("log stocks = %d -> %d, want %d -> %d", logs[0].OldStock, logs[0].NewStock, ram.Stock, ram.Stock-2)
	}
}

func TestProcessSaleOverstockedLineRejectsWholeCart(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	mouse, _ := repo.GetProductByID(ctx, "prd-mouse-01")
	monitor, _ := repo.GetProductByID(ctx, "prd-mon-01")

	lines := []domain.CartLine{
		cartLineFor(mouse, 1),
		cartLineFor(monitor, monitor.Stock+2),
	}
	req := saleRequestFor(lines, 0, 999999999)

	_, err := svc.ProcessSale(ctx, req)
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	afterMouse, _ := repo.GetProductByID(ctx, mouse.ID)
	afterMonitor, _ := repo.GetProductByID(ctx, monitor.ID)
	if afterMouse.Stock != mouse.Stock || afterMonitor.Stock != monitor.Stock {
		t.Fatalf("stock changed on rejected sale: mouse %d monitor %d", afterMouse.Stock, afterMonitor.Stock)
	}
	sales, _ := repo.ListSales(ctx, "", 0)
	if len(sales) != 0 {
		t.Fatalf("expected no sale rows, got %d", len(sales))
	}
	logs, _ := repo.ListInventoryLogs(ctx, "", 10)
	if len(logs) != 0 {
		t.Fatalf("expected no inventory logs, got %d", len(logs))
	}
}

func TestProcessSalePaymentValidation(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	ssd, _ := repo.GetProductByID(ctx, "prd-ssd-01")

	// Underpayment is a validation error, not a stock error.
	req := saleRequestFor([]domain.CartLine{cartLineFor(ssd, 1)}, 0, ssd.PriceCents-1)
	_, err := svc.ProcessSale(ctx, req)
	if !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("expected ErrInvalidSale for underpayment, got %v", err)
	}
	after, _ := repo.GetProductByID(ctx, ssd.ID)
	if after.Stock != ssd.Stock {
		t.Fatalf("stock changed on rejected payment: %d", after.Stock)
	}

	// Exact payment is accepted with zero change.
	req = saleRequestFor([]domain.CartLine{cartLineFor(ssd, 1)}, 50000, ssd.PriceCents-50000)
	result, err := svc.ProcessSale(ctx, req)
	if err != nil {
		t.Fatalf("exact payment rejected: %v", err)
	}
	if result.Sale.ChangeCents != 0 {
		t.Fatalf("change = %d, want 0", result.Sale.ChangeCents)
	}

	// Zero or negative payment amounts are rejected outright.
	req = saleRequestFor([]domain.CartLine{cartLineFor(ssd, 1)}, 0, 0)
	if _, err := svc.ProcessSale(ctx, req); !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("expected ErrInvalidSale for zero payment, got %v", err)
	}
}

func TestProcessSaleBankTransferValidation(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	kbd, _ := repo.GetProductByID(ctx, "prd-kbd-01")

	req := saleRequestFor([]domain.CartLine{cartLineFor(kbd, 1)}, 0, kbd.PriceCents)
	req.PaymentMethod = domain.PaymentBankTransfer

	_, err := svc.ProcessSale(ctx, req)
	if !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("expected ErrInvalidSale without bank fields, got %v", err)
	}
	after, _ := repo.GetProductByID(ctx, kbd.ID)
	if after.Stock != kbd.Stock {
		t.Fatalf("stock mutated before validation: %d", after.Stock)
	}

	req.Bank = "BCA"
	req.ReferenceNumber = "TRX-1001"
	result, err := svc.ProcessSale(ctx, req)
	if err != nil {
		t.Fatalf("bank transfer sale: %v", err)
	}
	if result.Sale.Bank != "BCA" || result.Sale.ReferenceNumber != "TRX-1001" {
		t.Fatalf("bank fields not persisted: %+v", result.Sale)
	}
}

func TestProcessSaleTotalMismatchRejected(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	hdd, _ := repo.GetProductByID(ctx, "prd-hdd-01")

	req := saleRequestFor([]domain.CartLine{cartLineFor(hdd, 1)}, 0, hdd.PriceCents*2)
	req.BranchID = "branch-panakkukang"
	req.TotalPriceCents += 100

	if _, err := svc.ProcessSale(ctx, req); !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("expected ErrInvalidSale for total mismatch, got %v", err)
	}
}

func TestProcessSaleExampleScenario(t *testing.T) {
	svc, repo := newTestService()

	// cart = [{price: 100, qty: 2}], discount = 0, payment = 200.
	product, err := svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		BranchID:     "branch-main",
		Name:         "USB Cable",
		Brand:        "Generic",
		Stock:        10,
		PriceCents:   100,
		CostCents:    60,
		CategoryID:   "cat-accessory",
		CategoryName: "Accessories",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	req := saleRequestFor([]domain.CartLine{cartLineFor(product, 2)}, 0, 200)
	result, err := svc.ProcessSale(context.Background(), req)
	if err != nil {
		t.Fatalf("process sale: %v", err)
	}
	if result.Sale.TotalPriceCents != 200 || result.Sale.ChangeCents != 0 {
		t.Fatalf("total=%d change=%d, want 200 and 0", result.Sale.TotalPriceCents, result.Sale.ChangeCents)
	}
	after, _ := repo.GetProductByID(context.Background(), product.ID)
	if after.Stock != 8 {
		t.Fatalf("stock = %d, want 8", after.Stock)
	}
}

func TestProcessRefundRoundTrip(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	mouse, _ := repo.GetProductByID(ctx, "prd-mouse-01")
	saleResult, err := svc.ProcessSale(ctx, saleRequestFor([]domain.CartLine{cartLineFor(mouse, 3)}, 0, mouse.PriceCents*3))
	if err != nil {
		t.Fatalf("process sale: %v", err)
	}
	afterSale, _ := repo.GetProductByID(ctx, mouse.ID)

	refundReq := domain.RefundRequest{
		SaleID:             saleResult.Sale.ID,
		SoldProducts:       saleResult.Lines,
		PaymentAmountCents: saleResult.Sale.PaymentAmountCents,
		PaymentMethod:      saleResult.Sale.PaymentMethod,
		TotalPriceCents:    saleResult.Sale.TotalPriceCents,
		RefundReason:       "customer returned goods",
		BranchID:           saleResult.Sale.BranchID,
		BranchName:         saleResult.Sale.BranchName,
		OriginalCostCents:  saleResult.Sale.TotalCostCents,
		OriginalSaleDate:   saleResult.Sale.CreatedAt,
	}
	refundResult, err := svc.ProcessRefund(ctx, refundReq)
	if err != nil {
		t.Fatalf("process refund: %v", err)
	}
	if refundResult.Refund.ID != saleResult.Sale.ID {
		t.Fatalf("refund id = %s, want sale id %s", refundResult.Refund.ID, saleResult.Sale.ID)
	}

	afterRefund, _ := repo.GetProductByID(ctx, mouse.ID)
	if afterRefund.Stock != afterSale.Stock+3 {
		t.Fatalf("stock = %d, want %d", afterRefund.Stock, afterSale.Stock+3)
	}
	if _, err := svc.GetSaleDetails(ctx, saleResult.Sale.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("sale should be gone after refund, got %v", err)
	}
	if _, err := svc.ListSoldProducts(ctx, saleResult.Sale.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("sold products should be gone after refund, got %v", err)
	}
	if _, err := svc.GetRefund(ctx, saleResult.Sale.ID); err != nil {
		t.Fatalf("refund lookup: %v", err)
	}

	// Second refund must fail without double-crediting stock.
	if _, err := svc.ProcessRefund(ctx, refundReq); err == nil {
		t.Fatal("second refund should fail")
	}
	final, _ := repo.GetProductByID(ctx, mouse.ID)
	if final.Stock != afterRefund.Stock {
		t.Fatalf("stock double-credited: %d", final.Stock)
	}

	logs, _ := repo.ListInventoryLogs(ctx, "branch-main", 10)
	actions := map[string]int{}
	for _, entry := range logs {
		actions[entry.Action]++
	}
	if actions[domain.StockActionSale] != 1 || actions[domain.StockActionRefund] != 1 {
		t.Fatalf("unexpected inventory log actions: %v", actions)
	}
}

func TestProcessRefundRequiresReason(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ProcessRefund(context.Background(), domain.RefundRequest{
		SaleID:       "sale-x",
		SoldProducts: []domain.SoldProduct{{ProductID: "prd-ssd-01", Quantity: 1}},
		RefundReason: "   ",
	})
	if !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("expected ErrInvalidSale for blank reason, got %v", err)
	}
}

func TestRestockAndVoidStock(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	psu, _ := repo.GetProductByID(ctx, "prd-psu-01")
	movement, err := svc.RestockProduct(ctx, psu.ID, 7)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if movement.NewStock != psu.Stock+7 {
		t.Fatalf("restock new stock = %d, want %d", movement.NewStock, psu.Stock+7)
	}

	if _, err := svc.VoidStock(ctx, psu.ID, movement.NewStock+1); !errors.Is(err, store.ErrInvalidVoidAmount) {
		t.Fatalf("expected ErrInvalidVoidAmount, got %v", err)
	}
	if _, err := svc.VoidStock(ctx, psu.ID, 2); err != nil {
		t.Fatalf("void: %v", err)
	}

	logs, _ := repo.ListInventoryLogs(ctx, "branch-panakkukang", 10)
	if len(logs) != 2 {
		t.Fatalf("expected 2 inventory logs, got %d", len(logs))
	}
	// Newest first.
	if logs[0].Action != domain.StockActionVoid || logs[1].Action != domain.StockActionRestock {
		t.Fatalf("unexpected log order: %s, %s", logs[0].Action, logs[1].Action)
	}
}

func TestProductManagementRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "mainbranch", Role: domain.RoleBranch})

	_, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		BranchID: "branch-main", Name: "X", PriceCents: 100, CategoryID: "cat-x",
	})
	if err == nil {
		t.Fatal("branch role should not create products")
	}
	if _, err := svc.SetProductArchived(ctx, "prd-ssd-01", true); err == nil {
		t.Fatal("branch role should not archive products")
	}
}

func TestArchivedProductNotSellable(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	ssd, _ := repo.GetProductByID(ctx, "prd-ssd-01")
	if _, err := svc.SetProductArchived(adminCtx(), ssd.ID, true); err != nil {
		t.Fatalf("archive: %v", err)
	}

	_, err := svc.ProcessSale(ctx, saleRequestFor([]domain.CartLine{cartLineFor(ssd, 1)}, 0, ssd.PriceCents))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for archived product, got %v", err)
	}
}

func TestTodaySalesReportReflectsSalesAndRefunds(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	ram, _ := repo.GetProductByID(ctx, "prd-ram-01")
	result, err := svc.ProcessSale(ctx, saleRequestFor([]domain.CartLine{cartLineFor(ram, 1)}, 0, ram.PriceCents))
	if err != nil {
		t.Fatalf("process sale: %v", err)
	}

	report, err := svc.TodaySales(ctx, "branch-main")
	if err != nil {
		t.Fatalf("today sales: %v", err)
	}
	if report.Transactions != 1 || report.TotalSalesCents != ram.PriceCents {
		t.Fatalf("report = %+v", report)
	}

	_, err = svc.ProcessRefund(ctx, domain.RefundRequest{
		SaleID:       result.Sale.ID,
		SoldProducts: result.Lines,
		RefundReason: "wrong item",
		BranchID:     "branch-main",
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}

	report, err = svc.TodaySales(ctx, "branch-main")
	if err != nil {
		t.Fatalf("today sales after refund: %v", err)
	}
	if report.Transactions != 0 || report.TotalSalesCents != 0 {
		t.Fatalf("report after refund = %+v", report)
	}
}
