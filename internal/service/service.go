package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gnwpos/backend/internal/cache"
	"gnwpos/backend/internal/domain"
	"gnwpos/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo      store.Repository
	reports   cache.ReportCache
	reportTTL time.Duration
}

func New(repo store.Repository, reports cache.ReportCache, reportTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if reportTTL <= 0 {
		reportTTL = 30 * time.Second
	}
	return &Service{
		repo:      repo,
		reports:   reports,
		reportTTL: reportTTL,
	}
}

// ProcessSale validates the cart and payment, then commits the sale through
// the repository as one atomic unit. Validation happens strictly before any
// mutation; a rejected sale leaves stock and sales untouched.
func (s *Service) ProcessSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleResult, error) {
	if len(req.Products) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", store.ErrInvalidSale)
	}
	if req.BranchID == "" {
		return nil, fmt.Errorf("%w: branch is required", store.ErrInvalidSale)
	}
	if req.PaymentAmountCents <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", store.ErrInvalidSale)
	}
	switch req.PaymentMethod {
	case domain.PaymentCash:
	case domain.PaymentBankTransfer:
		if strings.TrimSpace(req.Bank) == "" || strings.TrimSpace(req.ReferenceNumber) == "" {
			return nil, fmt.Errorf("%w: bank and reference number are required for bank transfer", store.ErrInvalidSale)
		}
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", store.ErrInvalidSale, req.PaymentMethod)
	}

	lines := make([]domain.SoldProduct, 0, len(req.Products))
	lineTotal := int64(0)
	for _, item := range req.Products {
		if item.ProductID == "" || item.Quantity < 1 {
			return nil, fmt.Errorf("%w: each cart line needs a product and a positive quantity", store.ErrInvalidSale)
		}
		if item.PriceCents < 0 {
			return nil, fmt.Errorf("%w: negative unit price", store.ErrInvalidSale)
		}
		lineTotal += item.PriceCents * int64(item.Quantity)
		lines = append(lines, domain.SoldProduct{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductBrand: item.ProductBrand,
			PriceCents:   item.PriceCents,
			Quantity:     item.Quantity,
			CategoryID:   item.CategoryID,
			CategoryName: item.CategoryName,
		})
	}

	if req.DiscountCents < 0 {
		return nil, fmt.Errorf("%w: negative discount", store.ErrInvalidSale)
	}
	derivedTotal := lineTotal - req.DiscountCents
	if derivedTotal < 0 {
		derivedTotal = 0
	}
	// The client sends its computed total; it must agree with the one derived
	// from the cart lines.
	if req.TotalPriceCents != derivedTotal {
		return nil, fmt.Errorf("%w: total price mismatch", store.ErrInvalidSale)
	}
	if req.PaymentAmountCents < derivedTotal {
		return nil, fmt.Errorf("%w: insufficient payment amount", store.ErrInvalidSale)
	}

	sale := domain.Sale{
		PaymentAmountCents: req.PaymentAmountCents,
		PaymentMethod:      req.PaymentMethod,
		CustomerName:       strings.TrimSpace(req.CustomerName),
		Bank:               strings.TrimSpace(req.Bank),
		ReferenceNumber:    strings.TrimSpace(req.ReferenceNumber),
		BranchID:           req.BranchID,
		BranchName:         req.BranchName,
		DiscountCents:      req.DiscountCents,
	}

	result, err := s.repo.CreateSale(ctx, sale, lines)
	if err != nil {
		return nil, err
	}

	s.logStockMovements(ctx, result.Movements, domain.StockActionSale)
	s.invalidateReports(ctx, result.Sale.BranchID)
	return result, nil
}

// ProcessRefund reverses a committed sale: the refund and its lines are
// persisted under the sale's identifier, stock is restored, and the original
// sale records are deleted, all in one atomic unit.
func (s *Service) ProcessRefund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error) {
	if strings.TrimSpace(req.RefundReason) == "" {
		return nil, fmt.Errorf("%w: refund reason is required", store.ErrInvalidSale)
	}
	if req.SaleID == "" {
		return nil, fmt.Errorf("%w: sale id is required", store.ErrInvalidSale)
	}
	if len(req.SoldProducts) == 0 {
		return nil, fmt.Errorf("%w: no products to refund", store.ErrInvalidSale)
	}

	lines := make([]domain.RefundedProduct, 0, len(req.SoldProducts))
	for _, sold := range req.SoldProducts {
		if sold.ProductID == "" || sold.Quantity < 1 {
			return nil, fmt.Errorf("%w: each refund line needs a product and a positive quantity", store.ErrInvalidSale)
		}
		lines = append(lines, domain.RefundedProduct{
			ProductID:      sold.ProductID,
			ProductName:    sold.ProductName,
			ProductBrand:   sold.ProductBrand,
			PriceCents:     sold.PriceCents,
			Quantity:       sold.Quantity,
			TotalCostCents: sold.TotalCostCents,
			CategoryID:     sold.CategoryID,
			CategoryName:   sold.CategoryName,
		})
	}

	refund := domain.Refund{
		ID:                 req.SaleID,
		Reason:             strings.TrimSpace(req.RefundReason),
		PaymentAmountCents: req.PaymentAmountCents,
		PaymentMethod:      req.PaymentMethod,
		CustomerName:       strings.TrimSpace(req.CustomerName),
		Bank:               strings.TrimSpace(req.Bank),
		ReferenceNumber:    strings.TrimSpace(req.ReferenceNumber),
		TotalPriceCents:    req.TotalPriceCents,
		DiscountCents:      req.DiscountCents,
		OriginalCostCents:  req.OriginalCostCents,
		OriginalSaleDate:   req.OriginalSaleDate,
		BranchID:           req.BranchID,
		BranchName:         req.BranchName,
	}

	result, err := s.repo.CreateRefund(ctx, refund, lines)
	if err != nil {
		return nil, err
	}

	s.logStockMovements(ctx, result.Movements, domain.StockActionRefund)
	s.invalidateReports(ctx, result.Refund.BranchID)
	return result, nil
}

func (s *Service) RestockProduct(ctx context.Context, productID string, qty int) (*domain.StockMovement, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: restock quantity must be positive", store.ErrInvalidSale)
	}
	movement, err := s.repo.IncrementStock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	s.logStockMovements(ctx, []domain.StockMovement{*movement}, domain.StockActionRestock)
	return movement, nil
}

func (s *Service) VoidStock(ctx context.Context, productID string, qty int) (*domain.StockMovement, error) {
	movement, err := s.repo.VoidStock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	s.logStockMovements(ctx, []domain.StockMovement{*movement}, domain.StockActionVoid)
	return movement, nil
}

func (s *Service) ListProducts(ctx context.Context, branchID string) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, branchID)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (*domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Brand = strings.TrimSpace(req.Brand)
	if req.Name == "" || req.BranchID == "" || req.CategoryID == "" {
		return nil, fmt.Errorf("%w: name, branch and category are required", store.ErrInvalidSale)
	}
	if req.PriceCents < 1 || req.CostCents < 0 || req.Stock < 0 {
		return nil, fmt.Errorf("%w: invalid price, cost or stock", store.ErrInvalidSale)
	}

	branch, err := s.repo.GetBranchByID(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}

	product := domain.Product{
		BranchID:     branch.ID,
		BranchName:   branch.Name,
		Name:         req.Name,
		Brand:        req.Brand,
		Stock:        req.Stock,
		PriceCents:   req.PriceCents,
		CostCents:    req.CostCents,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		SupplierID:   req.SupplierID,
		SupplierName: req.SupplierName,
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (*domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product := *existing
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		product.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.CostCents != nil {
		product.CostCents = *req.CostCents
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.CategoryName != nil {
		product.CategoryName = *req.CategoryName
	}
	if req.SupplierID != nil {
		product.SupplierID = *req.SupplierID
	}
	if req.SupplierName != nil {
		product.SupplierName = *req.SupplierName
	}
	if product.Name == "" || product.PriceCents < 1 || product.CostCents < 0 {
		return nil, fmt.Errorf("%w: invalid product fields", store.ErrInvalidSale)
	}

	return s.repo.UpdateProduct(ctx, product)
}

func (s *Service) SetProductArchived(ctx context.Context, id string, archived bool) (*domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("admin role required")
	}
	return s.repo.SetProductArchived(ctx, id, archived)
}

func (s *Service) GetSaleDetails(ctx context.Context, saleID string) (*domain.Sale, error) {
	return s.repo.GetSaleByID(ctx, saleID)
}

func (s *Service) ListSales(ctx context.Context, branchID string, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, branchID, limit)
}

func (s *Service) ListSoldProducts(ctx context.Context, saleID string) ([]domain.SoldProduct, error) {
	return s.repo.ListSoldProducts(ctx, saleID)
}

func (s *Service) GetRefund(ctx context.Context, refundID string) (*domain.Refund, error) {
	return s.repo.GetRefundByID(ctx, refundID)
}

func (s *Service) ListRefundedProducts(ctx context.Context, refundID string) ([]domain.RefundedProduct, error) {
	return s.repo.ListRefundedProducts(ctx, refundID)
}

func (s *Service) ListInventoryLogs(ctx context.Context, branchID string, limit int) ([]domain.InventoryLog, error) {
	return s.repo.ListInventoryLogs(ctx, branchID, limit)
}

func (s *Service) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return s.repo.ListBranches(ctx)
}

func (s *Service) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	return s.repo.GetBranchByID(ctx, id)
}

func (s *Service) RecordLogin(ctx context.Context, record domain.LoginRecord) {
	if err := s.repo.CreateLoginRecord(ctx, record); err != nil {
		log.Printf("[service] WARN: failed to record login for %s: %v", record.Username, err)
	}
}

func (s *Service) ListLoginRecords(ctx context.Context, limit int) ([]domain.LoginRecord, error) {
	return s.repo.ListLoginRecords(ctx, limit)
}

// TodaySales returns the branch's sales rollup for the current day, read
// through the report cache.
func (s *Service) TodaySales(ctx context.Context, branchID string) (domain.TodaySalesReport, error) {
	now := time.Now().UTC()
	key := todayKey(branchID, now)

	if payload, ok, err := s.reports.Get(ctx, key); err == nil && ok {
		var report domain.TodaySalesReport
		if err := json.Unmarshal(payload, &report); err == nil {
			return report, nil
		}
	} else if err != nil {
		log.Printf("[service] WARN: report cache get failed for %s: %v", key, err)
	}

	report, err := s.repo.TodaySales(ctx, branchID, now)
	if err != nil {
		return domain.TodaySalesReport{}, err
	}
	s.cacheReport(ctx, key, report)
	return report, nil
}

// MonthlyRevenue returns the branch's revenue and units for the current
// month, read through the report cache.
func (s *Service) MonthlyRevenue(ctx context.Context, branchID string) (domain.MonthlyRevenueReport, error) {
	now := time.Now().UTC()
	key := monthKey(branchID, now)

	if payload, ok, err := s.reports.Get(ctx, key); err == nil && ok {
		var report domain.MonthlyRevenueReport
		if err := json.Unmarshal(payload, &report); err == nil {
			return report, nil
		}
	} else if err != nil {
		log.Printf("[service] WARN: report cache get failed for %s: %v", key, err)
	}

	report, err := s.repo.MonthlyRevenue(ctx, branchID, now)
	if err != nil {
		return domain.MonthlyRevenueReport{}, err
	}
	s.cacheReport(ctx, key, report)
	return report, nil
}

func (s *Service) cacheReport(ctx context.Context, key string, report any) {
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.reports.Set(ctx, key, payload, s.reportTTL); err != nil {
		log.Printf("[service] WARN: report cache set failed for %s: %v", key, err)
	}
}

func (s *Service) invalidateReports(ctx context.Context, branchID string) {
	now := time.Now().UTC()
	err := s.reports.Delete(ctx,
		todayKey(branchID, now), todayKey("", now),
		monthKey(branchID, now), monthKey("", now),
	)
	if err != nil {
		log.Printf("[service] WARN: report cache invalidation failed for branch %s: %v", branchID, err)
	}
}

func todayKey(branchID string, now time.Time) string {
	return fmt.Sprintf("report:today:%s:%s", branchID, now.Format("2006-01-02"))
}

func monthKey(branchID string, now time.Time) string {
	return fmt.Sprintf("report:month:%s:%s", branchID, now.Format("2006-01"))
}

// logStockMovements appends inventory log entries for a committed mutation.
// The audit trail is best-effort; failures are logged and never propagate.
func (s *Service) logStockMovements(ctx context.Context, movements []domain.StockMovement, action string) {
	for _, m := range movements {
		entry := domain.InventoryLog{
			BranchID:     m.BranchID,
			BranchName:   m.BranchName,
			ProductID:    m.ProductID,
			ProductName:  m.ProductName,
			ProductBrand: m.ProductBrand,
			OldStock:     m.OldStock,
			NewStock:     m.NewStock,
			Change:       m.Change,
			Action:       action,
		}
		if err := s.repo.CreateInventoryLog(ctx, entry); err != nil {
			log.Printf("[service] WARN: failed to write inventory log for %s (%s): %v", m.ProductID, action, err)
		}
	}
}
