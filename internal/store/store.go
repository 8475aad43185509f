package store

import (
	"context"
	"errors"
	"time"

	"gnwpos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidSale       = errors.New("invalid sale")
	ErrInvalidVoidAmount = errors.New("invalid void amount")
	ErrDuplicateRefund   = errors.New("sale already refunded")
)

type Repository interface {
	ListProducts(ctx context.Context, branchID string) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	SetProductArchived(ctx context.Context, id string, archived bool) (*domain.Product, error)

	// IncrementStock adds qty to the product's stock. VoidStock subtracts qty
	// and fails with ErrInvalidVoidAmount if the result would be negative.
	IncrementStock(ctx context.Context, productID string, qty int) (*domain.StockMovement, error)
	VoidStock(ctx context.Context, productID string, qty int) (*domain.StockMovement, error)

	// CreateSale re-reads every referenced product, rejects the whole sale with
	// ErrInsufficientStock if any line exceeds current stock, then decrements
	// stock and persists the sale with its line items as one atomic unit.
	CreateSale(ctx context.Context, sale domain.Sale, lines []domain.SoldProduct) (*domain.SaleResult, error)
	GetSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, branchID string, limit int) ([]domain.Sale, error)
	ListSoldProducts(ctx context.Context, saleID string) ([]domain.SoldProduct, error)

	// CreateRefund persists the refund and its lines, restores stock, and
	// deletes the original sale and sold products as one atomic unit. A second
	// refund for the same sale fails with ErrDuplicateRefund.
	CreateRefund(ctx context.Context, refund domain.Refund, lines []domain.RefundedProduct) (*domain.RefundResult, error)
	GetRefundByID(ctx context.Context, id string) (*domain.Refund, error)
	ListRefundedProducts(ctx context.Context, refundID string) ([]domain.RefundedProduct, error)

	CreateInventoryLog(ctx context.Context, entry domain.InventoryLog) error
	ListInventoryLogs(ctx context.Context, branchID string, limit int) ([]domain.InventoryLog, error)

	ListBranches(ctx context.Context) ([]domain.Branch, error)
	GetBranchByID(ctx context.Context, id string) (*domain.Branch, error)

	TodaySales(ctx context.Context, branchID string, day time.Time) (domain.TodaySalesReport, error)
	MonthlyRevenue(ctx context.Context, branchID string, month time.Time) (domain.MonthlyRevenueReport, error)

	CreateLoginRecord(ctx context.Context, record domain.LoginRecord) error
	ListLoginRecords(ctx context.Context, limit int) ([]domain.LoginRecord, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
