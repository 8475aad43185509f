package domain

import "time"

const (
	PaymentCash         = "Cash"
	PaymentBankTransfer = "Bank Transfer"
)

// Inventory log action labels, as shown in the branch activity screen.
const (
	StockActionRestock = "Restock"
	StockActionVoid    = "Void Stock"
	StockActionSale    = "Sale"
	StockActionRefund  = "Refund"
)

const (
	RoleAdmin  = "admin"
	RoleBranch = "branch"
)

type Product struct {
	ID           string    `json:"id"`
	BranchID     string    `json:"branch_id"`
	BranchName   string    `json:"branch_name"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Stock        int       `json:"stock"`
	PriceCents   int64     `json:"price_cents"`
	CostCents    int64     `json:"cost_cents"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	SupplierID   string    `json:"supplier_id,omitempty"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductCreateRequest struct {
	BranchID     string `json:"branch_id"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Stock        int    `json:"stock"`
	PriceCents   int64  `json:"price_cents"`
	CostCents    int64  `json:"cost_cents"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
}

type ProductUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	Brand        *string `json:"brand,omitempty"`
	PriceCents   *int64  `json:"price_cents,omitempty"`
	CostCents    *int64  `json:"cost_cents,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	CategoryName *string `json:"category_name,omitempty"`
	SupplierID   *string `json:"supplier_id,omitempty"`
	SupplierName *string `json:"supplier_name,omitempty"`
}

// CartLine is the client-held cart entry. Its price is a snapshot taken when
// the product was added to the cart; its implied stock is only a UI hint and
// is never trusted server-side.
type CartLine struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductBrand string `json:"product_brand"`
	PriceCents   int64  `json:"price_cents"`
	Quantity     int    `json:"quantity"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type Sale struct {
	ID                 string    `json:"id"`
	Quantity           int       `json:"quantity"`
	TotalPriceCents    int64     `json:"total_price_cents"`
	TotalCostCents     int64     `json:"total_cost_cents"`
	PaymentAmountCents int64     `json:"payment_amount_cents"`
	ChangeCents        int64     `json:"change_cents"`
	PaymentMethod      string    `json:"payment_method"`
	CustomerName       string    `json:"customer_name,omitempty"`
	Bank               string    `json:"bank,omitempty"`
	ReferenceNumber    string    `json:"reference_number,omitempty"`
	BranchID           string    `json:"branch_id"`
	BranchName         string    `json:"branch_name"`
	DiscountCents      int64     `json:"discount_cents"`
	CreatedAt          time.Time `json:"created_at"`
}

type SoldProduct struct {
	SaleID          string `json:"sale_id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	ProductBrand    string `json:"product_brand"`
	PriceCents      int64  `json:"price_cents"`
	Quantity        int    `json:"quantity"`
	TotalPriceCents int64  `json:"total_price_cents"`
	TotalCostCents  int64  `json:"total_cost_cents"`
	CategoryID      string `json:"category_id"`
	CategoryName    string `json:"category_name"`
}

// Refund reuses the original sale's identifier, so a sale can be refunded at
// most once.
type Refund struct {
	ID                 string    `json:"id"`
	Reason             string    `json:"reason"`
	PaymentAmountCents int64     `json:"payment_amount_cents"`
	PaymentMethod      string    `json:"payment_method"`
	CustomerName       string    `json:"customer_name,omitempty"`
	Bank               string    `json:"bank,omitempty"`
	ReferenceNumber    string    `json:"reference_number,omitempty"`
	Quantity           int       `json:"quantity"`
	TotalPriceCents    int64     `json:"total_price_cents"`
	DiscountCents      int64     `json:"discount_cents"`
	OriginalCostCents  int64     `json:"original_cost_cents"`
	OriginalSaleDate   time.Time `json:"original_sale_date"`
	BranchID           string    `json:"branch_id"`
	BranchName         string    `json:"branch_name"`
	CreatedAt          time.Time `json:"created_at"`
}

type RefundedProduct struct {
	RefundID        string `json:"refund_id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	ProductBrand    string `json:"product_brand"`
	PriceCents      int64  `json:"price_cents"`
	Quantity        int    `json:"quantity"`
	TotalPriceCents int64  `json:"total_price_cents"`
	TotalCostCents  int64  `json:"total_cost_cents"`
	CategoryID      string `json:"category_id"`
	CategoryName    string `json:"category_name"`
}

// StockMovement records one product's stock transition inside a committed
// mutation. Movements feed the inventory log and the stock broadcasts.
type StockMovement struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductBrand string `json:"product_brand"`
	BranchID     string `json:"branch_id"`
	BranchName   string `json:"branch_name"`
	OldStock     int    `json:"old_stock"`
	NewStock     int    `json:"new_stock"`
	Change       int    `json:"change"`
}

type InventoryLog struct {
	ID           string    `json:"id"`
	BranchID     string    `json:"branch_id"`
	BranchName   string    `json:"branch_name"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductBrand string    `json:"product_brand"`
	OldStock     int       `json:"old_stock"`
	NewStock     int       `json:"new_stock"`
	Change       int       `json:"change"`
	Action       string    `json:"action"`
	CreatedAt    time.Time `json:"created_at"`
}

type Branch struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone,omitempty"`
}

// AddressLines returns the branch address formatted for display and for the
// receipt header, skipping empty components.
func (b Branch) AddressLines() []string {
	lines := make([]string, 0, 2)
	if b.Street != "" {
		lines = append(lines, b.Street)
	}
	region := b.City
	if b.Province != "" {
		if region != "" {
			region += ", "
		}
		region += b.Province
	}
	if b.PostalCode != "" {
		if region != "" {
			region += " "
		}
		region += b.PostalCode
	}
	if region != "" {
		lines = append(lines, region)
	}
	return lines
}

type SaleRequest struct {
	Products           []CartLine `json:"products"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentAmountCents int64      `json:"payment_amount_cents"`
	CustomerName       string     `json:"customer_name"`
	Bank               string     `json:"bank"`
	ReferenceNumber    string     `json:"reference_number"`
	TotalPriceCents    int64      `json:"total_price_cents"`
	DiscountCents      int64      `json:"discount_cents"`
	BranchID           string     `json:"branch_id"`
	BranchName         string     `json:"branch_name"`
}

// SaleResult carries everything the caller needs after a committed sale:
// the persisted records plus the stock movements for logging and broadcast.
type SaleResult struct {
	Sale      Sale            `json:"sale"`
	Lines     []SoldProduct   `json:"lines"`
	Movements []StockMovement `json:"-"`
}

type RefundRequest struct {
	SaleID             string        `json:"sale_id"`
	SoldProducts       []SoldProduct `json:"sold_products"`
	PaymentAmountCents int64         `json:"payment_amount_cents"`
	CustomerName       string        `json:"customer_name"`
	PaymentMethod      string        `json:"payment_method"`
	Bank               string        `json:"bank"`
	ReferenceNumber    string        `json:"reference_number"`
	TotalPriceCents    int64         `json:"total_price_cents"`
	RefundReason       string        `json:"refund_reason"`
	BranchID           string        `json:"branch_id"`
	BranchName         string        `json:"branch_name"`
	DiscountCents      int64         `json:"discount_cents"`
	OriginalCostCents  int64         `json:"original_cost_cents"`
	OriginalSaleDate   time.Time     `json:"original_sale_date"`
}

type RefundResult struct {
	Refund    Refund            `json:"refund"`
	Lines     []RefundedProduct `json:"lines"`
	Movements []StockMovement   `json:"-"`
}

type TodaySalesReport struct {
	BranchID        string `json:"branch_id"`
	Date            string `json:"date"`
	TotalSalesCents int64  `json:"total_sales_cents"`
	Transactions    int    `json:"transactions"`
}

type MonthlyRevenueReport struct {
	BranchID     string `json:"branch_id"`
	Month        string `json:"month"`
	RevenueCents int64  `json:"revenue_cents"`
	UnitsSold    int    `json:"units_sold"`
}

type UserAccount struct {
	Username   string    `json:"username"`
	Password   string    `json:"-"`
	Role       string    `json:"role"`
	BranchID   string    `json:"branch_id,omitempty"`
	BranchName string    `json:"branch_name,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

type LoginRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	BranchID  string    `json:"branch_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	BranchID    string `json:"branch_id,omitempty"`
	BranchName  string `json:"branch_name,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username   string
	Role       string
	BranchID   string
	BranchName string
}
