package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gnwpos/backend/internal/domain"
	"gnwpos/backend/internal/store"
	"gnwpos/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	products        map[string]domain.Product
	salesByID       map[string]domain.Sale
	soldBySaleID    map[string][]domain.SoldProduct
	refundsByID     map[string]domain.Refund
	refundedByID    map[string][]domain.RefundedProduct
	inventoryLogs   []domain.InventoryLog
	branchesByID    map[string]domain.Branch
	loginRecords    []domain.LoginRecord
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_BRANCH_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	branchPwd := envOr("SEED_BRANCH_PASSWORD", "branch123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_BRANCH_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_BRANCH_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username   string
		password   string
		role       string
		branchID   string
		branchName string
	}{
		{"admin", adminPwd, domain.RoleAdmin, "", ""},
		{"mainbranch", branchPwd, domain.RoleBranch, "branch-main", "Main Branch"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:   u.username,
			Password:   string(hash),
			Role:       u.role,
			BranchID:   u.branchID,
			BranchName: u.branchName,
			Active:     true,
			CreatedAt:  now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	branches := []domain.Branch{
		{ID: "branch-main", Name: "Main Branch", Street: "Jl. Veteran No. 21", City: "Makassar", Province: "Sulawesi Selatan", PostalCode: "90141", Phone: "0411-555-0101"},
		{ID: "branch-panakkukang", Name: "Panakkukang Branch", Street: "Jl. Boulevard Ruko A5", City: "Makassar", Province: "Sulawesi Selatan", PostalCode: "90231", Phone: "0411-555-0102"},
	}

	products := []domain.Product{
		{ID: "prd-ssd-01", BranchID: "branch-main", BranchName: "Main Branch", Name: "SSD 512GB NVMe", Brand: "Kingston", Stock: 40, PriceCents: 7500000, CostCents: 6100000, CategoryID: "cat-storage", CategoryName: "Storage"},
		{ID: "prd-ram-01", BranchID: "branch-main", BranchName: "Main Branch", Name: "RAM DDR4 8GB", Brand: "Corsair", Stock: 60, PriceCents: 4200000, CostCents: 3300000, CategoryID: "cat-memory", CategoryName: "Memory"},
		{ID: "prd-kbd-01", BranchID: "branch-main", BranchName: "Main Branch", Name: "Mechanical Keyboard TKL", Brand: "Rexus", Stock: 25, PriceCents: 3500000, CostCents: 2600000, CategoryID: "cat-peripheral", CategoryName: "Peripherals"},
		{ID: "prd-mouse-01", BranchID: "branch-main", BranchName: "Main Branch", Name: "Wireless Mouse", Brand: "Logitech", Stock: 80, PriceCents: 1800000, CostCents: 1250000, CategoryID: "cat-peripheral", CategoryName: "Peripherals"},
		{ID: "prd-mon-01", BranchID: "branch-main", BranchName: "Main Branch", Name: "Monitor 24in IPS", Brand: "LG", Stock: 15, PriceCents: 16500000, CostCents: 13800000, CategoryID: "cat-display", CategoryName: "Displays"},
		{ID: "prd-psu-01", BranchID: "branch-panakkukang", BranchName: "Panakkukang Branch", Name: "PSU 650W Bronze", Brand: "FSP", Stock: 18, PriceCents: 8900000, CostCents: 7200000, CategoryID: "cat-power", CategoryName: "Power"},
		{ID: "prd-hdd-01", BranchID: "branch-panakkukang", BranchName: "Panakkukang Branch", Name: "HDD 1TB 7200rpm", Brand: "Seagate", Stock: 30, PriceCents: 6800000, CostCents: 5500000, CategoryID: "cat-storage", CategoryName: "Storage"},
	}

	branchMap := make(map[string]domain.Branch, len(branches))
	for _, b := range branches {
		branchMap[b.ID] = b
	}
	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.CreatedAt = time.Now().UTC()
		productMap[p.ID] = p
	}

	return &Store{
		products:        productMap,
		salesByID:       make(map[string]domain.Sale),
		soldBySaleID:    make(map[string][]domain.SoldProduct),
		refundsByID:     make(map[string]domain.Refund),
		refundedByID:    make(map[string][]domain.RefundedProduct),
		inventoryLogs:   make([]domain.InventoryLog, 0, 128),
		branchesByID:    branchMap,
		loginRecords:    make([]domain.LoginRecord, 0, 64),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context, branchID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Archived {
			continue
		}
		if branchID != "" && p.BranchID != branchID {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.CategoryName == b.CategoryName {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.CategoryName, b.CategoryName)
	})
	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := p
	return &clone, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok && !p.Archived {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return nil, fmt.Errorf("product %s already exists", product.ID)
	}
	s.products[product.ID] = product
	clone := product
	return &clone, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Stock is owned by the ledger operations; edits never touch it.
	product.Stock = existing.Stock
	product.CreatedAt = existing.CreatedAt
	s.products[product.ID] = product
	clone := product
	return &clone, nil
}

func (s *Store) SetProductArchived(_ context.Context, id string, archived bool) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Archived = archived
	s.products[id] = p
	clone := p
	return &clone, nil
}

func (s *Store) IncrementStock(_ context.Context, productID string, qty int) (*domain.StockMovement, error) {
	if qty < 1 {
		return nil, store.ErrInvalidSale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	movement := movementFor(p, qty)
	p.Stock += qty
	s.products[productID] = p
	return &movement, nil
}

func (s *Store) VoidStock(_ context.Context, productID string, qty int) (*domain.StockMovement, error) {
	if qty < 1 {
		return nil, store.ErrInvalidVoidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if qty > p.Stock {
		return nil, store.ErrInvalidVoidAmount
	}
	movement := movementFor(p, -qty)
	p.Stock -= qty
	s.products[productID] = p
	return &movement, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale, lines []domain.SoldProduct) (*domain.SaleResult, error) {
	if len(lines) == 0 {
		return nil, store.ErrInvalidSale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Required quantity per product, so duplicate lines cannot slip past the
	// stock check.
	required := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, store.ErrInvalidSale
		}
		required[line.ProductID] += line.Quantity
	}

	for id, qty := range required {
		p, ok := s.products[id]
		if !ok || p.Archived {
			return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		if qty > p.Stock {
			return nil, store.ErrInsufficientStock
		}
	}

	// All lines passed the fresh stock check; now mutate.
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	movements := make([]domain.StockMovement, 0, len(required))
	for id, qty := range required {
		p := s.products[id]
		movement := movementFor(p, -qty)
		p.Stock -= qty
		s.products[id] = p
		movements = append(movements, movement)
	}
	slices.SortFunc(movements, func(a, b domain.StockMovement) int {
		return cmpString(a.ProductID, b.ProductID)
	})

	sale.Quantity = 0
	sale.TotalCostCents = 0
	totalLinePrice := int64(0)
	stored := make([]domain.SoldProduct, 0, len(lines))
	for _, line := range lines {
		p := s.products[line.ProductID]
		line.SaleID = sale.ID
		line.TotalPriceCents = line.PriceCents * int64(line.Quantity)
		line.TotalCostCents = p.CostCents * int64(line.Quantity)
		sale.Quantity += line.Quantity
		sale.TotalCostCents += line.TotalCostCents
		totalLinePrice += line.TotalPriceCents
		stored = append(stored, line)
	}
	sale.TotalPriceCents = totalLinePrice - sale.DiscountCents
	if sale.TotalPriceCents < 0 {
		sale.TotalPriceCents = 0
	}
	sale.ChangeCents = sale.PaymentAmountCents - sale.TotalPriceCents

	s.salesByID[sale.ID] = sale
	s.soldBySaleID[sale.ID] = stored

	return &domain.SaleResult{
		Sale:      sale,
		Lines:     slices.Clone(stored),
		Movements: movements,
	}, nil
}

func (s *Store) GetSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := sale
	return &clone, nil
}

func (s *Store) ListSales(_ context.Context, branchID string, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		if branchID != "" && sale.BranchID != branchID {
			continue
		}
		sales = append(sales, sale)
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.ID, b.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) ListSoldProducts(_ context.Context, saleID string) ([]domain.SoldProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, ok := s.soldBySaleID[saleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(lines), nil
}

func (s *Store) CreateRefund(_ context.Context, refund domain.Refund, lines []domain.RefundedProduct) (*domain.RefundResult, error) {
	if refund.ID == "" || len(lines) == 0 {
		return nil, store.ErrInvalidSale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.refundsByID[refund.ID]; exists {
		return nil, store.ErrDuplicateRefund
	}
	if _, exists := s.salesByID[refund.ID]; !exists {
		return nil, store.ErrNotFound
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, store.ErrInvalidSale
		}
		if _, ok := s.products[line.ProductID]; !ok {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, store.ErrNotFound)
		}
	}

	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}

	movements := make([]domain.StockMovement, 0, len(lines))
	refund.Quantity = 0
	stored := make([]domain.RefundedProduct, 0, len(lines))
	for _, line := range lines {
		p := s.products[line.ProductID]
		movement := movementFor(p, line.Quantity)
		p.Stock += line.Quantity
		s.products[line.ProductID] = p
		movements = append(movements, movement)

		line.RefundID = refund.ID
		line.TotalPriceCents = line.PriceCents * int64(line.Quantity)
		refund.Quantity += line.Quantity
		stored = append(stored, line)
	}

	s.refundsByID[refund.ID] = refund
	s.refundedByID[refund.ID] = stored
	delete(s.salesByID, refund.ID)
	delete(s.soldBySaleID, refund.ID)

	return &domain.RefundResult{
		Refund:    refund,
		Lines:     slices.Clone(stored),
		Movements: movements,
	}, nil
}

func (s *Store) GetRefundByID(_ context.Context, id string) (*domain.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refund, ok := s.refundsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := refund
	return &clone, nil
}

func (s *Store) ListRefundedProducts(_ context.Context, refundID string) ([]domain.RefundedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, ok := s.refundedByID[refundID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(lines), nil
}

func (s *Store) CreateInventoryLog(_ context.Context, entry domain.InventoryLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("ivl")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inventoryLogs = append(s.inventoryLogs, entry)
	return nil
}

func (s *Store) ListInventoryLogs(_ context.Context, branchID string, limit int) ([]domain.InventoryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]domain.InventoryLog, 0, len(s.inventoryLogs))
	for i := len(s.inventoryLogs) - 1; i >= 0; i-- {
		entry := s.inventoryLogs[i]
		if branchID != "" && entry.BranchID != branchID {
			continue
		}
		logs = append(logs, entry)
		if limit > 0 && len(logs) >= limit {
			break
		}
	}
	return logs, nil
}

func (s *Store) ListBranches(_ context.Context) ([]domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	branches := make([]domain.Branch, 0, len(s.branchesByID))
	for _, b := range s.branchesByID {
		branches = append(branches, b)
	}
	slices.SortFunc(branches, func(a, b domain.Branch) int {
		return cmpString(a.Name, b.Name)
	})
	return branches, nil
}

func (s *Store) GetBranchByID(_ context.Context, id string) (*domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.branchesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := b
	return &clone, nil
}

func (s *Store) TodaySales(_ context.Context, branchID string, day time.Time) (domain.TodaySalesReport, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.TodaySalesReport{
		BranchID: branchID,
		Date:     dayStart.Format("2006-01-02"),
	}
	for _, sale := range s.salesByID {
		if branchID != "" && sale.BranchID != branchID {
			continue
		}
		if sale.CreatedAt.Before(dayStart) || !sale.CreatedAt.Before(dayEnd) {
			continue
		}
		report.TotalSalesCents += sale.TotalPriceCents
		report.Transactions++
	}
	return report, nil
}

func (s *Store) MonthlyRevenue(_ context.Context, branchID string, month time.Time) (domain.MonthlyRevenueReport, error) {
	monthStart := time.Date(month.UTC().Year(), month.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.MonthlyRevenueReport{
		BranchID: branchID,
		Month:    monthStart.Format("2006-01"),
	}
	for _, sale := range s.salesByID {
		if branchID != "" && sale.BranchID != branchID {
			continue
		}
		if sale.CreatedAt.Before(monthStart) || !sale.CreatedAt.Before(monthEnd) {
			continue
		}
		report.RevenueCents += sale.TotalPriceCents
		report.UnitsSold += sale.Quantity
	}
	return report, nil
}

func (s *Store) CreateLoginRecord(_ context.Context, record domain.LoginRecord) error {
	if record.ID == "" {
		record.ID = xid.New("login")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loginRecords = append(s.loginRecords, record)
	return nil
}

func (s *Store) ListLoginRecords(_ context.Context, limit int) ([]domain.LoginRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.LoginRecord, 0, limit)
	for i := len(s.loginRecords) - 1; i >= 0; i-- {
		records = append(records, s.loginRecords[i])
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return fmt.Errorf("username %s already exists", user.Username)
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = password
	s.usersByUsername[username] = u
	return nil
}

func movementFor(p domain.Product, change int) domain.StockMovement {
	return domain.StockMovement{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductBrand: p.Brand,
		BranchID:     p.BranchID,
		BranchName:   p.BranchName,
		OldStock:     p.Stock,
		NewStock:     p.Stock + change,
		Change:       change,
	}
}

func cmpString(a string, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
