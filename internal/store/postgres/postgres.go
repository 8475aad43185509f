package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"gnwpos/backend/internal/domain"
	"gnwpos/backend/internal/store"
	"gnwpos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const productColumns = `id, branch_id, branch_name, name, brand, stock, price_cents, cost_cents,
	category_id, category_name, COALESCE(supplier_id, ''), COALESCE(supplier_name, ''), archived, created_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.BranchID, &p.BranchName, &p.Name, &p.Brand, &p.Stock,
		&p.PriceCents, &p.CostCents, &p.CategoryID, &p.CategoryName,
		&p.SupplierID, &p.SupplierName, &p.Archived, &p.CreatedAt)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context, branchID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE archived = false AND ($1 = '' OR branch_id = $1)
		ORDER BY category_name, name
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE archived = false AND id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, branch_id, branch_name, name, brand, stock, price_cents, cost_cents,
			category_id, category_name, supplier_id, supplier_name, archived, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, product.ID, product.BranchID, product.BranchName, product.Name, product.Brand,
		product.Stock, product.PriceCents, product.CostCents, product.CategoryID,
		product.CategoryName, nullIfEmpty(product.SupplierID), nullIfEmpty(product.SupplierName),
		product.Archived, product.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	// Stock is owned by the ledger operations; edits never touch it.
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, brand = $3, price_cents = $4, cost_cents = $5,
			category_id = $6, category_name = $7, supplier_id = $8, supplier_name = $9
		WHERE id = $1
	`, product.ID, product.Name, product.Brand, product.PriceCents, product.CostCents,
		product.CategoryID, product.CategoryName, nullIfEmpty(product.SupplierID), nullIfEmpty(product.SupplierName))
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetProductByID(ctx, product.ID)
}

func (s *Store) SetProductArchived(ctx context.Context, id string, archived bool) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetProductByID(ctx, id)
}

func (s *Store) IncrementStock(ctx context.Context, productID string, qty int) (*domain.StockMovement, error) {
	if qty < 1 {
		return nil, store.ErrInvalidSale
	}
	return s.adjustStock(ctx, productID, qty, false)
}

func (s *Store) VoidStock(ctx context.Context, productID string, qty int) (*domain.StockMovement, error) {
	if qty < 1 {
		return nil, store.ErrInvalidVoidAmount
	}
	return s.adjustStock(ctx, productID, -qty, true)
}

func (s *Store) adjustStock(ctx context.Context, productID string, change int, boundBelow bool) (*domain.StockMovement, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE
	`, productID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if boundBelow && p.Stock+change < 0 {
		return nil, store.ErrInvalidVoidAmount
	}

	_, err = tx.ExecContext(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, productID, change)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.StockMovement{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductBrand: p.Brand,
		BranchID:     p.BranchID,
		BranchName:   p.BranchName,
		OldStock:     p.Stock,
		NewStock:     p.Stock + change,
		Change:       change,
	}, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale, lines []domain.SoldProduct) (*domain.SaleResult, error) {
	if len(lines) == 0 {
		return nil, store.ErrInvalidSale
	}

	required := make(map[string]int, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, store.ErrInvalidSale
		}
		if _, seen := required[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		required[line.ProductID] += line.Quantity
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE archived = false AND id = ANY($1)
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// Full stock re-check before any write; the whole sale aborts on the
	// first shortfall.
	for id, qty := range required {
		p, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		if qty > p.Stock {
			return nil, store.ErrInsufficientStock
		}
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	movements := make([]domain.StockMovement, 0, len(ids))
	for _, id := range ids {
		qty := required[id]
		p := products[id]
		_, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`, id, qty)
		if err != nil {
			return nil, err
		}
		movements = append(movements, domain.StockMovement{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductBrand: p.Brand,
			BranchID:     p.BranchID,
			BranchName:   p.BranchName,
			OldStock:     p.Stock,
			NewStock:     p.Stock - qty,
			Change:       -qty,
		})
	}

	sale.Quantity = 0
	sale.TotalCostCents = 0
	totalLinePrice := int64(0)
	stored := make([]domain.SoldProduct, 0, len(lines))
	for _, line := range lines {
		p := products[line.ProductID]
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

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, quantity, total_price_cents, total_cost_cents, payment_amount_cents,
			change_cents, payment_method, customer_name, bank, reference_number,
			branch_id, branch_name, discount_cents, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, sale.ID, sale.Quantity, sale.TotalPriceCents, sale.TotalCostCents,
		sale.PaymentAmountCents, sale.ChangeCents, sale.PaymentMethod,
		nullIfEmpty(sale.CustomerName), nullIfEmpty(sale.Bank), nullIfEmpty(sale.ReferenceNumber),
		sale.BranchID, sale.BranchName, sale.DiscountCents, sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range stored {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sold_products (
				sale_id, product_id, product_name, product_brand, price_cents,
				quantity, total_price_cents, total_cost_cents, category_id, category_name
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, line.SaleID, line.ProductID, line.ProductName, line.ProductBrand,
			line.PriceCents, line.Quantity, line.TotalPriceCents, line.TotalCostCents,
			line.CategoryID, line.CategoryName)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.SaleResult{Sale: sale, Lines: stored, Movements: movements}, nil
}

const saleColumns = `id, quantity, total_price_cents, total_cost_cents, payment_amount_cents,
	change_cents, payment_method, COALESCE(customer_name, ''), COALESCE(bank, ''),
	COALESCE(reference_number, ''), branch_id, branch_name, discount_cents, created_at`

func scanSale(row interface{ Scan(...any) error }) (domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(&sale.ID, &sale.Quantity, &sale.TotalPriceCents, &sale.TotalCostCents,
		&sale.PaymentAmountCents, &sale.ChangeCents, &sale.PaymentMethod, &sale.CustomerName,
		&sale.Bank, &sale.ReferenceNumber, &sale.BranchID, &sale.BranchName,
		&sale.DiscountCents, &sale.CreatedAt)
	return sale, err
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, branchID string, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE $1 = '' OR branch_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) ListSoldProducts(ctx context.Context, saleID string) ([]domain.SoldProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, product_id, product_name, product_brand, price_cents,
			quantity, total_price_cents, total_cost_cents, category_id, category_name
		FROM sold_products
		WHERE sale_id = $1
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.SoldProduct, 0, 8)
	for rows.Next() {
		var line domain.SoldProduct
		err := rows.Scan(&line.SaleID, &line.ProductID, &line.ProductName, &line.ProductBrand,
			&line.PriceCents, &line.Quantity, &line.TotalPriceCents, &line.TotalCostCents,
			&line.CategoryID, &line.CategoryName)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, store.ErrNotFound
	}
	return lines, nil
}

func (s *Store) CreateRefund(ctx context.Context, refund domain.Refund, lines []domain.RefundedProduct) (*domain.RefundResult, error) {
	if refund.ID == "" || len(lines) == 0 {
		return nil, store.ErrInvalidSale
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, store.ErrInvalidSale
		}
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var saleID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM sales WHERE id = $1 FOR UPDATE`, refund.ID).Scan(&saleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	refund.Quantity = 0
	for i := range lines {
		lines[i].RefundID = refund.ID
		lines[i].TotalPriceCents = lines[i].PriceCents * int64(lines[i].Quantity)
		refund.Quantity += lines[i].Quantity
	}

	// The refunds primary key is the sale id, so a concurrent or repeated
	// refund collides here and the whole transaction rolls back.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO refunds (
			id, reason, payment_amount_cents, payment_method, customer_name, bank,
			reference_number, quantity, total_price_cents, discount_cents,
			original_cost_cents, original_sale_date, branch_id, branch_name, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, refund.ID, refund.Reason, refund.PaymentAmountCents, refund.PaymentMethod,
		nullIfEmpty(refund.CustomerName), nullIfEmpty(refund.Bank), nullIfEmpty(refund.ReferenceNumber),
		refund.Quantity, refund.TotalPriceCents, refund.DiscountCents,
		refund.OriginalCostCents, refund.OriginalSaleDate, refund.BranchID, refund.BranchName,
		refund.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateRefund
		}
		return nil, err
	}

	movements := make([]domain.StockMovement, 0, len(lines))
	for _, line := range lines {
		row := tx.QueryRowContext(ctx, `
			SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE
		`, line.ProductID)
		p, err := scanProduct(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, store.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		movements = append(movements, domain.StockMovement{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductBrand: p.Brand,
			BranchID:     p.BranchID,
			BranchName:   p.BranchName,
			OldStock:     p.Stock,
			NewStock:     p.Stock + line.Quantity,
			Change:       line.Quantity,
		})

		_, err = tx.ExecContext(ctx, `
			INSERT INTO refunded_products (
				refund_id, product_id, product_name, product_brand, price_cents,
				quantity, total_price_cents, total_cost_cents, category_id, category_name
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, line.RefundID, line.ProductID, line.ProductName, line.ProductBrand,
			line.PriceCents, line.Quantity, line.TotalPriceCents, line.TotalCostCents,
			line.CategoryID, line.CategoryName)
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sold_products WHERE sale_id = $1`, refund.ID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, refund.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.RefundResult{Refund: refund, Lines: lines, Movements: movements}, nil
}

func (s *Store) GetRefundByID(ctx context.Context, id string) (*domain.Refund, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reason, payment_amount_cents, payment_method, COALESCE(customer_name, ''),
			COALESCE(bank, ''), COALESCE(reference_number, ''), quantity, total_price_cents,
			discount_cents, original_cost_cents, original_sale_date, branch_id, branch_name, created_at
		FROM refunds
		WHERE id = $1
	`, id)
	var r domain.Refund
	err := row.Scan(&r.ID, &r.Reason, &r.PaymentAmountCents, &r.PaymentMethod, &r.CustomerName,
		&r.Bank, &r.ReferenceNumber, &r.Quantity, &r.TotalPriceCents, &r.DiscountCents,
		&r.OriginalCostCents, &r.OriginalSaleDate, &r.BranchID, &r.BranchName, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListRefundedProducts(ctx context.Context, refundID string) ([]domain.RefundedProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT refund_id, product_id, product_name, product_brand, price_cents,
			quantity, total_price_cents, total_cost_cents, category_id, category_name
		FROM refunded_products
		WHERE refund_id = $1
	`, refundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.RefundedProduct, 0, 8)
	for rows.Next() {
		var line domain.RefundedProduct
		err := rows.Scan(&line.RefundID, &line.ProductID, &line.ProductName, &line.ProductBrand,
			&line.PriceCents, &line.Quantity, &line.TotalPriceCents, &line.TotalCostCents,
			&line.CategoryID, &line.CategoryName)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, store.ErrNotFound
	}
	return lines, nil
}

func (s *Store) CreateInventoryLog(ctx context.Context, entry domain.InventoryLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("ivl")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_logs (
			id, branch_id, branch_name, product_id, product_name, product_brand,
			old_stock, new_stock, stock_change, action, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, entry.ID, entry.BranchID, entry.BranchName, entry.ProductID, entry.ProductName,
		entry.ProductBrand, entry.OldStock, entry.NewStock, entry.Change, entry.Action,
		entry.CreatedAt)
	return err
}

func (s *Store) ListInventoryLogs(ctx context.Context, branchID string, limit int) ([]domain.InventoryLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, branch_id, branch_name, product_id, product_name, product_brand,
			old_stock, new_stock, stock_change, action, created_at
		FROM inventory_logs
		WHERE $1 = '' OR branch_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.InventoryLog, 0, limit)
	for rows.Next() {
		var entry domain.InventoryLog
		err := rows.Scan(&entry.ID, &entry.BranchID, &entry.BranchName, &entry.ProductID,
			&entry.ProductName, &entry.ProductBrand, &entry.OldStock, &entry.NewStock,
			&entry.Change, &entry.Action, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, street, city, province, postal_code, COALESCE(phone, '')
		FROM branches
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	branches := make([]domain.Branch, 0, 8)
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Street, &b.City, &b.Province, &b.PostalCode, &b.Phone); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *Store) GetBranchByID(ctx context.Context, id string) (*domain.Branch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, street, city, province, postal_code, COALESCE(phone, '')
		FROM branches
		WHERE id = $1
	`, id)
	var b domain.Branch
	err := row.Scan(&b.ID, &b.Name, &b.Street, &b.City, &b.Province, &b.PostalCode, &b.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) TodaySales(ctx context.Context, branchID string, day time.Time) (domain.TodaySalesReport, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	report := domain.TodaySalesReport{
		BranchID: branchID,
		Date:     dayStart.Format("2006-01-02"),
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_price_cents), 0), COUNT(*)
		FROM sales
		WHERE ($1 = '' OR branch_id = $1)
		  AND created_at >= $2 AND created_at < $3
	`, branchID, dayStart, dayStart.Add(24*time.Hour)).Scan(&report.TotalSalesCents, &report.Transactions)
	return report, err
}

func (s *Store) MonthlyRevenue(ctx context.Context, branchID string, month time.Time) (domain.MonthlyRevenueReport, error) {
	monthStart := time.Date(month.UTC().Year(), month.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	report := domain.MonthlyRevenueReport{
		BranchID: branchID,
		Month:    monthStart.Format("2006-01"),
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_price_cents), 0), COALESCE(SUM(quantity), 0)
		FROM sales
		WHERE ($1 = '' OR branch_id = $1)
		  AND created_at >= $2 AND created_at < $3
	`, branchID, monthStart, monthStart.AddDate(0, 1, 0)).Scan(&report.RevenueCents, &report.UnitsSold)
	return report, err
}

func (s *Store) CreateLoginRecord(ctx context.Context, record domain.LoginRecord) error {
	if record.ID == "" {
		record.ID = xid.New("login")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_records (id, username, role, branch_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, record.ID, record.Username, record.Role, nullIfEmpty(record.BranchID), record.CreatedAt)
	return err
}

func (s *Store) ListLoginRecords(ctx context.Context, limit int) ([]domain.LoginRecord, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, role, COALESCE(branch_id, ''), created_at
		FROM login_records
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.LoginRecord, 0, limit)
	for rows.Next() {
		var r domain.LoginRecord
		if err := rows.Scan(&r.ID, &r.Username, &r.Role, &r.BranchID, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, branch_id, branch_name, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, user.Username, user.Password, user.Role, nullIfEmpty(user.BranchID),
		nullIfEmpty(user.BranchName), user.Active, user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %s already exists", user.Username)
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, COALESCE(branch_id, ''), COALESCE(branch_name, ''), active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.BranchID, &u.BranchName, &u.Active, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE username = $1`, username, password)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
