package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gnwpos/backend/internal/domain"
	"gnwpos/backend/internal/notify"
	"gnwpos/backend/internal/printer"
	"gnwpos/backend/internal/service"
	"gnwpos/backend/internal/store"
)

// User-facing message for data-store connectivity failures, matching the
// desktop client's expectations.
const serviceUnavailableMsg = "Service unavailable. Please check your internet connection."

type API struct {
	service       *service.Service
	auth          *AuthManager
	hub           *notify.Hub
	printer       *printer.Printer
	businessName  string
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, hub *notify.Hub, prn *printer.Printer, businessName string, allowedOrigin string) *API {
	if businessName == "" {
		businessName = "GNW Computer Center"
	}
	return &API{
		service:       svc,
		auth:          auth,
		hub:           hub,
		printer:       prn,
		businessName:  businessName,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/auth/login", a.handleLogin)
	mux.Handle("/ws", a.hub)

	mux.HandleFunc("/order/process-sale", a.requireAuth(a.handleProcessSale, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/order/refund", a.requireAuth(a.handleRefund, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/order/print-sale-record", a.requireAuth(a.handlePrintSaleRecord, domain.RoleBranch, domain.RoleAdmin))

	mux.HandleFunc("/fetch-sold-products/", a.requireAuth(a.handleFetchSoldProducts, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/fetch-sale-details/", a.requireAuth(a.handleFetchSaleDetails, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/fetch-refund-products/", a.requireAuth(a.handleFetchRefundProducts, domain.RoleBranch, domain.RoleAdmin))

	mux.HandleFunc("/products", a.requireAuth(a.handleProducts, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/products/", a.requireAuth(a.handleProductActions, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/branches", a.requireAuth(a.handleBranches, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/branches/", a.requireAuth(a.handleBranchByID, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/sales", a.requireAuth(a.handleSales, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/inventory-logs", a.requireAuth(a.handleInventoryLogs, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/login-records", a.requireAuth(a.handleLoginRecords, domain.RoleAdmin))
	mux.HandleFunc("/reports/today-sales", a.requireAuth(a.handleTodaySales, domain.RoleBranch, domain.RoleAdmin))
	mux.HandleFunc("/reports/monthly-revenue", a.requireAuth(a.handleMonthlyRevenue, domain.RoleBranch, domain.RoleAdmin))

	return a.withCORS(mux)
}

func (a *API) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		actor, err := a.auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		allowed := false
		for _, role := range roles {
			if actor.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}
		ctx := service.WithActor(r.Context(), actor)
		next(w, r.WithContext(ctx))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(remoteIP(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	a.service.RecordLogin(r.Context(), domain.LoginRecord{
		Username: strings.ToLower(strings.TrimSpace(req.Username)),
		Role:     resp.Role,
		BranchID: resp.BranchID,
	})
	a.broadcast(notify.Event{Type: notify.EventNewLogin, Payload: map[string]any{
		"username":  strings.ToLower(strings.TrimSpace(req.Username)),
		"role":      resp.Role,
		"branch_id": resp.BranchID,
	}})

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleProcessSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeResult(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}
	a.scopeToBranch(r, &req.BranchID, &req.BranchName)

	result, err := a.service.ProcessSale(r.Context(), req)
	if err != nil {
		status, msg := saleErrorStatus(err)
		writeResult(w, status, false, msg, nil)
		return
	}

	printResult := a.printSale(r, result.Sale, result.Lines)
	a.broadcastAfterMutation(r, result.Sale.BranchID, result.Movements)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Sale processed successfully",
		"data":        result,
		"printResult": printResult,
	})
}

func (a *API) handleRefund(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.RefundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeResult(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}
	a.scopeToBranch(r, &req.BranchID, &req.BranchName)

	result, err := a.service.ProcessRefund(r.Context(), req)
	if err != nil {
		status, msg := refundErrorStatus(err)
		writeResult(w, status, false, msg, nil)
		return
	}

	a.broadcastAfterMutation(r, result.Refund.BranchID, result.Movements)
	writeResult(w, http.StatusOK, true, "Refund processed successfully", nil)
}

// printSaleRecordRequest carries a persisted sale snapshot for reprinting.
type printSaleRecordRequest struct {
	Sale         domain.Sale          `json:"sale"`
	SoldProducts []domain.SoldProduct `json:"sold_products"`
}

func (a *API) handlePrintSaleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req printSaleRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeResult(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}
	if len(req.SoldProducts) == 0 {
		writeResult(w, http.StatusBadRequest, false, "no products to print", nil)
		return
	}

	branch, err := a.service.GetBranch(r.Context(), req.Sale.BranchID)
	if err != nil {
		branch = nil
	}
	receipt := printer.FromSale(a.businessName, req.Sale, req.SoldProducts, branch)
	if err := a.printer.Print(r.Context(), receipt); err != nil {
		if errors.Is(err, printer.ErrUnavailable) {
			writeResult(w, http.StatusServiceUnavailable, false, "Printer unavailable", nil)
			return
		}
		writeResult(w, http.StatusInternalServerError, false, "Printing failed", nil)
		return
	}
	writeResult(w, http.StatusOK, true, "Receipt printed", nil)
}

func (a *API) handleFetchSoldProducts(w http.ResponseWriter, r *http.Request) {
	a.handleFetch(w, r, "/fetch-sold-products/", func(id string) (any, error) {
		return a.service.ListSoldProducts(r.Context(), id)
	})
}

func (a *API) handleFetchSaleDetails(w http.ResponseWriter, r *http.Request) {
	a.handleFetch(w, r, "/fetch-sale-details/", func(id string) (any, error) {
		return a.service.GetSaleDetails(r.Context(), id)
	})
}

func (a *API) handleFetchRefundProducts(w http.ResponseWriter, r *http.Request) {
	a.handleFetch(w, r, "/fetch-refund-products/", func(id string) (any, error) {
		return a.service.ListRefundedProducts(r.Context(), id)
	})
}

func (a *API) handleFetch(w http.ResponseWriter, r *http.Request, prefix string, fetch func(id string) (any, error)) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeResult(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}
	data, err := fetch(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeResult(w, http.StatusNotFound, false, "record not found", nil)
			return
		}
		writeResult(w, http.StatusServiceUnavailable, false, serviceUnavailableMsg, nil)
		return
	}
	writeResult(w, http.StatusOK, true, "", data)
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		branchID := r.URL.Query().Get("branch_id")
		a.scopeToBranch(r, &branchID, nil)
		products, err := a.service.ListProducts(r.Context(), branchID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/products/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		product, err := a.service.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})

	case action == "" && r.Method == http.MethodPut:
		var req domain.ProductUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.UpdateProduct(r.Context(), id, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})

	case action == "restock" && r.Method == http.MethodPost:
		a.handleStockAdjust(w, r, id, true)

	case action == "void-stock" && r.Method == http.MethodPost:
		a.handleStockAdjust(w, r, id, false)

	case (action == "archive" || action == "unarchive") && r.Method == http.MethodPost:
		product, err := a.service.SetProductArchived(r.Context(), id, action == "archive")
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})

	default:
		writeMethodNotAllowed(w)
	}
}

type stockAdjustRequest struct {
	Quantity int `json:"quantity"`
}

func (a *API) handleStockAdjust(w http.ResponseWriter, r *http.Request, productID string, increase bool) {
	var req stockAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Branch users may only touch their own branch's stock.
	if actor, ok := service.ActorFromContext(r.Context()); ok && actor.Role == domain.RoleBranch {
		product, err := a.service.GetProduct(r.Context(), productID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		if product.BranchID != actor.BranchID {
			writeError(w, http.StatusForbidden, errors.New("product belongs to another branch"))
			return
		}
	}

	var movement *domain.StockMovement
	var err error
	if increase {
		movement, err = a.service.RestockProduct(r.Context(), productID, req.Quantity)
	} else {
		movement, err = a.service.VoidStock(r.Context(), productID, req.Quantity)
	}
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	a.broadcast(notify.Event{Type: notify.EventStockUpdate, Payload: movement})
	writeJSON(w, http.StatusOK, map[string]any{"movement": movement})
}

func (a *API) handleBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	branches, err := a.service.ListBranches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

func (a *API) handleBranchByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/branches/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errors.New("branch id required"))
		return
	}
	branch, err := a.service.GetBranch(r.Context(), id)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branch": branch})
}

func (a *API) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	branchID := r.URL.Query().Get("branch_id")
	a.scopeToBranch(r, &branchID, nil)
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 500)

	sales, err := a.service.ListSales(r.Context(), branchID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (a *API) handleInventoryLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	branchID := r.URL.Query().Get("branch_id")
	a.scopeToBranch(r, &branchID, nil)
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)

	logs, err := a.service.ListInventoryLogs(r.Context(), branchID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory_logs": logs})
}

func (a *API) handleLoginRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 500)
	records, err := a.service.ListLoginRecords(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"login_records": records})
}

func (a *API) handleTodaySales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	branchID := r.URL.Query().Get("branch_id")
	a.scopeToBranch(r, &branchID, nil)

	report, err := a.service.TodaySales(r.Context(), branchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (a *API) handleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	branchID := r.URL.Query().Get("branch_id")
	a.scopeToBranch(r, &branchID, nil)

	report, err := a.service.MonthlyRevenue(r.Context(), branchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

// scopeToBranch pins branch-role requests to the actor's own branch. Admin
// requests pass through whatever branch they asked for.
func (a *API) scopeToBranch(r *http.Request, branchID *string, branchName *string) {
	actor, ok := service.ActorFromContext(r.Context())
	if !ok || actor.Role != domain.RoleBranch {
		return
	}
	if branchID != nil {
		*branchID = actor.BranchID
	}
	if branchName != nil {
		*branchName = actor.BranchName
	}
}

// printSale prints the receipt for a just-committed sale. The sale has
// already committed, so any failure here is reported as a warning string and
// never as a sale failure.
func (a *API) printSale(r *http.Request, sale domain.Sale, lines []domain.SoldProduct) string {
	branch, err := a.service.GetBranch(r.Context(), sale.BranchID)
	if err != nil {
		branch = nil
	}
	receipt := printer.FromSale(a.businessName, sale, lines, branch)
	if err := a.printer.Print(r.Context(), receipt); err != nil {
		log.Printf("[httpapi] WARN: receipt print failed for sale %s: %v", sale.ID, err)
		if errors.Is(err, printer.ErrUnavailable) {
			return "Printer unavailable"
		}
		return "Printing failed"
	}
	return "success"
}

// broadcastAfterMutation pushes the stock changes and refreshed report
// rollups to every connected client.
func (a *API) broadcastAfterMutation(r *http.Request, branchID string, movements []domain.StockMovement) {
	for i := range movements {
		a.broadcast(notify.Event{Type: notify.EventStockUpdate, Payload: movements[i]})
	}
	if today, err := a.service.TodaySales(r.Context(), branchID); err == nil {
		a.broadcast(notify.Event{Type: notify.EventTodaySales, Payload: today})
	}
	if monthly, err := a.service.MonthlyRevenue(r.Context(), branchID); err == nil {
		a.broadcast(notify.Event{Type: notify.EventMonthlyRevenue, Payload: monthly})
	}
}

func (a *API) broadcast(event notify.Event) {
	if a.hub == nil {
		return
	}
	a.hub.Broadcast(event)
}

func saleErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrInvalidSale):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict, "Insufficient stock"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		log.Printf("[httpapi] sale failed: %v", err)
		return http.StatusServiceUnavailable, serviceUnavailableMsg
	}
}

func refundErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrInvalidSale):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrDuplicateRefund):
		return http.StatusConflict, "Sale has already been refunded"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Sale not found"
	default:
		log.Printf("[httpapi] refund failed: %v", err)
		return http.StatusServiceUnavailable, serviceUnavailableMsg
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidSale), errors.Is(err, store.ErrInvalidVoidAmount):
		return http.StatusBadRequest
	case err != nil && err.Error() == "admin role required":
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeResult emits the {success, message, data} envelope used by the order
// and fetch endpoints.
func writeResult(w http.ResponseWriter, status int, success bool, message string, data any) {
	payload := map[string]any{"success": success}
	if message != "" {
		payload["message"] = message
	}
	if data != nil {
		payload["data"] = data
	}
	writeJSON(w, status, payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (stack traces, SQL errors, file paths, etc.).
	// 4xx responses are user-facing so we return the original error message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
