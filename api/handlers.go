/*
handlers.go - HTTP API handlers for the forecasting engine

PURPOSE:
  Exposes the document via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the ledger/document logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                      List accounts
    POST   /api/accounts                      Create account
    GET    /api/accounts/{name}/entries       Entries with running balances
    GET    /api/accounts/{name}/budget-allocation  Prorated budget allocation

  Transactions:
    GET    /api/transactions                  Cooked ledger (real + spawns)
    POST   /api/transactions                  Post a real transaction
    DELETE /api/transactions/{id}             Remove a posted transaction

  Schedules:
    GET    /api/schedules                     List schedules
    POST   /api/schedules                     Create schedule
    POST   /api/schedules/{id}/exceptions     Override one/all occurrences
    DELETE /api/schedules/{id}/dates/{date}   Delete one occurrence
    PUT    /api/schedules/{id}/stop-date      Set stop date

  Budgets:
    GET    /api/budgets                       List budgets with periods
    POST   /api/budgets                       Create budget
    POST   /api/budgets/{id}/exceptions       Per-period override

  Cooking:
    POST   /api/cook                          Re-cook {from?, until?}
    POST   /api/continue-cooking              Extend horizon {until}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, unbalanced transactions
  - 404: Unknown account/transaction/schedule/budget
  - 409: Duplicate account
  - 500: Internal errors

PERSISTENCE:
  When a store is attached, every successful mutation saves a fresh
  snapshot. The document in memory stays authoritative.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearth/forecast-engine/document"
	"github.com/hearth/forecast-engine/ledger"
	"github.com/hearth/forecast-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Doc   *document.Document
	Store *sqlite.Store // optional; nil disables persistence
}

// NewHandler creates a handler around a document. Store may be nil.
func NewHandler(doc *document.Document, store *sqlite.Store) *Handler {
	return &Handler{Doc: doc, Store: store}
}

func (h *Handler) persist(r *http.Request) error {
	if h.Store == nil {
		return nil
	}
	return h.Store.Save(r.Context(), h.Doc.Snapshot())
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.Doc.Accounts()
	dtos := make([]AccountDTO, len(accounts))
	for i, account := range accounts {
		dtos[i] = AccountDTO{
			Name:     account.Name,
			Currency: account.Currency,
			Type:     string(account.Type),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Account name is required", nil)
		return
	}
	typ := ledger.AccountType(req.Type)
	switch typ {
	case ledger.AccountAsset, ledger.AccountLiability, ledger.AccountIncome, ledger.AccountExpense:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown account type %q", req.Type), nil)
		return
	}

	account, err := h.Doc.AddAccount(req.Name, req.Currency, typ)
	if errors.Is(err, ledger.ErrAccountExists) {
		writeError(w, http.StatusConflict, "Account already exists", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountDTO{
		Name:     account.Name,
		Currency: account.Currency,
		Type:     string(account.Type),
	})
}

// GetEntries returns the account's entries with running balances.
func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	entries, err := h.Doc.EntriesFor(name)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "Account not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = toEntryDTO(entry)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBudgetAllocation returns the prorated budget allocation for an
// account over ?from=&to=, optionally converted to ?currency=.
func (h *Handler) GetBudgetAllocation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	from, err := ledger.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := ledger.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}
	currency := r.URL.Query().Get("currency")
	normalized := r.URL.Query().Get("normalized") == "true"

	dateRange := ledger.NewDateRange(from, to)
	amount, err := h.Doc.BudgetedAmount(name, dateRange, currency, normalized)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "Account not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute allocation", err)
		return
	}

	writeJSON(w, http.StatusOK, AllocationDTO{
		Account: name,
		From:    from.String(),
		To:      to.String(),
		Amount:  toAmountDTO(amount),
	})
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the cooked ledger.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	cooked := h.Doc.Transactions()
	dtos := make([]TransactionDTO, len(cooked))
	for i, txn := range cooked {
		dtos[i] = toTransactionDTO(txn)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction posts a real transaction.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	txn, err := h.buildTransaction(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction", err)
		return
	}

	if err := h.Doc.AddTransaction(txn); err != nil {
		if errors.Is(err, ledger.ErrUnbalancedTransaction) {
			writeError(w, http.StatusBadRequest, "Transaction does not balance", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add transaction", err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(txn))
}

// DeleteTransaction removes a posted transaction.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Doc.RemoveTransaction(id)
	if errors.Is(err, document.ErrTransactionNotFound) {
		writeError(w, http.StatusNotFound, "Transaction not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove transaction", err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns all schedules.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules := h.Doc.Schedules()
	dtos := make([]ScheduleDTO, len(schedules))
	for i, rec := range schedules {
		dtos[i] = toScheduleDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSchedule creates a recurrence from a template transaction.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Schedule id is required", nil)
		return
	}
	repeat, err := parseRepeat(req.Repeat)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid repeat type", err)
		return
	}
	every := req.Every
	if every <= 0 {
		every = 1
	}

	ref, err := h.buildTransaction(req.Template)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid template", err)
		return
	}

	rec := ledger.NewRecurrence(req.ID, ref, repeat, every)
	if err := h.Doc.AddSchedule(rec); err != nil {
		if errors.Is(err, ledger.ErrUnbalancedTransaction) {
			writeError(w, http.StatusBadRequest, "Template does not balance", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add schedule", err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}

	writeJSON(w, http.StatusCreated, toScheduleDTO(rec))
}

// AddScheduleException overrides one occurrence, or, with global set, the
// occurrence and everything after it.
func (h *Handler) AddScheduleException(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ScheduleExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	recurrenceDate, err := ledger.ParseDate(req.RecurrenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recurrence date", err)
		return
	}
	if req.Transaction == nil {
		writeError(w, http.StatusBadRequest, "Exception transaction is required", nil)
		return
	}
	txn, err := h.buildTransaction(*req.Transaction)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exception transaction", err)
		return
	}

	if req.Global {
		err = h.Doc.ScheduleAddGlobalChange(id, recurrenceDate, txn)
	} else {
		err = h.Doc.ScheduleAddException(id, recurrenceDate, txn)
	}
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteScheduleDate removes one occurrence.
func (h *Handler) DeleteScheduleDate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date, err := ledger.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Doc.ScheduleDeleteDate(id, date); err != nil {
		h.writeScheduleError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetScheduleStopDate ends the schedule after the given date.
func (h *Handler) SetScheduleStopDate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SetStopDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	stop, err := ledger.ParseDate(req.StopDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid stop date", err)
		return
	}
	if err := h.Doc.ScheduleSetStopDate(id, stop); err != nil {
		h.writeScheduleError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "Schedule not found", err)
	case errors.Is(err, ledger.ErrUnbalancedTransaction):
		writeError(w, http.StatusBadRequest, "Transaction does not balance", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to update schedule", err)
	}
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ListBudgets returns all budgets with their computed periods.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := h.Doc.Budgets()
	dtos := make([]BudgetDTO, len(budgets))
	for i, b := range budgets {
		periods, err := h.Doc.BudgetPeriods(b.ID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get budget periods", err)
			return
		}
		dtos[i] = toBudgetDTO(b, periods)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBudget creates a budget on an income or expense account.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Budget id is required", nil)
		return
	}
	account, ok := h.Doc.FindAccount(req.Account)
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	if account.Type != ledger.AccountIncome && account.Type != ledger.AccountExpense {
		writeError(w, http.StatusBadRequest, "Budgets apply to income and expense accounts only", nil)
		return
	}
	amount, err := ledger.ParseAmount(req.Amount.Value, req.Amount.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	start, err := ledger.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	repeat, err := parseRepeat(req.Repeat)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid repeat type", err)
		return
	}

	budget := ledger.NewBudget(req.ID, account, amount, start, repeat)
	budget.Notes = req.Notes
	if err := h.Doc.AddBudget(budget); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add budget", err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}

	periods, _ := h.Doc.BudgetPeriods(budget.ID())
	writeJSON(w, http.StatusCreated, toBudgetDTO(budget, periods))
}

// AddBudgetException overrides one budget period.
func (h *Handler) AddBudgetException(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req BudgetExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	recurrenceDate, err := ledger.ParseDate(req.RecurrenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recurrence date", err)
		return
	}
	exc := ledger.BudgetException{CarryReset: req.CarryReset}
	if req.Amount != nil {
		amount, err := ledger.ParseAmount(req.Amount.Value, req.Amount.Currency)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount", err)
			return
		}
		exc.Amount = &amount
	}

	if err := h.Doc.BudgetAddException(id, recurrenceDate, exc); err != nil {
		if errors.Is(err, document.ErrBudgetNotFound) {
			writeError(w, http.StatusNotFound, "Budget not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update budget", err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COOKING HANDLERS
// =============================================================================

// Cook re-cooks the document over an optional [from, until] window.
func (h *Handler) Cook(w http.ResponseWriter, r *http.Request) {
	var req CookRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	var from, until *ledger.Date
	if req.From != "" {
		d, err := ledger.ParseDate(req.From)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		from = &d
	}
	if req.Until != "" {
		d, err := ledger.ParseDate(req.Until)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid until date", err)
			return
		}
		until = &d
	}

	if err := h.Doc.Cook(from, until); err != nil {
		writeError(w, http.StatusInternalServerError, "Cook failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CookedDTO{
		CookedUntil: h.Doc.CookedUntil().String(),
		Count:       len(h.Doc.Transactions()),
	})
}

// ContinueCooking extends the cooked horizon.
func (h *Handler) ContinueCooking(w http.ResponseWriter, r *http.Request) {
	var req ContinueCookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	until, err := ledger.ParseDate(req.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid until date", err)
		return
	}
	if err := h.Doc.ContinueCooking(until); err != nil {
		writeError(w, http.StatusInternalServerError, "Cook failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CookedDTO{
		CookedUntil: h.Doc.CookedUntil().String(),
		Count:       len(h.Doc.Transactions()),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) buildTransaction(req CreateTransactionRequest) (*ledger.Transaction, error) {
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	if len(req.Splits) == 0 {
		return nil, errors.New("at least one split is required")
	}
	txn := &ledger.Transaction{
		ID:          req.ID,
		Date:        date,
		Description: req.Description,
		Payee:       req.Payee,
		CheckNumber: req.CheckNumber,
	}
	for _, sd := range req.Splits {
		amount, err := ledger.ParseAmount(sd.Amount.Value, sd.Amount.Currency)
		if err != nil {
			return nil, fmt.Errorf("invalid split amount %q: %w", sd.Amount.Value, err)
		}
		split := &ledger.Split{Amount: amount, Memo: sd.Memo}
		if sd.Account != "" {
			account, ok := h.Doc.FindAccount(sd.Account)
			if !ok {
				return nil, fmt.Errorf("unknown account %q", sd.Account)
			}
			split.Account = account
		}
		if sd.ReconciliationDate != "" {
			rdate, err := ledger.ParseDate(sd.ReconciliationDate)
			if err != nil {
				return nil, fmt.Errorf("invalid reconciliation date %q: %w", sd.ReconciliationDate, err)
			}
			split.ReconciliationDate = &rdate
		}
		txn.Splits = append(txn.Splits, split)
	}
	return txn, nil
}

func parseRepeat(s string) (ledger.RepeatType, error) {
	repeat := ledger.RepeatType(s)
	switch repeat {
	case ledger.RepeatDaily, ledger.RepeatWeekly, ledger.RepeatMonthly, ledger.RepeatYearly,
		ledger.RepeatWeekday, ledger.RepeatWeekdayLast:
		return repeat, nil
	default:
		return "", fmt.Errorf("unknown repeat type %q", s)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
