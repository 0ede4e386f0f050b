/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal ledger model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Amounts travel as {value: "123.45", currency: "USD"} string pairs so
  clients never lose decimal precision to floats.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/hearth/forecast-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AmountDTO carries a decimal amount without float rounding.
type AmountDTO struct {
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
}

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

// CreateAccountRequest is the request to create an account.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

// SplitDTO is one leg of a transaction.
type SplitDTO struct {
	Account            string    `json:"account,omitempty"`
	Amount             AmountDTO `json:"amount"`
	Memo               string    `json:"memo,omitempty"`
	ReconciliationDate string    `json:"reconciliation_date,omitempty"`
}

// SpawnDTO marks a transaction as materialized from a schedule or budget.
type SpawnDTO struct {
	SourceID       string `json:"source_id"`
	Kind           string `json:"kind"`
	RecurrenceDate string `json:"recurrence_date"`
}

// TransactionDTO represents a cooked transaction, real or spawned.
type TransactionDTO struct {
	ID          string     `json:"id,omitempty"`
	Date        string     `json:"date"`
	Description string     `json:"description,omitempty"`
	Payee       string     `json:"payee,omitempty"`
	CheckNumber string     `json:"check_number,omitempty"`
	Position    int        `json:"position"`
	Spawn       *SpawnDTO  `json:"spawn,omitempty"`
	Splits      []SplitDTO `json:"splits"`
}

// CreateTransactionRequest is the request to post a real transaction.
type CreateTransactionRequest struct {
	ID          string     `json:"id,omitempty"`
	Date        string     `json:"date"`
	Description string     `json:"description,omitempty"`
	Payee       string     `json:"payee,omitempty"`
	CheckNumber string     `json:"check_number,omitempty"`
	Splits      []SplitDTO `json:"splits"`
}

// EntryDTO is one account entry with its running balances.
type EntryDTO struct {
	Date              string    `json:"date"`
	Description       string    `json:"description,omitempty"`
	Amount            AmountDTO `json:"amount"`
	Balance           AmountDTO `json:"balance"`
	BalanceWithBudget AmountDTO `json:"balance_with_budget"`
	ReconciledBalance AmountDTO `json:"reconciled_balance"`
	IsSpawn           bool      `json:"is_spawn,omitempty"`
}

// ScheduleDTO represents a recurrence rule.
type ScheduleDTO struct {
	ID        string `json:"id"`
	Repeat    string `json:"repeat"`
	Every     int    `json:"every"`
	StartDate string `json:"start_date"`
	StopDate  string `json:"stop_date,omitempty"`
}

// CreateScheduleRequest is the request to create a schedule. The template
// describes the transaction each occurrence materializes.
type CreateScheduleRequest struct {
	ID       string                   `json:"id"`
	Repeat   string                   `json:"repeat"`
	Every    int                      `json:"every"`
	Template CreateTransactionRequest `json:"template"`
}

// ScheduleExceptionRequest overrides or rewrites occurrences. With Global
// set, the replacement applies to the occurrence and everything after it.
type ScheduleExceptionRequest struct {
	RecurrenceDate string                    `json:"recurrence_date"`
	Global         bool                      `json:"global,omitempty"`
	Transaction    *CreateTransactionRequest `json:"transaction"`
}

// SetStopDateRequest ends a schedule after the given date.
type SetStopDateRequest struct {
	StopDate string `json:"stop_date"`
}

// BudgetPeriodDTO is one computed budget period.
type BudgetPeriodDTO struct {
	RecurrenceDate string    `json:"recurrence_date"`
	Date           string    `json:"date"`
	BudgetAmount   AmountDTO `json:"budget_amount"`
	Difference     AmountDTO `json:"difference"`
	Carry          AmountDTO `json:"carry"`
	CarryReset     bool      `json:"carry_reset,omitempty"`
}

// BudgetDTO represents a budget with its computed periods.
type BudgetDTO struct {
	ID        string            `json:"id"`
	Account   string            `json:"account"`
	Amount    AmountDTO         `json:"amount"`
	StartDate string            `json:"start_date"`
	Repeat    string            `json:"repeat"`
	Notes     string            `json:"notes,omitempty"`
	Periods   []BudgetPeriodDTO `json:"periods"`
}

// CreateBudgetRequest is the request to create a budget.
type CreateBudgetRequest struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Amount    AmountDTO `json:"amount"`
	StartDate string    `json:"start_date"`
	Repeat    string    `json:"repeat"`
	Notes     string    `json:"notes,omitempty"`
}

// BudgetExceptionRequest overrides one budget period.
type BudgetExceptionRequest struct {
	RecurrenceDate string     `json:"recurrence_date"`
	Amount         *AmountDTO `json:"amount,omitempty"`
	CarryReset     bool       `json:"carry_reset,omitempty"`
}

// AllocationDTO is the prorated budget allocation for an account over a
// date range.
type AllocationDTO struct {
	Account string    `json:"account"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Amount  AmountDTO `json:"amount"`
}

// CookRequest triggers a cook pass. Both bounds are optional.
type CookRequest struct {
	From  string `json:"from,omitempty"`
	Until string `json:"until,omitempty"`
}

// ContinueCookingRequest extends the cooked horizon.
type ContinueCookingRequest struct {
	Until string `json:"until"`
}

// CookedDTO reports the horizon after a cook pass.
type CookedDTO struct {
	CookedUntil string `json:"cooked_until"`
	Count       int    `json:"transaction_count"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAmountDTO(a ledger.Amount) AmountDTO {
	return AmountDTO{Value: a.Value.String(), Currency: a.Currency}
}

func spawnKindString(kind ledger.SpawnKind) string {
	switch kind {
	case ledger.SpawnBudget:
		return "budget"
	default:
		return "schedule"
	}
}

func toTransactionDTO(txn *ledger.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:          txn.ID,
		Date:        txn.Date.String(),
		Description: txn.Description,
		Payee:       txn.Payee,
		CheckNumber: txn.CheckNumber,
		Position:    txn.Position,
		Splits:      make([]SplitDTO, 0, len(txn.Splits)),
	}
	if txn.Spawn != nil {
		dto.Spawn = &SpawnDTO{
			SourceID:       txn.Spawn.SourceID,
			Kind:           spawnKindString(txn.Spawn.Kind),
			RecurrenceDate: txn.Spawn.RecurrenceDate.String(),
		}
	}
	for _, split := range txn.Splits {
		sd := SplitDTO{Amount: toAmountDTO(split.Amount), Memo: split.Memo}
		if split.Account != nil {
			sd.Account = split.Account.Name
		}
		if split.ReconciliationDate != nil {
			sd.ReconciliationDate = split.ReconciliationDate.String()
		}
		dto.Splits = append(dto.Splits, sd)
	}
	return dto
}

func toEntryDTO(entry *ledger.Entry) EntryDTO {
	return EntryDTO{
		Date:              entry.Transaction.Date.String(),
		Description:       entry.Transaction.Description,
		Amount:            toAmountDTO(entry.Amount),
		Balance:           toAmountDTO(entry.Balance),
		BalanceWithBudget: toAmountDTO(entry.BalanceWithBudget),
		ReconciledBalance: toAmountDTO(entry.ReconciledBalance),
		IsSpawn:           entry.Transaction.IsSpawn(),
	}
}

func toScheduleDTO(rec *ledger.Recurrence) ScheduleDTO {
	dto := ScheduleDTO{
		ID:        rec.ID(),
		Repeat:    string(rec.Repeat()),
		Every:     rec.Every(),
		StartDate: rec.StartDate().String(),
	}
	if stop := rec.StopDate(); stop != nil {
		dto.StopDate = stop.String()
	}
	return dto
}

func toBudgetDTO(b *ledger.Budget, periods []*ledger.BudgetSpawn) BudgetDTO {
	dto := BudgetDTO{
		ID:        b.ID(),
		Account:   b.Account().Name,
		Amount:    toAmountDTO(b.Amount()),
		StartDate: b.StartDate().String(),
		Repeat:    string(b.Repeat()),
		Notes:     b.Notes,
		Periods:   make([]BudgetPeriodDTO, 0, len(periods)),
	}
	for _, spawn := range periods {
		dto.Periods = append(dto.Periods, BudgetPeriodDTO{
			RecurrenceDate: spawn.RecurrenceDate().String(),
			Date:           spawn.Date().String(),
			BudgetAmount:   toAmountDTO(spawn.BudgetAmount),
			Difference:     toAmountDTO(spawn.DifferenceInBudget),
			Carry:          toAmountDTO(spawn.CarryAmount),
			CarryReset:     spawn.CarryReset,
		})
	}
	return dto
}
