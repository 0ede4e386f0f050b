/*
Package sqlite persists a forecasting document to SQLite.

The ledger is file-grained: a document is saved and loaded as a whole, the
way a desktop accounting file works. Cooked results (spawns, entries,
running balances) are never stored; they are recomputed from the posted
collections after load.

KEY TABLES:

	accounts:         account registry (name, currency, type)
	transactions:     posted transactions
	splits:           transaction legs, ordered, with reconciliation dates
	schedules:        recurrence rules with their template transaction
	schedule_changes: per-occurrence exceptions, deletions, global changes
	budgets:          budget rules per account
	budget_changes:   per-period amount overrides and carry resets
	meta:             the universal budgeting period

Template and exception transactions are stored as JSON documents rather
than rows: they are opaque to queries and always read back whole.

WAL MODE:

	SQLite is opened with WAL so readers don't block the writer.

MIGRATION:

	Schema is auto-migrated on New(). For production, use a versioned
	migration tool instead.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hearth/forecast-engine/document"
	"github.com/hearth/forecast-engine/ledger"
)

// Store persists document snapshots in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		name TEXT PRIMARY KEY,
		currency TEXT NOT NULL,
		type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT,
		date TEXT NOT NULL,
		description TEXT,
		payee TEXT,
		check_number TEXT,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(date, position);

	CREATE TABLE IF NOT EXISTS splits (
		txn_seq INTEGER NOT NULL REFERENCES transactions(seq) ON DELETE CASCADE,
		ord INTEGER NOT NULL,
		account TEXT,
		value TEXT NOT NULL,
		currency TEXT,
		memo TEXT,
		reconciliation_date TEXT,
		PRIMARY KEY (txn_seq, ord)
	);

	CREATE INDEX IF NOT EXISTS idx_splits_account
		ON splits(account) WHERE account IS NOT NULL;

	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		repeat TEXT NOT NULL,
		every INTEGER NOT NULL,
		stop_date TEXT,
		ref_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedule_changes (
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		recurrence_date TEXT NOT NULL,
		kind TEXT NOT NULL,
		txn_json TEXT,
		PRIMARY KEY (schedule_id, recurrence_date, kind)
	);

	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL,
		value TEXT NOT NULL,
		currency TEXT,
		start_date TEXT NOT NULL,
		repeat TEXT NOT NULL,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS budget_changes (
		budget_id TEXT NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
		recurrence_date TEXT NOT NULL,
		value TEXT,
		currency TEXT,
		carry_reset BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (budget_id, recurrence_date)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// JSON RECORDS
// =============================================================================

// Template and exception transactions round-trip as JSON; posted
// transactions get real rows.

type splitRecord struct {
	Account            string `json:"account,omitempty"`
	Value              string `json:"value"`
	Currency           string `json:"currency,omitempty"`
	Memo               string `json:"memo,omitempty"`
	ReconciliationDate string `json:"reconciliation_date,omitempty"`
}

type txnRecord struct {
	ID          string        `json:"id,omitempty"`
	Date        string        `json:"date"`
	Description string        `json:"description,omitempty"`
	Payee       string        `json:"payee,omitempty"`
	CheckNumber string        `json:"check_number,omitempty"`
	Position    int           `json:"position,omitempty"`
	Splits      []splitRecord `json:"splits"`
}

func encodeTxn(txn *ledger.Transaction) txnRecord {
	rec := txnRecord{
		ID:          txn.ID,
		Date:        txn.Date.String(),
		Description: txn.Description,
		Payee:       txn.Payee,
		CheckNumber: txn.CheckNumber,
		Position:    txn.Position,
	}
	for _, split := range txn.Splits {
		sr := splitRecord{
			Value:    split.Amount.Value.String(),
			Currency: split.Amount.Currency,
			Memo:     split.Memo,
		}
		if split.Account != nil {
			sr.Account = split.Account.Name
		}
		if split.ReconciliationDate != nil {
			sr.ReconciliationDate = split.ReconciliationDate.String()
		}
		rec.Splits = append(rec.Splits, sr)
	}
	return rec
}

func decodeTxn(rec txnRecord, resolve func(name string) *ledger.Account) (*ledger.Transaction, error) {
	date, err := ledger.ParseDate(rec.Date)
	if err != nil {
		return nil, fmt.Errorf("bad transaction date %q: %w", rec.Date, err)
	}
	txn := &ledger.Transaction{
		ID:          rec.ID,
		Date:        date,
		Description: rec.Description,
		Payee:       rec.Payee,
		CheckNumber: rec.CheckNumber,
		Position:    rec.Position,
	}
	for _, sr := range rec.Splits {
		amount, err := ledger.ParseAmount(sr.Value, sr.Currency)
		if err != nil {
			return nil, fmt.Errorf("bad split amount %q: %w", sr.Value, err)
		}
		split := &ledger.Split{Amount: amount, Memo: sr.Memo}
		if sr.Account != "" {
			split.Account = resolve(sr.Account)
			if split.Account == nil {
				return nil, fmt.Errorf("split references unknown account %q", sr.Account)
			}
		}
		if sr.ReconciliationDate != "" {
			rdate, err := ledger.ParseDate(sr.ReconciliationDate)
			if err != nil {
				return nil, fmt.Errorf("bad reconciliation date %q: %w", sr.ReconciliationDate, err)
			}
			split.ReconciliationDate = &rdate
		}
		txn.Splits = append(txn.Splits, split)
	}
	return txn, nil
}

func marshalTxn(txn *ledger.Transaction) (string, error) {
	raw, err := json.Marshal(encodeTxn(txn))
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return string(raw), nil
}

func unmarshalTxn(raw string, resolve func(name string) *ledger.Account) (*ledger.Transaction, error) {
	var rec txnRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return decodeTxn(rec, resolve)
}

// =============================================================================
// SAVE
// =============================================================================

// Save replaces the stored document with the given snapshot, atomically.
func (s *Store) Save(ctx context.Context, snap *document.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, table := range []string{
		"splits", "transactions", "schedule_changes", "schedules",
		"budget_changes", "budgets", "accounts", "meta",
	} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := s.saveAccounts(ctx, sqlTx, snap.Accounts); err != nil {
		return err
	}
	if err := s.saveTransactions(ctx, sqlTx, snap.Transactions); err != nil {
		return err
	}
	if err := s.saveSchedules(ctx, sqlTx, snap.Schedules); err != nil {
		return err
	}
	if err := s.saveBudgets(ctx, sqlTx, snap.Budgets); err != nil {
		return err
	}
	if err := s.saveMeta(ctx, sqlTx, snap); err != nil {
		return err
	}

	return sqlTx.Commit()
}

func (s *Store) saveAccounts(ctx context.Context, tx *sql.Tx, accounts []*ledger.Account) error {
	for _, account := range accounts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (name, currency, type) VALUES (?, ?, ?)",
			account.Name, account.Currency, string(account.Type),
		)
		if err != nil {
			return fmt.Errorf("failed to save account %q: %w", account.Name, err)
		}
	}
	return nil
}

func (s *Store) saveTransactions(ctx context.Context, tx *sql.Tx, txns []*ledger.Transaction) error {
	for _, txn := range txns {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, date, description, payee, check_number, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			nullString(txn.ID), txn.Date.String(), txn.Description,
			txn.Payee, txn.CheckNumber, txn.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read transaction seq: %w", err)
		}
		for ord, split := range txn.Splits {
			var account, rdate any
			if split.Account != nil {
				account = split.Account.Name
			}
			if split.ReconciliationDate != nil {
				rdate = split.ReconciliationDate.String()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO splits (txn_seq, ord, account, value, currency, memo, reconciliation_date)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				seq, ord, account, split.Amount.Value.String(),
				split.Amount.Currency, split.Memo, rdate,
			)
			if err != nil {
				return fmt.Errorf("failed to save split: %w", err)
			}
		}
	}
	return nil
}

func (s *Store) saveSchedules(ctx context.Context, tx *sql.Tx, schedules []*ledger.Recurrence) error {
	for _, rec := range schedules {
		refJSON, err := marshalTxn(rec.Ref())
		if err != nil {
			return err
		}
		var stop any
		if sd := rec.StopDate(); sd != nil {
			stop = sd.String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedules (id, repeat, every, stop_date, ref_json)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID(), string(rec.Repeat()), rec.Every(), stop, refJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to save schedule %q: %w", rec.ID(), err)
		}

		insert := func(date ledger.Date, kind string, txn *ledger.Transaction) error {
			var txnJSON any
			if txn != nil {
				raw, err := marshalTxn(txn)
				if err != nil {
					return err
				}
				txnJSON = raw
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schedule_changes (schedule_id, recurrence_date, kind, txn_json)
				 VALUES (?, ?, ?, ?)`,
				rec.ID(), date.String(), kind, txnJSON,
			)
			if err != nil {
				return fmt.Errorf("failed to save schedule change: %w", err)
			}
			return nil
		}
		for date, txn := range rec.Exceptions() {
			if err := insert(date, "exception", txn); err != nil {
				return err
			}
		}
		for date := range rec.DeletedDates() {
			if err := insert(date, "deleted", nil); err != nil {
				return err
			}
		}
		for date, txn := range rec.GlobalChanges() {
			if err := insert(date, "global", txn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) saveBudgets(ctx context.Context, tx *sql.Tx, budgets []*ledger.Budget) error {
	for _, b := range budgets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (id, account, value, currency, start_date, repeat, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID(), b.Account().Name, b.Amount().Value.String(),
			b.Amount().Currency, b.StartDate().String(), string(b.Repeat()), b.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to save budget %q: %w", b.ID(), err)
		}
		for date, exc := range b.Exceptions() {
			var value, currency any
			if exc.Amount != nil {
				value = exc.Amount.Value.String()
				currency = exc.Amount.Currency
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO budget_changes (budget_id, recurrence_date, value, currency, carry_reset)
				 VALUES (?, ?, ?, ?, ?)`,
				b.ID(), date.String(), value, currency, exc.CarryReset,
			)
			if err != nil {
				return fmt.Errorf("failed to save budget change: %w", err)
			}
		}
	}
	return nil
}

func (s *Store) saveMeta(ctx context.Context, tx *sql.Tx, snap *document.Snapshot) error {
	pairs := map[string]string{
		"budget_start":  snap.BudgetStart.String(),
		"budget_repeat": string(snap.BudgetRepeat),
		"budget_every":  fmt.Sprintf("%d", snap.BudgetEvery),
	}
	for key, value := range pairs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?)", key, value)
		if err != nil {
			return fmt.Errorf("failed to save meta %q: %w", key, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the stored document back as a snapshot. An empty database
// yields an empty snapshot, not an error.
func (s *Store) Load(ctx context.Context) (*document.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &document.Snapshot{}

	byName := make(map[string]*ledger.Account)
	if err := s.loadAccounts(ctx, snap, byName); err != nil {
		return nil, err
	}
	resolve := func(name string) *ledger.Account { return byName[name] }

	if err := s.loadTransactions(ctx, snap, resolve); err != nil {
		return nil, err
	}
	if err := s.loadSchedules(ctx, snap, resolve); err != nil {
		return nil, err
	}
	if err := s.loadBudgets(ctx, snap, resolve); err != nil {
		return nil, err
	}
	if err := s.loadMeta(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadAccounts(ctx context.Context, snap *document.Snapshot, byName map[string]*ledger.Account) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, currency, type FROM accounts ORDER BY name")
	if err != nil {
		return fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, currency, typ string
		if err := rows.Scan(&name, &currency, &typ); err != nil {
			return fmt.Errorf("failed to scan account: %w", err)
		}
		account := &ledger.Account{Name: name, Currency: currency, Type: ledger.AccountType(typ)}
		snap.Accounts = append(snap.Accounts, account)
		byName[name] = account
	}
	return rows.Err()
}

func (s *Store) loadTransactions(ctx context.Context, snap *document.Snapshot, resolve func(string) *ledger.Account) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, date, description, payee, check_number, position
		 FROM transactions ORDER BY date, position`)
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	bySeq := make(map[int64]*ledger.Transaction)
	var order []int64
	for rows.Next() {
		var (
			seq         int64
			id          sql.NullString
			date        string
			description sql.NullString
			payee       sql.NullString
			checkNumber sql.NullString
			position    int
		)
		if err := rows.Scan(&seq, &id, &date, &description, &payee, &checkNumber, &position); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		d, err := ledger.ParseDate(date)
		if err != nil {
			return fmt.Errorf("bad transaction date %q: %w", date, err)
		}
		txn := &ledger.Transaction{
			ID:          id.String,
			Date:        d,
			Description: description.String,
			Payee:       payee.String,
			CheckNumber: checkNumber.String,
			Position:    position,
		}
		bySeq[seq] = txn
		order = append(order, seq)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT txn_seq, account, value, currency, memo, reconciliation_date
		 FROM splits ORDER BY txn_seq, ord`)
	if err != nil {
		return fmt.Errorf("failed to query splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var (
			seq      int64
			account  sql.NullString
			value    string
			currency sql.NullString
			memo     sql.NullString
			rdate    sql.NullString
		)
		if err := splitRows.Scan(&seq, &account, &value, &currency, &memo, &rdate); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		txn, ok := bySeq[seq]
		if !ok {
			return fmt.Errorf("split references unknown transaction %d", seq)
		}
		amount, err := ledger.ParseAmount(value, currency.String)
		if err != nil {
			return fmt.Errorf("bad split amount %q: %w", value, err)
		}
		split := &ledger.Split{Amount: amount, Memo: memo.String}
		if account.Valid {
			split.Account = resolve(account.String)
			if split.Account == nil {
				return fmt.Errorf("split references unknown account %q", account.String)
			}
		}
		if rdate.Valid {
			d, err := ledger.ParseDate(rdate.String)
			if err != nil {
				return fmt.Errorf("bad reconciliation date %q: %w", rdate.String, err)
			}
			split.ReconciliationDate = &d
		}
		txn.Splits = append(txn.Splits, split)
	}
	if err := splitRows.Err(); err != nil {
		return err
	}

	for _, seq := range order {
		snap.Transactions = append(snap.Transactions, bySeq[seq])
	}
	return nil
}

func (s *Store) loadSchedules(ctx context.Context, snap *document.Snapshot, resolve func(string) *ledger.Account) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, repeat, every, stop_date, ref_json FROM schedules ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*ledger.Recurrence)
	for rows.Next() {
		var (
			id, repeat, refJSON string
			every               int
			stop                sql.NullString
		)
		if err := rows.Scan(&id, &repeat, &every, &stop, &refJSON); err != nil {
			return fmt.Errorf("failed to scan schedule: %w", err)
		}
		ref, err := unmarshalTxn(refJSON, resolve)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", id, err)
		}
		rec := ledger.NewRecurrence(id, ref, ledger.RepeatType(repeat), every)
		if stop.Valid {
			d, err := ledger.ParseDate(stop.String)
			if err != nil {
				return fmt.Errorf("bad stop date %q: %w", stop.String, err)
			}
			rec.SetStopDate(d)
		}
		snap.Schedules = append(snap.Schedules, rec)
		byID[id] = rec
	}
	if err := rows.Err(); err != nil {
		return err
	}

	changeRows, err := s.db.QueryContext(ctx,
		"SELECT schedule_id, recurrence_date, kind, txn_json FROM schedule_changes")
	if err != nil {
		return fmt.Errorf("failed to query schedule changes: %w", err)
	}
	defer changeRows.Close()

	for changeRows.Next() {
		var (
			scheduleID, date, kind string
			txnJSON                sql.NullString
		)
		if err := changeRows.Scan(&scheduleID, &date, &kind, &txnJSON); err != nil {
			return fmt.Errorf("failed to scan schedule change: %w", err)
		}
		rec, ok := byID[scheduleID]
		if !ok {
			return fmt.Errorf("change references unknown schedule %q", scheduleID)
		}
		d, err := ledger.ParseDate(date)
		if err != nil {
			return fmt.Errorf("bad change date %q: %w", date, err)
		}
		var txn *ledger.Transaction
		if txnJSON.Valid {
			txn, err = unmarshalTxn(txnJSON.String, resolve)
			if err != nil {
				return fmt.Errorf("schedule %q change at %s: %w", scheduleID, date, err)
			}
		}
		switch kind {
		case "exception":
			rec.AddException(d, txn)
		case "deleted":
			rec.DeleteDate(d)
		case "global":
			rec.AddGlobalChange(d, txn)
		default:
			return fmt.Errorf("unknown schedule change kind %q", kind)
		}
	}
	return changeRows.Err()
}

func (s *Store) loadBudgets(ctx context.Context, snap *document.Snapshot, resolve func(string) *ledger.Account) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, account, value, currency, start_date, repeat, notes FROM budgets ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*ledger.Budget)
	for rows.Next() {
		var (
			id, accountName, value, start, repeat string
			currency, notes                       sql.NullString
		)
		if err := rows.Scan(&id, &accountName, &value, &currency, &start, &repeat, &notes); err != nil {
			return fmt.Errorf("failed to scan budget: %w", err)
		}
		account := resolve(accountName)
		if account == nil {
			return fmt.Errorf("budget %q references unknown account %q", id, accountName)
		}
		amount, err := ledger.ParseAmount(value, currency.String)
		if err != nil {
			return fmt.Errorf("bad budget amount %q: %w", value, err)
		}
		startDate, err := ledger.ParseDate(start)
		if err != nil {
			return fmt.Errorf("bad budget start %q: %w", start, err)
		}
		b := ledger.NewBudget(id, account, amount, startDate, ledger.RepeatType(repeat))
		b.Notes = notes.String
		snap.Budgets = append(snap.Budgets, b)
		byID[id] = b
	}
	if err := rows.Err(); err != nil {
		return err
	}

	changeRows, err := s.db.QueryContext(ctx,
		"SELECT budget_id, recurrence_date, value, currency, carry_reset FROM budget_changes")
	if err != nil {
		return fmt.Errorf("failed to query budget changes: %w", err)
	}
	defer changeRows.Close()

	for changeRows.Next() {
		var (
			budgetID, date  string
			value, currency sql.NullString
			carryReset      bool
		)
		if err := changeRows.Scan(&budgetID, &date, &value, &currency, &carryReset); err != nil {
			return fmt.Errorf("failed to scan budget change: %w", err)
		}
		b, ok := byID[budgetID]
		if !ok {
			return fmt.Errorf("change references unknown budget %q", budgetID)
		}
		d, err := ledger.ParseDate(date)
		if err != nil {
			return fmt.Errorf("bad change date %q: %w", date, err)
		}
		exc := ledger.BudgetException{CarryReset: carryReset}
		if value.Valid {
			amount, err := ledger.ParseAmount(value.String, currency.String)
			if err != nil {
				return fmt.Errorf("bad budget change amount %q: %w", value.String, err)
			}
			exc.Amount = &amount
		}
		b.AddException(d, exc)
	}
	return changeRows.Err()
}

func (s *Store) loadMeta(ctx context.Context, snap *document.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return fmt.Errorf("failed to query meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan meta: %w", err)
		}
		switch key {
		case "budget_start":
			d, err := ledger.ParseDate(value)
			if err == nil {
				snap.BudgetStart = d
			}
		case "budget_repeat":
			snap.BudgetRepeat = ledger.RepeatType(value)
		case "budget_every":
			fmt.Sscanf(value, "%d", &snap.BudgetEvery)
		}
	}
	return rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
