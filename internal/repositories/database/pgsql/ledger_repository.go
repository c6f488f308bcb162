package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/models"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/utils/mapping"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ledgerAdvisoryLockKey is the advisory lock namespace shared by every
// ledger write. Ordinary writes take it shared for the transaction;
// a recalculation takes it exclusive for its whole session, which
// pauses writes until the replay finishes.
const ledgerAdvisoryLockKey int64 = 0x4C454447

const entryCols = `id, owner_id, currency_code, delta, balance_before, balance_after,
	       event_kind, event_ref_id, event_date, created_at, created_by,
	       status, reversed_at, reversed_by, notes`

const poolEntryCols = entryCols + `, bought_delta, sold_delta`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates the repository over the balance table
// and the three journal tables.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// tableFor maps an owner kind to its journal table.
func tableFor(kind domain.OwnerKind) (string, error) {
	switch kind {
	case domain.OwnerCustomer:
		return "customer_ledger_entries", nil
	case domain.OwnerBankAccount:
		return "bank_ledger_entries", nil
	case domain.OwnerCurrencyPool:
		return "pool_ledger_entries", nil
	}
	return "", apperrors.NewAppError(400, "unknown owner kind "+string(kind), apperrors.ErrValidation)
}

func columnsFor(kind domain.OwnerKind) string {
	if kind == domain.OwnerCurrencyPool {
		return poolEntryCols
	}
	return entryCols
}

// scanModelEntries reads journal rows; pool rows carry the two extra
// counter columns.
func scanModelEntries(rows pgx.Rows, isPool bool) ([]models.JournalEntry, error) {
	defer rows.Close()
	var out []models.JournalEntry
	for rows.Next() {
		var m models.JournalEntry
		dest := []any{
			&m.ID, &m.OwnerID, &m.CurrencyCode, &m.Delta, &m.BalanceBefore, &m.BalanceAfter,
			&m.EventKind, &m.EventRefID, &m.EventDate, &m.CreatedAt, &m.CreatedBy,
			&m.Status, &m.ReversedAt, &m.ReversedBy, &m.Notes,
		}
		if isPool {
			dest = append(dest, &m.BoughtDelta, &m.SoldDelta)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// --- reads ---

func (r *PgxLedgerRepository) FindAccount(ctx context.Context, key domain.AccountKey) (*domain.LedgerAccount, error) {
	query := `
		SELECT owner_kind, owner_id, currency_code, balance, total_bought, total_sold, last_updated_at, last_updated_by
		FROM ledger_accounts
		WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3;
	`
	var m models.LedgerAccount
	err := r.Pool.QueryRow(ctx, query, key.OwnerKind, key.OwnerID, domain.NormalizeCurrencyCode(key.CurrencyCode)).Scan(
		&m.OwnerKind, &m.OwnerID, &m.CurrencyCode, &m.Balance, &m.TotalBought, &m.TotalSold, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("ledger account not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger account", err)
	}
	d := mapping.ToDomainLedgerAccount(m)
	return &d, nil
}

func (r *PgxLedgerRepository) ListPoolAccounts(ctx context.Context) ([]domain.LedgerAccount, error) {
	query := `
		SELECT owner_kind, owner_id, currency_code, balance, total_bought, total_sold, last_updated_at, last_updated_by
		FROM ledger_accounts
		WHERE owner_kind = $1
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, domain.OwnerCurrencyPool)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list pool accounts", err)
	}
	return scanAccounts(rows)
}

func (r *PgxLedgerRepository) ListAccounts(ctx context.Context, kind domain.OwnerKind, limit int) ([]domain.LedgerAccount, error) {
	query := `
		SELECT owner_kind, owner_id, currency_code, balance, total_bought, total_sold, last_updated_at, last_updated_by
		FROM ledger_accounts
		WHERE owner_kind = $1
		ORDER BY owner_id, currency_code
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list ledger accounts", err)
	}
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]domain.LedgerAccount, error) {
	defer rows.Close()
	var ms []models.LedgerAccount
	for rows.Next() {
		var m models.LedgerAccount
		if err := rows.Scan(&m.OwnerKind, &m.OwnerID, &m.CurrencyCode, &m.Balance, &m.TotalBought, &m.TotalSold, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger account", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading ledger accounts", err)
	}
	return mapping.ToDomainLedgerAccountSlice(ms), nil
}

func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, kind domain.OwnerKind, entryID int64) (*domain.JournalEntry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1;`, columnsFor(kind), table)
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find journal entry", err)
	}
	ms, err := scanModelEntries(rows, kind == domain.OwnerCurrencyPool)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan journal entry", err)
	}
	if len(ms) == 0 {
		return nil, apperrors.NewNotFoundError("journal entry not found")
	}
	d := mapping.ToDomainJournalEntry(kind, ms[0])
	return &d, nil
}

func (r *PgxLedgerRepository) FindActiveEntriesByEventRef(ctx context.Context, eventKind domain.EventKind, refID int64) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for _, kind := range []domain.OwnerKind{domain.OwnerCustomer, domain.OwnerBankAccount, domain.OwnerCurrencyPool} {
		table, err := tableFor(kind)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE event_kind = $1 AND event_ref_id = $2 AND status = $3
			ORDER BY id;
		`, columnsFor(kind), table)
		rows, err := r.Pool.Query(ctx, query, eventKind, refID, domain.EntryActive)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to find entries by event reference", err)
		}
		ms, err := scanModelEntries(rows, kind == domain.OwnerCurrencyPool)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entries by event reference", err)
		}
		out = append(out, mapping.ToDomainJournalEntrySlice(kind, ms)...)
	}
	return out, nil
}

func (r *PgxLedgerRepository) ListActiveEntries(ctx context.Context, key domain.AccountKey, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	table, err := tableFor(key.OwnerKind)
	if err != nil {
		return nil, nil, err
	}

	args := []any{key.OwnerID, domain.NormalizeCurrencyCode(key.CurrencyCode), domain.EntryActive}
	cursor := ""
	if nextToken != nil && *nextToken != "" {
		tokDate, tokID, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", errors.Join(apperrors.ErrValidation, err))
		}
		cursor = " AND (event_date, id) > ($4, $5)"
		args = append(args, tokDate, tokID)
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND currency_code = $2 AND status = $3%s
		ORDER BY event_date ASC, id ASC
		LIMIT $%d;
	`, columnsFor(key.OwnerKind), table, cursor, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list journal entries", err)
	}
	ms, err := scanModelEntries(rows, key.OwnerKind == domain.OwnerCurrencyPool)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan journal entries", err)
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[limit-1]
		t := pagination.EncodeEntryToken(last.EventDate, last.ID)
		token = &t
	}
	return mapping.ToDomainJournalEntrySlice(key.OwnerKind, ms), token, nil
}

// --- writes ---

// acquireSharedLedgerLock takes the shared ledger lock for the life of
// the transaction. It fails fast instead of queueing behind an
// exclusive recalculation lock.
func acquireSharedLedgerLock(ctx context.Context, tx pgx.Tx) error {
	var got bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock_shared($1);`, ledgerAdvisoryLockKey).Scan(&got); err != nil {
		return apperrors.NewAppError(500, "failed to acquire ledger lock", err)
	}
	if !got {
		return apperrors.NewAppError(409, "ledger writes are paused during recalculation", apperrors.ErrRecalcInProgress)
	}
	return nil
}

func (r *PgxLedgerRepository) ApplyDrafts(ctx context.Context, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := acquireSharedLedgerLock(ctx, tx); err != nil {
		return nil, err
	}
	entries, err := applyDraftsInTx(ctx, tx, drafts, createdBy, now)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entries, nil
}

// applyDraftsInTx materializes drafts inside tx: it upserts and locks
// the affected account rows, fills before/after snapshots, appends the
// journal rows and writes back the balances and pool counters. Shared
// between ordinary writes and the recalculation session.
func applyDraftsInTx(ctx context.Context, tx pgx.Tx, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error) {
	keys := make([]domain.AccountKey, 0, len(drafts))
	seen := make(map[domain.AccountKey]bool, len(drafts))
	for i := range drafts {
		drafts[i].CurrencyCode = domain.NormalizeCurrencyCode(drafts[i].CurrencyCode)
		k := drafts[i].Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	// Accounts are locked in a deterministic order so concurrent events
	// touching the same accounts cannot deadlock.
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.OwnerKind != b.OwnerKind {
			return a.OwnerKind < b.OwnerKind
		}
		if a.OwnerID != b.OwnerID {
			return a.OwnerID < b.OwnerID
		}
		return a.CurrencyCode < b.CurrencyCode
	})

	balances := make(map[domain.AccountKey]decimal.Decimal, len(keys))
	for _, k := range keys {
		upsert := `
			INSERT INTO ledger_accounts (owner_kind, owner_id, currency_code, balance, total_bought, total_sold, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, 0, 0, 0, $4, $5)
			ON CONFLICT (owner_kind, owner_id, currency_code) DO NOTHING;
		`
		if _, err := tx.Exec(ctx, upsert, k.OwnerKind, k.OwnerID, k.CurrencyCode, now, createdBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to upsert ledger account", classifyPgError(err))
		}
		var bal decimal.Decimal
		lock := `SELECT balance FROM ledger_accounts WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3 FOR UPDATE;`
		if err := tx.QueryRow(ctx, lock, k.OwnerKind, k.OwnerID, k.CurrencyCode).Scan(&bal); err != nil {
			return nil, apperrors.NewAppError(500, "failed to lock ledger account", classifyPgError(err))
		}
		balances[k] = bal
	}

	entries := make([]domain.JournalEntry, 0, len(drafts))
	bought := make(map[domain.AccountKey]decimal.Decimal)
	sold := make(map[domain.AccountKey]decimal.Decimal)
	for _, d := range drafts {
		table, err := tableFor(d.OwnerKind)
		if err != nil {
			return nil, err
		}
		k := d.Key()
		before := balances[k]
		after := before.Add(d.Delta)

		var id int64
		if d.OwnerKind == domain.OwnerCurrencyPool {
			insert := fmt.Sprintf(`
				INSERT INTO %s (owner_id, currency_code, delta, balance_before, balance_after, event_kind, event_ref_id, event_date, created_at, created_by, status, notes, bought_delta, sold_delta)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				RETURNING id;
			`, table)
			err = tx.QueryRow(ctx, insert, k.OwnerID, k.CurrencyCode, d.Delta, before, after,
				d.EventKind, d.EventRefID, d.EventDate, now, createdBy, domain.EntryActive, d.Notes,
				d.BoughtDelta, d.SoldDelta).Scan(&id)
		} else {
			insert := fmt.Sprintf(`
				INSERT INTO %s (owner_id, currency_code, delta, balance_before, balance_after, event_kind, event_ref_id, event_date, created_at, created_by, status, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				RETURNING id;
			`, table)
			err = tx.QueryRow(ctx, insert, k.OwnerID, k.CurrencyCode, d.Delta, before, after,
				d.EventKind, d.EventRefID, d.EventDate, now, createdBy, domain.EntryActive, d.Notes).Scan(&id)
		}
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to insert journal entry", classifyPgError(err))
		}

		balances[k] = after
		bought[k] = bought[k].Add(d.BoughtDelta)
		sold[k] = sold[k].Add(d.SoldDelta)

		entries = append(entries, domain.JournalEntry{
			ID:            id,
			OwnerKind:     d.OwnerKind,
			OwnerID:       k.OwnerID,
			CurrencyCode:  k.CurrencyCode,
			Delta:         d.Delta,
			BalanceBefore: before,
			BalanceAfter:  after,
			EventKind:     d.EventKind,
			EventRefID:    d.EventRefID,
			EventDate:     d.EventDate,
			CreatedAt:     now,
			CreatedBy:     createdBy,
			Status:        domain.EntryActive,
			Notes:         d.Notes,
		})
	}

	update := `
		UPDATE ledger_accounts
		SET balance = $4, total_bought = total_bought + $5, total_sold = total_sold + $6, last_updated_at = $7, last_updated_by = $8
		WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3;
	`
	for _, k := range keys {
		if _, err := tx.Exec(ctx, update, k.OwnerKind, k.OwnerID, k.CurrencyCode, balances[k], bought[k], sold[k], now, createdBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to update ledger balance", classifyPgError(err))
		}
	}
	return entries, nil
}

func (r *PgxLedgerRepository) ReverseByEventRef(ctx context.Context, eventKind domain.EventKind, refID int64, by string, now time.Time) ([]domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := acquireSharedLedgerLock(ctx, tx); err != nil {
		return nil, err
	}

	var reversed []domain.JournalEntry
	for _, kind := range []domain.OwnerKind{domain.OwnerCustomer, domain.OwnerBankAccount, domain.OwnerCurrencyPool} {
		table, err := tableFor(kind)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE event_kind = $1 AND event_ref_id = $2 AND status = $3
			ORDER BY id
			FOR UPDATE;
		`, columnsFor(kind), table)
		rows, err := tx.Query(ctx, query, eventKind, refID, domain.EntryActive)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to select entries for reversal", classifyPgError(err))
		}
		ms, err := scanModelEntries(rows, kind == domain.OwnerCurrencyPool)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entries for reversal", err)
		}
		for _, m := range ms {
			if err := reverseOneInTx(ctx, tx, kind, m, by, now); err != nil {
				return nil, err
			}
			d := mapping.ToDomainJournalEntry(kind, m)
			d.Status = domain.EntryReversed
			d.ReversedAt = &now
			d.ReversedBy = by
			reversed = append(reversed, d)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return reversed, nil
}

func (r *PgxLedgerRepository) ReverseEntryByID(ctx context.Context, kind domain.OwnerKind, entryID int64, by string, now time.Time) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	if err := acquireSharedLedgerLock(ctx, tx); err != nil {
		return false, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE;`, columnsFor(kind), table)
	rows, err := tx.Query(ctx, query, entryID)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to select entry for reversal", classifyPgError(err))
	}
	ms, err := scanModelEntries(rows, kind == domain.OwnerCurrencyPool)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to scan entry for reversal", err)
	}
	if len(ms) == 0 {
		return false, apperrors.NewNotFoundError("journal entry not found")
	}
	if ms[0].Status != string(domain.EntryActive) {
		// Already reversed: idempotent no-op.
		return false, nil
	}
	if err := reverseOneInTx(ctx, tx, kind, ms[0], by, now); err != nil {
		return false, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// reverseOneInTx soft-deletes one active entry: flips its status,
// appends a born-reversed compensating entry for the audit trail, and
// backs the delta (and pool counters) out of the account balance.
func reverseOneInTx(ctx context.Context, tx pgx.Tx, kind domain.OwnerKind, m models.JournalEntry, by string, now time.Time) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	var bal decimal.Decimal
	lock := `SELECT balance FROM ledger_accounts WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lock, kind, m.OwnerID, m.CurrencyCode).Scan(&bal); err != nil {
		return apperrors.NewAppError(500, "failed to lock account for reversal", classifyPgError(err))
	}
	newBal := bal.Sub(m.Delta)

	flip := fmt.Sprintf(`UPDATE %s SET status = $2, reversed_at = $3, reversed_by = $4 WHERE id = $1;`, table)
	if _, err := tx.Exec(ctx, flip, m.ID, domain.EntryReversed, now, by); err != nil {
		return apperrors.NewAppError(500, "failed to mark entry reversed", classifyPgError(err))
	}

	note := fmt.Sprintf("reversal of entry #%d: %s", m.ID, m.Notes)
	if kind == domain.OwnerCurrencyPool {
		insert := fmt.Sprintf(`
			INSERT INTO %s (owner_id, currency_code, delta, balance_before, balance_after, event_kind, event_ref_id, event_date, created_at, created_by, status, reversed_at, reversed_by, notes, bought_delta, sold_delta)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
		`, table)
		if _, err := tx.Exec(ctx, insert, m.OwnerID, m.CurrencyCode, m.Delta.Neg(), bal, newBal,
			domain.EventReversal, m.EventRefID, now, now, by, domain.EntryReversed, now, by, note,
			m.BoughtDelta.Neg(), m.SoldDelta.Neg()); err != nil {
			return apperrors.NewAppError(500, "failed to insert compensating entry", classifyPgError(err))
		}
	} else {
		insert := fmt.Sprintf(`
			INSERT INTO %s (owner_id, currency_code, delta, balance_before, balance_after, event_kind, event_ref_id, event_date, created_at, created_by, status, reversed_at, reversed_by, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`, table)
		if _, err := tx.Exec(ctx, insert, m.OwnerID, m.CurrencyCode, m.Delta.Neg(), bal, newBal,
			domain.EventReversal, m.EventRefID, now, now, by, domain.EntryReversed, now, by, note); err != nil {
			return apperrors.NewAppError(500, "failed to insert compensating entry", classifyPgError(err))
		}
	}

	update := `
		UPDATE ledger_accounts
		SET balance = $4, total_bought = total_bought - $5, total_sold = total_sold - $6, last_updated_at = $7, last_updated_by = $8
		WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3;
	`
	if _, err := tx.Exec(ctx, update, kind, m.OwnerID, m.CurrencyCode, newBal, m.BoughtDelta, m.SoldDelta, now, by); err != nil {
		return apperrors.NewAppError(500, "failed to restore ledger balance", classifyPgError(err))
	}
	return nil
}

// --- recalculation session ---

// BeginRecalc takes the exclusive ledger lock on a pinned connection.
// The try-lock fails while ordinary writes hold the shared lock or
// while another recalculation is running.
func (r *PgxLedgerRepository) BeginRecalc(ctx context.Context) (portsrepo.RecalcSession, error) {
	conn, err := r.Pool.Acquire(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to acquire connection for recalculation", err)
	}
	var got bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1);`, ledgerAdvisoryLockKey).Scan(&got); err != nil {
		conn.Release()
		return nil, apperrors.NewAppError(500, "failed to acquire recalculation lock", err)
	}
	if !got {
		conn.Release()
		return nil, apperrors.NewAppError(409, "ledger is busy, recalculation cannot start", apperrors.ErrRecalcInProgress)
	}
	return &recalcSession{conn: conn}, nil
}

type recalcSession struct {
	conn *pgxpool.Conn
}

var _ portsrepo.RecalcSession = (*recalcSession)(nil)

func (s *recalcSession) ListManualEntries(ctx context.Context) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for _, kind := range []domain.OwnerKind{domain.OwnerCustomer, domain.OwnerBankAccount, domain.OwnerCurrencyPool} {
		table, err := tableFor(kind)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE event_kind = $1 AND status = $2
			ORDER BY event_date, id;
		`, columnsFor(kind), table)
		rows, err := s.conn.Query(ctx, query, domain.EventManual, domain.EntryActive)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to list manual entries", err)
		}
		ms, err := scanModelEntries(rows, kind == domain.OwnerCurrencyPool)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan manual entries", err)
		}
		out = append(out, mapping.ToDomainJournalEntrySlice(kind, ms)...)
	}
	return out, nil
}

func (s *recalcSession) ListPoolManualEntries(ctx context.Context, currencyCode string) ([]domain.JournalEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM pool_ledger_entries
		WHERE event_kind = $1 AND status = $2 AND currency_code = $3
		ORDER BY event_date, id;
	`, poolEntryCols)
	rows, err := s.conn.Query(ctx, query, domain.EventManual, domain.EntryActive, domain.NormalizeCurrencyCode(currencyCode))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list pool manual entries", err)
	}
	ms, err := scanModelEntries(rows, true)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan pool manual entries", err)
	}
	return mapping.ToDomainJournalEntrySlice(domain.OwnerCurrencyPool, ms), nil
}

func (s *recalcSession) ResetLedgers(ctx context.Context) error {
	for _, table := range []string{"customer_ledger_entries", "bank_ledger_entries", "pool_ledger_entries"} {
		del := fmt.Sprintf(`DELETE FROM %s WHERE event_kind <> $1;`, table)
		if _, err := s.conn.Exec(ctx, del, domain.EventManual); err != nil {
			return apperrors.NewAppError(500, "failed to clear journal "+table, err)
		}
	}
	reset := `UPDATE ledger_accounts SET balance = 0, total_bought = 0, total_sold = 0, last_updated_at = NOW();`
	if _, err := s.conn.Exec(ctx, reset); err != nil {
		return apperrors.NewAppError(500, "failed to zero ledger balances", err)
	}
	return nil
}

func (s *recalcSession) ResetPoolLedger(ctx context.Context, currencyCode string) error {
	code := domain.NormalizeCurrencyCode(currencyCode)
	del := `DELETE FROM pool_ledger_entries WHERE currency_code = $1 AND event_kind <> $2;`
	if _, err := s.conn.Exec(ctx, del, code, domain.EventManual); err != nil {
		return apperrors.NewAppError(500, "failed to clear pool journal", err)
	}
	reset := `
		UPDATE ledger_accounts SET balance = 0, total_bought = 0, total_sold = 0, last_updated_at = NOW()
		WHERE owner_kind = $1 AND currency_code = $2;
	`
	if _, err := s.conn.Exec(ctx, reset, domain.OwnerCurrencyPool, code); err != nil {
		return apperrors.NewAppError(500, "failed to zero pool balance", err)
	}
	return nil
}

func (s *recalcSession) ApplyDrafts(ctx context.Context, drafts []domain.EntryDraft, createdBy string, now time.Time) ([]domain.JournalEntry, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	entries, err := applyDraftsInTx(ctx, tx, drafts, createdBy, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit transaction", classifyPgError(err))
	}
	return entries, nil
}

func (s *recalcSession) RestoreManualEntry(ctx context.Context, entry domain.JournalEntry) error {
	table, err := tableFor(entry.OwnerKind)
	if err != nil {
		return err
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	upsert := `
		INSERT INTO ledger_accounts (owner_kind, owner_id, currency_code, balance, total_bought, total_sold, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, 0, 0, 0, $4, $5)
		ON CONFLICT (owner_kind, owner_id, currency_code) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, upsert, entry.OwnerKind, entry.OwnerID, entry.CurrencyCode, now, entry.CreatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to upsert account for manual entry", err)
	}
	var bal decimal.Decimal
	lock := `SELECT balance FROM ledger_accounts WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lock, entry.OwnerKind, entry.OwnerID, entry.CurrencyCode).Scan(&bal); err != nil {
		return apperrors.NewAppError(500, "failed to lock account for manual entry", err)
	}
	after := bal.Add(entry.Delta)

	// The manual row itself is preserved; only its snapshots are
	// rewritten to agree with the rebuilt history around it.
	rewrite := fmt.Sprintf(`UPDATE %s SET balance_before = $2, balance_after = $3 WHERE id = $1;`, table)
	if _, err := tx.Exec(ctx, rewrite, entry.ID, bal, after); err != nil {
		return apperrors.NewAppError(500, "failed to rewrite manual entry snapshots", err)
	}

	update := `
		UPDATE ledger_accounts SET balance = $4, last_updated_at = $5
		WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3;
	`
	if _, err := tx.Exec(ctx, update, entry.OwnerKind, entry.OwnerID, entry.CurrencyCode, after, now); err != nil {
		return apperrors.NewAppError(500, "failed to update balance for manual entry", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit manual entry restore", classifyPgError(err))
	}
	return nil
}

func (s *recalcSession) Close() {
	ctx := context.Background()
	_, _ = s.conn.Exec(ctx, `SELECT pg_advisory_unlock($1);`, ledgerAdvisoryLockKey)
	s.conn.Release()
}
