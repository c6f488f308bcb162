package pgsql

import (
	"context"
	"errors"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/models"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxEventRepository is the read-only view over the order and document
// tables owned by the surrounding CRUD controllers.
type PgxEventRepository struct {
	BaseRepository
}

func newPgxEventRepository(pool *pgxpool.Pool) portsrepo.EventReader {
	return &PgxEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EventReader = (*PgxEventRepository)(nil)

const orderCols = `id, customer_id, from_currency, from_amount, to_currency, to_amount, rate, created_at, created_by, is_deleted`

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var ms []models.Order
	for rows.Next() {
		var m models.Order
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.FromCurrency, &m.FromAmount, &m.ToCurrency, &m.ToAmount, &m.Rate, &m.CreatedAt, &m.CreatedBy, &m.IsDeleted); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan order", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading orders", err)
	}
	return mapping.ToDomainOrderSlice(ms), nil
}

func (r *PgxEventRepository) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders WHERE is_deleted = FALSE ORDER BY created_at, id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list orders", err)
	}
	return scanOrders(rows)
}

func (r *PgxEventRepository) ListActiveOrdersByCurrency(ctx context.Context, currencyCode string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderCols + ` FROM orders
		WHERE is_deleted = FALSE AND (from_currency = $1 OR to_currency = $1)
		ORDER BY created_at, id;
	`
	rows, err := r.Pool.Query(ctx, query, domain.NormalizeCurrencyCode(currencyCode))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list orders by currency", err)
	}
	return scanOrders(rows)
}

func (r *PgxEventRepository) ListAppliedDocuments(ctx context.Context) ([]domain.AccountingDocument, error) {
	query := `
		SELECT id, payer_customer_id, receiver_customer_id, payer_bank_account_id, receiver_bank_account_id,
		       currency_code, amount, document_date, is_verified, is_deleted, created_by
		FROM accounting_documents
		WHERE is_deleted = FALSE AND is_verified = TRUE
		ORDER BY document_date, id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounting documents", err)
	}
	defer rows.Close()
	var ms []models.AccountingDocument
	for rows.Next() {
		var m models.AccountingDocument
		if err := rows.Scan(&m.ID, &m.PayerCustomerID, &m.ReceiverCustomerID, &m.PayerBankAccountID, &m.ReceiverBankAccountID,
			&m.CurrencyCode, &m.Amount, &m.DocumentDate, &m.IsVerified, &m.IsDeleted, &m.CreatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan accounting document", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading accounting documents", err)
	}
	return mapping.ToDomainAccountingDocumentSlice(ms), nil
}

func (r *PgxEventRepository) CountSkippedEvents(ctx context.Context) (int, int, error) {
	var orders, documents int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE is_deleted = TRUE;`).Scan(&orders); err != nil {
		return 0, 0, apperrors.NewAppError(500, "failed to count skipped orders", err)
	}
	query := `SELECT COUNT(*) FROM accounting_documents WHERE is_deleted = TRUE OR is_verified = FALSE;`
	if err := r.Pool.QueryRow(ctx, query).Scan(&documents); err != nil {
		return 0, 0, apperrors.NewAppError(500, "failed to count skipped documents", err)
	}
	return orders, documents, nil
}

func (r *PgxEventRepository) FindCustomerByID(ctx context.Context, customerID int64) (*domain.CustomerRef, error) {
	query := `SELECT id, display_name, is_deleted FROM customers WHERE id = $1;`
	var m models.Customer
	err := r.Pool.QueryRow(ctx, query, customerID).Scan(&m.ID, &m.DisplayName, &m.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("customer not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find customer", err)
	}
	d := mapping.ToDomainCustomerRef(m)
	return &d, nil
}

func (r *PgxEventRepository) FindBankAccountByID(ctx context.Context, bankAccountID int64) (*domain.BankAccountRef, error) {
	query := `SELECT id, title, currency_code, is_deleted FROM bank_accounts WHERE id = $1;`
	var m models.BankAccount
	err := r.Pool.QueryRow(ctx, query, bankAccountID).Scan(&m.ID, &m.Title, &m.CurrencyCode, &m.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("bank account not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find bank account", err)
	}
	d := mapping.ToDomainBankAccountRef(m)
	return &d, nil
}
