package pgsql

import (
	"context"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portsrepo "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/repositories"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/models"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRecalcRunRepository struct {
	BaseRepository
}

func newPgxRecalcRunRepository(pool *pgxpool.Pool) portsrepo.RecalcRunRepositoryFacade {
	return &PgxRecalcRunRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RecalcRunRepositoryFacade = (*PgxRecalcRunRepository)(nil)

func (r *PgxRecalcRunRepository) CreateRun(ctx context.Context, run domain.RecalculationRun) error {
	m := mapping.ToModelRecalculationRun(run)
	query := `
		INSERT INTO recalculation_runs (run_id, scope, status, started_at, finished_at, performed_by, processed, skipped, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query, m.RunID, m.Scope, m.Status, m.StartedAt, m.FinishedAt, m.PerformedBy, m.Processed, m.Skipped, m.Note)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert recalculation run", classifyPgError(err))
	}
	return nil
}

func (r *PgxRecalcRunRepository) FinishRun(ctx context.Context, run domain.RecalculationRun) error {
	m := mapping.ToModelRecalculationRun(run)
	query := `
		UPDATE recalculation_runs
		SET status = $2, finished_at = $3, processed = $4, skipped = $5, note = $6
		WHERE run_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, m.RunID, m.Status, m.FinishedAt, m.Processed, m.Skipped, m.Note)
	if err != nil {
		return apperrors.NewAppError(500, "failed to finalize recalculation run", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("recalculation run not found")
	}
	return nil
}

func (r *PgxRecalcRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.RecalculationRun, error) {
	query := `
		SELECT run_id, scope, status, started_at, finished_at, performed_by, processed, skipped, note
		FROM recalculation_runs
		ORDER BY started_at DESC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list recalculation runs", err)
	}
	defer rows.Close()

	var out []domain.RecalculationRun
	for rows.Next() {
		var m models.RecalculationRun
		if err := rows.Scan(&m.RunID, &m.Scope, &m.Status, &m.StartedAt, &m.FinishedAt, &m.PerformedBy, &m.Processed, &m.Skipped, &m.Note); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan recalculation run", err)
		}
		out = append(out, mapping.ToDomainRecalculationRun(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading recalculation runs", err)
	}
	return out, nil
}
