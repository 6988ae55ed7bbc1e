package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/whistle-service/internal/domain"
)

// ErrProtocolTaken signals a protocol uniqueness violation on insert. The
// service layer regenerates and retries; the constraint is the source of
// truth for uniqueness.
var ErrProtocolTaken = errors.New("protocol already taken")

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByProtocol(ctx context.Context, protocol string) (*domain.Report, error)
	SetStatus(ctx context.Context, reportID string, status domain.ReportStatus) error
	SetNote(ctx context.Context, reportID string, note string) error
	List(ctx context.Context) ([]domain.Report, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (protocol, body, status, note)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		report.Protocol,
		report.Body,
		report.Status,
		report.Note,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrProtocolTaken
		}
		return err
	}
	return nil
}

func (r *reportRepository) GetByProtocol(ctx context.Context, protocol string) (*domain.Report, error) {
	const query = `
        SELECT id, protocol, body, status, note, created_at
        FROM reports WHERE protocol=$1`
	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(protocol))).Scan(
		&report.ID,
		&report.Protocol,
		&report.Body,
		&report.Status,
		&report.Note,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) SetStatus(ctx context.Context, reportID string, status domain.ReportStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE reports SET status=$1 WHERE id=$2`, status, reportID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) SetNote(ctx context.Context, reportID string, note string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE reports SET note=$1 WHERE id=$2`, note, reportID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context) ([]domain.Report, error) {
	const query = `
        SELECT id, protocol, body, status, note, created_at
        FROM reports ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.Protocol,
			&report.Body,
			&report.Status,
			&report.Note,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
