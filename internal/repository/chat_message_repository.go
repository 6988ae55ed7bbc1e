package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/whistle-service/internal/domain"
)

// ChatMessageRepository manages report thread messages and the reviewer
// unread projection.
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListByReport(ctx context.Context, reportID string) ([]domain.ChatMessage, error)
	// ListAndMarkSeen loads the thread and flips seen_by_reviewer for all
	// unseen reporter messages in one transaction, so a dashboard refresh
	// never observes the thread open but the count stale.
	ListAndMarkSeen(ctx context.Context, reportID string) ([]domain.ChatMessage, error)
	UnreadCount(ctx context.Context, reportID string) (int, error)
	UnreadCountsByProtocol(ctx context.Context) (map[string]int, error)
}

type chatMessageRepository struct {
	pool *pgxpool.Pool
}

// NewChatMessageRepository builds repository.
func NewChatMessageRepository(pool *pgxpool.Pool) ChatMessageRepository {
	return &chatMessageRepository{pool: pool}
}

const selectMessages = `
        SELECT id, report_id, author_role, body, attachment_handle, attachment_ext, seen_by_reviewer, created_at
        FROM chat_messages WHERE report_id=$1 ORDER BY created_at ASC, id ASC`

func (r *chatMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (report_id, author_role, body, attachment_handle, attachment_ext, seen_by_reviewer)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	var handle, ext *string
	if msg.Attachment != nil {
		handle = &msg.Attachment.Handle
		ext = &msg.Attachment.Extension
	}
	return r.pool.QueryRow(ctx, query,
		msg.ReportID,
		msg.AuthorRole,
		msg.Body,
		handle,
		ext,
		msg.SeenByReviewer,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *chatMessageRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, selectMessages, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *chatMessageRepository) ListAndMarkSeen(ctx context.Context, reportID string) ([]domain.ChatMessage, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, selectMessages, reportID)
	if err != nil {
		return nil, err
	}
	msgs, err := scanMessages(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	const mark = `
        UPDATE chat_messages SET seen_by_reviewer=TRUE
        WHERE report_id=$1 AND author_role=$2 AND seen_by_reviewer=FALSE`
	if _, err := tx.Exec(ctx, mark, reportID, domain.AuthorRoleReporter); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *chatMessageRepository) UnreadCount(ctx context.Context, reportID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM chat_messages
        WHERE report_id=$1 AND author_role=$2 AND seen_by_reviewer=FALSE`
	var count int
	if err := r.pool.QueryRow(ctx, query, reportID, domain.AuthorRoleReporter).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UnreadCountsByProtocol computes the dashboard badge counts in a single
// grouped aggregate rather than one query per report.
func (r *chatMessageRepository) UnreadCountsByProtocol(ctx context.Context) (map[string]int, error) {
	const query = `
        SELECT d.protocol, COUNT(m.id)
        FROM reports d
        LEFT JOIN chat_messages m
            ON m.report_id = d.id AND m.author_role = $1 AND m.seen_by_reviewer = FALSE
        GROUP BY d.protocol`
	rows, err := r.pool.Query(ctx, query, domain.AuthorRoleReporter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var protocol string
		var count int
		if err := rows.Scan(&protocol, &count); err != nil {
			return nil, err
		}
		counts[protocol] = count
	}
	return counts, rows.Err()
}

func scanMessages(rows pgx.Rows) ([]domain.ChatMessage, error) {
	var result []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var handle, ext *string
		if err := rows.Scan(
			&msg.ID,
			&msg.ReportID,
			&msg.AuthorRole,
			&msg.Body,
			&handle,
			&ext,
			&msg.SeenByReviewer,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		if handle != nil {
			extension := ""
			if ext != nil {
				extension = *ext
			}
			msg.Attachment = &domain.AttachmentRef{Handle: *handle, Extension: extension}
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
