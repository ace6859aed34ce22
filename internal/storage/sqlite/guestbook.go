package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/storage"
)

// CreateComment persists a guest comment.
func (s *SQLiteStore) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, invitation_id, name, message, attendance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.InvitationID, c.Name, c.Message, string(c.Attendance), c.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("comment for %s: %w", c.InvitationID, storage.ErrInvitationNotFound)
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

// ListComments returns an invitation's comments, newest first.
func (s *SQLiteStore) ListComments(ctx context.Context, invitationID string) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, invitation_id, name, message, attendance, created_at
		 FROM comments WHERE invitation_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		invitationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		var attendance string
		if err := rows.Scan(&c.ID, &c.InvitationID, &c.Name, &c.Message, &attendance, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Attendance = models.Attendance(attendance)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// CountAttendance tallies attendance answers for an invitation.
func (s *SQLiteStore) CountAttendance(ctx context.Context, invitationID string) (models.AttendanceSummary, error) {
	var summary models.AttendanceSummary

	rows, err := s.db.QueryContext(ctx,
		"SELECT attendance, COUNT(*) FROM comments WHERE invitation_id = ? GROUP BY attendance",
		invitationID,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to count attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			attendance string
			count      int
		)
		if err := rows.Scan(&attendance, &count); err != nil {
			return summary, fmt.Errorf("failed to scan attendance count: %w", err)
		}
		switch models.Attendance(attendance) {
		case models.AttendanceYes:
			summary.Yes = count
		case models.AttendanceNo:
			summary.No = count
		case models.AttendanceMaybe:
			summary.Maybe = count
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("failed to iterate attendance counts: %w", err)
	}

	return summary, nil
}

// CreateGift persists a gift notice. New gifts are always unconfirmed.
func (s *SQLiteStore) CreateGift(ctx context.Context, g *models.Gift) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	g.Confirmed = false

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gifts (id, invitation_id, sender_name, amount, message, bank_account, created_at, confirmed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		g.ID, g.InvitationID, g.SenderName, g.Amount, g.Message, g.BankAccount, g.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("gift for %s: %w", g.InvitationID, storage.ErrInvitationNotFound)
		}
		return fmt.Errorf("failed to insert gift: %w", err)
	}

	return nil
}

const giftColumns = "id, invitation_id, sender_name, amount, message, bank_account, created_at, confirmed"

// GetGift retrieves a gift by ID.
func (s *SQLiteStore) GetGift(ctx context.Context, id string) (*models.Gift, error) {
	g, err := scanGift(s.db.QueryRowContext(ctx,
		"SELECT "+giftColumns+" FROM gifts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gift %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	return g, nil
}

// ListGifts returns an invitation's gifts, newest first.
func (s *SQLiteStore) ListGifts(ctx context.Context, invitationID string) ([]*models.Gift, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+giftColumns+" FROM gifts WHERE invitation_id = ? ORDER BY created_at DESC, rowid DESC",
		invitationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift: %w", err)
		}
		gifts = append(gifts, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gifts: %w", err)
	}

	return gifts, nil
}

// ConfirmGift marks a gift as confirmed. The update only ever writes 1, so a
// confirmed gift cannot flip back.
func (s *SQLiteStore) ConfirmGift(ctx context.Context, id string) (*models.Gift, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE gifts SET confirmed = 1 WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm gift: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("gift %s: %w", id, storage.ErrNotFound)
	}

	return s.GetGift(ctx, id)
}

func scanGift(row rowScanner) (*models.Gift, error) {
	g := &models.Gift{}
	var confirmed int
	if err := row.Scan(&g.ID, &g.InvitationID, &g.SenderName, &g.Amount, &g.Message,
		&g.BankAccount, &g.CreatedAt, &confirmed); err != nil {
		return nil, err
	}
	g.Confirmed = confirmed != 0
	return g, nil
}
