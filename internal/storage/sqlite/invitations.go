package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/storage"
)

const invitationColumns = `id, owner_id, groom_name, bride_name, event_date, event_time, venue,
	message, opening_text, invitation_text, groom_photo, bride_photo, cover_photo,
	gallery, bank_accounts, social_links, map_embed, custom_slug, created_at, updated_at`

// CreateInvitation persists a new invitation.
func (s *SQLiteStore) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	inv.UpdatedAt = inv.CreatedAt

	cols, err := encodeInvitation(inv)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO invitations (`+invitationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.OwnerID, inv.GroomName, inv.BrideName, inv.Date, inv.Time, inv.Venue,
		cols.message, cols.openingText, cols.invitationText,
		nullString(inv.GroomPhoto), nullString(inv.BridePhoto), nullString(inv.CoverPhoto),
		cols.gallery, cols.bankAccounts, cols.socialLinks, cols.mapEmbed,
		nullString(inv.CustomSlug), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "custom_slug") {
			return storage.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert invitation: %w", err)
	}

	return nil
}

// GetInvitation retrieves an invitation by ID.
func (s *SQLiteStore) GetInvitation(ctx context.Context, id string) (*models.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE id = ?", id)
	inv, err := scanInvitation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invitation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetInvitationBySlug retrieves an invitation by its custom slug.
func (s *SQLiteStore) GetInvitationBySlug(ctx context.Context, slug string) (*models.Invitation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE custom_slug = ?", slug)
	inv, err := scanInvitation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invitation with slug %s: %w", slug, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation by slug: %w", err)
	}
	return inv, nil
}

// UpdateInvitation rewrites the owner-editable columns of an invitation.
// Embedded bank accounts and social links are replaced in the same row write.
func (s *SQLiteStore) UpdateInvitation(ctx context.Context, inv *models.Invitation) error {
	inv.UpdatedAt = time.Now().Unix()

	cols, err := encodeInvitation(inv)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET
			groom_name = ?, bride_name = ?, event_date = ?, event_time = ?, venue = ?,
			message = ?, opening_text = ?, invitation_text = ?,
			groom_photo = ?, bride_photo = ?, cover_photo = ?,
			gallery = ?, bank_accounts = ?, social_links = ?, map_embed = ?,
			custom_slug = ?, updated_at = ?
		 WHERE id = ?`,
		inv.GroomName, inv.BrideName, inv.Date, inv.Time, inv.Venue,
		cols.message, cols.openingText, cols.invitationText,
		nullString(inv.GroomPhoto), nullString(inv.BridePhoto), nullString(inv.CoverPhoto),
		cols.gallery, cols.bankAccounts, cols.socialLinks, cols.mapEmbed,
		nullString(inv.CustomSlug), inv.UpdatedAt,
		inv.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "custom_slug") {
			return storage.ErrSlugTaken
		}
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invitation %s: %w", inv.ID, storage.ErrNotFound)
	}
	return nil
}

// ListInvitationsByOwner returns the owner's invitations, newest first.
func (s *SQLiteStore) ListInvitationsByOwner(ctx context.Context, ownerID string) ([]*models.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}

	return invitations, nil
}

type invitationJSON struct {
	message        string
	openingText    any
	invitationText any
	gallery        any
	bankAccounts   any
	socialLinks    any
	mapEmbed       any
}

func encodeInvitation(inv *models.Invitation) (invitationJSON, error) {
	var cols invitationJSON

	message, err := json.Marshal(inv.Message)
	if err != nil {
		return cols, fmt.Errorf("failed to encode message: %w", err)
	}
	cols.message = string(message)

	fields := []struct {
		name    string
		present bool
		value   any
		dst     *any
	}{
		{"opening_text", inv.OpeningText != nil, inv.OpeningText, &cols.openingText},
		{"invitation_text", inv.InvitationText != nil, inv.InvitationText, &cols.invitationText},
		{"gallery", inv.Gallery != nil, inv.Gallery, &cols.gallery},
		{"bank_accounts", inv.BankAccounts != nil, inv.BankAccounts, &cols.bankAccounts},
		{"social_links", inv.SocialLinks != nil, inv.SocialLinks, &cols.socialLinks},
		{"map_embed", inv.MapEmbed != nil, inv.MapEmbed, &cols.mapEmbed},
	}
	for _, f := range fields {
		if !f.present {
			*f.dst = nil
			continue
		}
		data, err := json.Marshal(f.value)
		if err != nil {
			return cols, fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		*f.dst = string(data)
	}

	return cols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var (
		message                            string
		openingText, invitationText        sql.NullString
		groomPhoto, bridePhoto, coverPhoto sql.NullString
		gallery, bankAccounts, socialLinks sql.NullString
		mapEmbed, customSlug               sql.NullString
	)

	err := row.Scan(
		&inv.ID, &inv.OwnerID, &inv.GroomName, &inv.BrideName, &inv.Date, &inv.Time, &inv.Venue,
		&message, &openingText, &invitationText, &groomPhoto, &bridePhoto, &coverPhoto,
		&gallery, &bankAccounts, &socialLinks, &mapEmbed, &customSlug, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(message), &inv.Message); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	decoders := []struct {
		name string
		src  sql.NullString
		dst  any
	}{
		{"opening_text", openingText, &inv.OpeningText},
		{"invitation_text", invitationText, &inv.InvitationText},
		{"gallery", gallery, &inv.Gallery},
		{"bank_accounts", bankAccounts, &inv.BankAccounts},
		{"social_links", socialLinks, &inv.SocialLinks},
		{"map_embed", mapEmbed, &inv.MapEmbed},
	}
	for _, d := range decoders {
		if !d.src.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(d.src.String), d.dst); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", d.name, err)
		}
	}

	inv.GroomPhoto = stringPtr(groomPhoto)
	inv.BridePhoto = stringPtr(bridePhoto)
	inv.CoverPhoto = stringPtr(coverPhoto)
	inv.CustomSlug = stringPtr(customSlug)

	return inv, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
