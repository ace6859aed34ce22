// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/weddingcard/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlugTaken is returned when a custom slug is already used by another invitation.
	ErrSlugTaken = errors.New("custom slug already taken")
	// ErrInvitationNotFound is returned when a comment or gift references a
	// missing invitation.
	ErrInvitationNotFound = errors.New("invitation not found")
)

// Store defines the persistence operations for invitations and their guest book.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateInvitation persists a new invitation.
	// ID, CreatedAt and UpdatedAt are populated by the store.
	CreateInvitation(ctx context.Context, inv *models.Invitation) error

	// GetInvitation retrieves an invitation by ID.
	GetInvitation(ctx context.Context, id string) (*models.Invitation, error)

	// GetInvitationBySlug retrieves an invitation by its custom slug.
	GetInvitationBySlug(ctx context.Context, slug string) (*models.Invitation, error)

	// UpdateInvitation replaces the owner-editable content of an invitation,
	// including its embedded bank accounts and social links.
	// OwnerID and CreatedAt are never changed.
	UpdateInvitation(ctx context.Context, inv *models.Invitation) error

	// ListInvitationsByOwner returns the owner's invitations, newest first.
	ListInvitationsByOwner(ctx context.Context, ownerID string) ([]*models.Invitation, error)

	// CreateComment persists a guest comment.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	CreateComment(ctx context.Context, c *models.Comment) error

	// ListComments returns an invitation's comments, newest first.
	ListComments(ctx context.Context, invitationID string) ([]*models.Comment, error)

	// CountAttendance tallies the attendance answers of an invitation's comments.
	CountAttendance(ctx context.Context, invitationID string) (models.AttendanceSummary, error)

	// CreateGift persists a gift notice. Confirmed is always stored as false.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	CreateGift(ctx context.Context, g *models.Gift) error

	// GetGift retrieves a gift by ID.
	GetGift(ctx context.Context, id string) (*models.Gift, error)

	// ListGifts returns an invitation's gifts, newest first.
	ListGifts(ctx context.Context, invitationID string) ([]*models.Gift, error)

	// ConfirmGift marks a gift as confirmed. Confirming twice is a no-op;
	// there is no way to unconfirm.
	ConfirmGift(ctx context.Context, id string) (*models.Gift, error)

	// Close releases any resources held by the store.
	Close() error
}
