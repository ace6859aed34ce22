package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/weddingcard/internal/middleware"
	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/sanitize"
	"github.com/mmynk/weddingcard/internal/storage"
	"github.com/mmynk/weddingcard/internal/validation"
	"github.com/mmynk/weddingcard/pkg/api"
)

var (
	errNotOwner     = errors.New("only the invitation owner may do this")
	errNoIdentifier = errors.New("id or slug is required")
)

// ProtectedProcedures lists the procedures that require a signed-in owner.
// Everything else is callable by anonymous guests.
var ProtectedProcedures = []string{
	api.InvitationServiceCreateInvitationProcedure,
	api.InvitationServiceUpdateInvitationProcedure,
	api.InvitationServiceListMyInvitationsProcedure,
	api.GuestbookServiceListGiftsProcedure,
	api.GuestbookServiceConfirmGiftProcedure,
}

// toConnectError maps store, validation and sanitizer errors to Connect codes.
func toConnectError(op string, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, sanitize.ErrUnsafeEmbed),
		errors.Is(err, sanitize.ErrUnknownKind),
		errors.Is(err, sanitize.ErrMalformedHTML):
		code = connect.CodeInvalidArgument
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvitationNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrSlugTaken):
		code = connect.CodeAlreadyExists
	case errors.Is(err, errNotOwner):
		code = connect.CodePermissionDenied
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
	slog.Warn(op+" rejected", "code", code.String(), "error", err)
	return connect.NewError(code, err)
}

// requireUser returns the authenticated user ID from ctx.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("sign in required"))
	}
	return userID, nil
}

// ownedInvitation loads an invitation and checks that userID owns it.
func ownedInvitation(ctx context.Context, store storage.Store, id, userID string) (*models.Invitation, error) {
	inv, err := store.GetInvitation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsOwnedBy(userID) {
		return nil, errNotOwner
	}
	return inv, nil
}
