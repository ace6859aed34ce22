package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/weddingcard/internal/metrics"
	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/sanitize"
	"github.com/mmynk/weddingcard/internal/slug"
	"github.com/mmynk/weddingcard/internal/storage"
	"github.com/mmynk/weddingcard/internal/validation"
	"github.com/mmynk/weddingcard/pkg/api"
)

// maxSlugSuffix bounds the numbered variants SuggestSlug tries.
const maxSlugSuffix = 20

// InvitationService implements the Connect InvitationService.
type InvitationService struct {
	store     storage.Store
	validator *validation.Validator
	sanitizer *sanitize.Sanitizer
	metrics   *metrics.Metrics
}

// NewInvitationService creates a new InvitationService with the given storage backend.
func NewInvitationService(store storage.Store, validator *validation.Validator, sanitizer *sanitize.Sanitizer, m *metrics.Metrics) *InvitationService {
	return &InvitationService{store: store, validator: validator, sanitizer: sanitizer, metrics: m}
}

// CreateInvitation validates, sanitizes and stores a new invitation owned by
// the caller.
func (s *InvitationService) CreateInvitation(ctx context.Context, req *connect.Request[api.CreateInvitationRequest]) (*connect.Response[api.CreateInvitationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	inv := req.Msg.Invitation
	slog.Info("CreateInvitation request received",
		"owner_id", userID,
		"groom", inv.GroomName,
		"bride", inv.BrideName,
	)

	inv.ID = ""
	inv.OwnerID = userID
	inv.CreatedAt, inv.UpdatedAt = 0, 0
	if err := s.prepare(&inv); err != nil {
		return nil, toConnectError("CreateInvitation", err)
	}

	if err := s.store.CreateInvitation(ctx, &inv); err != nil {
		return nil, toConnectError("CreateInvitation", err)
	}
	s.metrics.InvitationsCreated.Inc()

	slog.Info("Invitation created", "invitation_id", inv.ID, "share_key", inv.ShareKey())

	return connect.NewResponse(&api.CreateInvitationResponse{Invitation: &inv}), nil
}

// GetInvitation returns an invitation by ID or, failing that, by custom slug.
func (s *InvitationService) GetInvitation(ctx context.Context, req *connect.Request[api.GetInvitationRequest]) (*connect.Response[api.GetInvitationResponse], error) {
	slog.Info("GetInvitation request received", "id", req.Msg.ID, "slug", req.Msg.Slug)

	var (
		inv *models.Invitation
		err error
	)
	switch {
	case req.Msg.ID != "":
		inv, err = s.store.GetInvitation(ctx, req.Msg.ID)
	case req.Msg.Slug != "":
		inv, err = s.store.GetInvitationBySlug(ctx, req.Msg.Slug)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, errNoIdentifier)
	}
	if err != nil {
		return nil, toConnectError("GetInvitation", err)
	}

	return connect.NewResponse(&api.GetInvitationResponse{Invitation: inv}), nil
}

// UpdateInvitation replaces the content of an invitation the caller owns.
func (s *InvitationService) UpdateInvitation(ctx context.Context, req *connect.Request[api.UpdateInvitationRequest]) (*connect.Response[api.UpdateInvitationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	inv := req.Msg.Invitation
	slog.Info("UpdateInvitation request received", "invitation_id", inv.ID, "user_id", userID)

	if inv.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invitation id is required"))
	}
	existing, err := ownedInvitation(ctx, s.store, inv.ID, userID)
	if err != nil {
		return nil, toConnectError("UpdateInvitation", err)
	}

	inv.OwnerID = existing.OwnerID
	if err := s.prepare(&inv); err != nil {
		return nil, toConnectError("UpdateInvitation", err)
	}
	if err := s.store.UpdateInvitation(ctx, &inv); err != nil {
		return nil, toConnectError("UpdateInvitation", err)
	}

	// Fetch updated invitation to get CreatedAt and UpdatedAt
	updated, err := s.store.GetInvitation(ctx, inv.ID)
	if err != nil {
		return nil, toConnectError("UpdateInvitation", err)
	}

	slog.Info("Invitation updated", "invitation_id", updated.ID)

	return connect.NewResponse(&api.UpdateInvitationResponse{Invitation: updated}), nil
}

// ListMyInvitations returns the caller's invitations, newest first.
func (s *InvitationService) ListMyInvitations(ctx context.Context, req *connect.Request[api.ListMyInvitationsRequest]) (*connect.Response[api.ListMyInvitationsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	invitations, err := s.store.ListInvitationsByOwner(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListMyInvitations", err)
	}

	slog.Info("ListMyInvitations successful", "user_id", userID, "count", len(invitations))

	return connect.NewResponse(&api.ListMyInvitationsResponse{Invitations: invitations}), nil
}

// SuggestSlug proposes a free custom slug built from the couple's names.
// When the plain form is taken, numbered variants ("romeo-juliet-2") are
// tried; Available is false only if all of them are taken too.
func (s *InvitationService) SuggestSlug(ctx context.Context, req *connect.Request[api.SuggestSlugRequest]) (*connect.Response[api.SuggestSlugResponse], error) {
	base := slug.Suggest(req.Msg.GroomName, req.Msg.BrideName)
	if !validation.ValidSlug(base) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("names %q and %q do not form a usable slug", req.Msg.GroomName, req.Msg.BrideName))
	}

	for n := 1; n <= maxSlugSuffix; n++ {
		candidate := base
		if n > 1 {
			candidate = withSuffix(base, n)
		}
		_, err := s.store.GetInvitationBySlug(ctx, candidate)
		if errors.Is(err, storage.ErrNotFound) {
			return connect.NewResponse(&api.SuggestSlugResponse{Slug: candidate, Available: true}), nil
		}
		if err != nil {
			return nil, toConnectError("SuggestSlug", err)
		}
	}

	return connect.NewResponse(&api.SuggestSlugResponse{Slug: base, Available: false}), nil
}

// prepare validates inv and cleans its content fields in place.
func (s *InvitationService) prepare(inv *models.Invitation) error {
	if err := s.validator.Invitation(inv); err != nil {
		return err
	}
	return s.sanitizer.Invitation(inv)
}

func withSuffix(base string, n int) string {
	suffix := fmt.Sprintf("-%d", n)
	if len(base)+len(suffix) > slug.MaxLen {
		base = strings.TrimRight(base[:slug.MaxLen-len(suffix)], "-")
	}
	return base + suffix
}
