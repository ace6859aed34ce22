package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/weddingcard/internal/metrics"
	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/sanitize"
	"github.com/mmynk/weddingcard/internal/storage"
	"github.com/mmynk/weddingcard/internal/validation"
	"github.com/mmynk/weddingcard/pkg/api"
)

// GuestbookService implements the Connect GuestbookService: guest comments
// with RSVP answers, and gift notices confirmed by the owner.
type GuestbookService struct {
	store     storage.Store
	validator *validation.Validator
	sanitizer *sanitize.Sanitizer
	metrics   *metrics.Metrics
}

// NewGuestbookService creates a new GuestbookService with the given storage backend.
func NewGuestbookService(store storage.Store, validator *validation.Validator, sanitizer *sanitize.Sanitizer, m *metrics.Metrics) *GuestbookService {
	return &GuestbookService{store: store, validator: validator, sanitizer: sanitizer, metrics: m}
}

// PostComment stores a guest comment on an invitation.
func (s *GuestbookService) PostComment(ctx context.Context, req *connect.Request[api.PostCommentRequest]) (*connect.Response[api.PostCommentResponse], error) {
	slog.Info("PostComment request received",
		"invitation_id", req.Msg.InvitationID,
		"attendance", req.Msg.Attendance,
	)

	comment := &models.Comment{
		InvitationID: req.Msg.InvitationID,
		Name:         s.plain(req.Msg.Name),
		Message:      s.plain(req.Msg.Message),
		Attendance:   models.Attendance(req.Msg.Attendance),
	}
	if err := s.validator.Comment(comment); err != nil {
		return nil, toConnectError("PostComment", err)
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, toConnectError("PostComment", err)
	}
	s.metrics.CommentsPosted.WithLabelValues(string(comment.Attendance)).Inc()

	slog.Info("Comment posted", "comment_id", comment.ID, "invitation_id", comment.InvitationID)

	return connect.NewResponse(&api.PostCommentResponse{Comment: comment}), nil
}

// ListComments returns an invitation's comments, newest first, with the
// attendance tally.
func (s *GuestbookService) ListComments(ctx context.Context, req *connect.Request[api.ListCommentsRequest]) (*connect.Response[api.ListCommentsResponse], error) {
	id := req.Msg.InvitationID
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invitation_id is required"))
	}
	if _, err := s.store.GetInvitation(ctx, id); err != nil {
		return nil, toConnectError("ListComments", err)
	}

	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, toConnectError("ListComments", err)
	}
	summary, err := s.store.CountAttendance(ctx, id)
	if err != nil {
		return nil, toConnectError("ListComments", err)
	}

	slog.Info("ListComments successful", "invitation_id", id, "count", len(comments), "attending", summary.Yes)

	return connect.NewResponse(&api.ListCommentsResponse{
		Comments:   comments,
		Attendance: summary,
	}), nil
}

// SendGift records a guest's gift notice. The gift starts unconfirmed.
func (s *GuestbookService) SendGift(ctx context.Context, req *connect.Request[api.SendGiftRequest]) (*connect.Response[api.SendGiftResponse], error) {
	slog.Info("SendGift request received",
		"invitation_id", req.Msg.InvitationID,
		"amount", req.Msg.Amount,
	)

	gift := &models.Gift{
		InvitationID: req.Msg.InvitationID,
		SenderName:   s.plain(req.Msg.SenderName),
		Amount:       req.Msg.Amount,
		Message:      s.plain(req.Msg.Message),
		BankAccount:  s.plain(req.Msg.BankAccount),
	}
	if err := s.validator.Gift(gift); err != nil {
		return nil, toConnectError("SendGift", err)
	}

	if err := s.store.CreateGift(ctx, gift); err != nil {
		return nil, toConnectError("SendGift", err)
	}
	s.metrics.GiftsSent.Inc()

	slog.Info("Gift recorded", "gift_id", gift.ID, "invitation_id", gift.InvitationID)

	return connect.NewResponse(&api.SendGiftResponse{Gift: gift}), nil
}

// ListGifts returns the gifts of an invitation the caller owns.
func (s *GuestbookService) ListGifts(ctx context.Context, req *connect.Request[api.ListGiftsRequest]) (*connect.Response[api.ListGiftsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ownedInvitation(ctx, s.store, req.Msg.InvitationID, userID); err != nil {
		return nil, toConnectError("ListGifts", err)
	}

	gifts, err := s.store.ListGifts(ctx, req.Msg.InvitationID)
	if err != nil {
		return nil, toConnectError("ListGifts", err)
	}

	var total float64
	for _, g := range gifts {
		if g.Confirmed {
			total += g.Amount
		}
	}

	slog.Info("ListGifts successful", "invitation_id", req.Msg.InvitationID, "count", len(gifts))

	return connect.NewResponse(&api.ListGiftsResponse{
		Gifts:          gifts,
		ConfirmedTotal: total,
	}), nil
}

// ConfirmGift marks a gift on one of the caller's invitations as received.
// Confirming an already confirmed gift succeeds without change.
func (s *GuestbookService) ConfirmGift(ctx context.Context, req *connect.Request[api.ConfirmGiftRequest]) (*connect.Response[api.ConfirmGiftResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ConfirmGift request received", "gift_id", req.Msg.GiftID, "user_id", userID)

	gift, err := s.store.GetGift(ctx, req.Msg.GiftID)
	if err != nil {
		return nil, toConnectError("ConfirmGift", err)
	}
	if _, err := ownedInvitation(ctx, s.store, gift.InvitationID, userID); err != nil {
		return nil, toConnectError("ConfirmGift", err)
	}

	confirmed, err := s.store.ConfirmGift(ctx, gift.ID)
	if err != nil {
		return nil, toConnectError("ConfirmGift", err)
	}
	if !gift.Confirmed {
		s.metrics.GiftsConfirmed.Inc()
	}

	slog.Info("Gift confirmed", "gift_id", confirmed.ID)

	return connect.NewResponse(&api.ConfirmGiftResponse{Gift: confirmed}), nil
}

// plain strips control characters from guest-supplied text.
func (s *GuestbookService) plain(text string) string {
	clean, err := s.sanitizer.Content(models.Plain(text))
	if err != nil {
		return text
	}
	return clean.Body
}
