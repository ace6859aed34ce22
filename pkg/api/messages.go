package api

import "github.com/mmynk/weddingcard/internal/models"

type CreateInvitationRequest struct {
	Invitation models.Invitation `json:"invitation"`
}

type CreateInvitationResponse struct {
	Invitation *models.Invitation `json:"invitation"`
}

// GetInvitationRequest looks an invitation up by ID or, when ID is empty, by
// custom slug.
type GetInvitationRequest struct {
	ID   string `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type GetInvitationResponse struct {
	Invitation *models.Invitation `json:"invitation"`
}

// UpdateInvitationRequest replaces the editable content of Invitation.ID.
type UpdateInvitationRequest struct {
	Invitation models.Invitation `json:"invitation"`
}

type UpdateInvitationResponse struct {
	Invitation *models.Invitation `json:"invitation"`
}

type ListMyInvitationsRequest struct{}

type ListMyInvitationsResponse struct {
	Invitations []*models.Invitation `json:"invitations"`
}

type SuggestSlugRequest struct {
	GroomName string `json:"groom_name"`
	BrideName string `json:"bride_name"`
}

type SuggestSlugResponse struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

type PostCommentRequest struct {
	InvitationID string `json:"invitation_id"`
	Name         string `json:"name"`
	Message      string `json:"message"`
	Attendance   string `json:"attendance"`
}

type PostCommentResponse struct {
	Comment *models.Comment `json:"comment"`
}

type ListCommentsRequest struct {
	InvitationID string `json:"invitation_id"`
}

type ListCommentsResponse struct {
	Comments   []*models.Comment        `json:"comments"`
	Attendance models.AttendanceSummary `json:"attendance"`
}

type SendGiftRequest struct {
	InvitationID string  `json:"invitation_id"`
	SenderName   string  `json:"sender_name"`
	Amount       float64 `json:"amount"`
	Message      string  `json:"message"`
	BankAccount  string  `json:"bank_account"`
}

type SendGiftResponse struct {
	Gift *models.Gift `json:"gift"`
}

type ListGiftsRequest struct {
	InvitationID string `json:"invitation_id"`
}

type ListGiftsResponse struct {
	Gifts []*models.Gift `json:"gifts"`
	// ConfirmedTotal sums the amounts of confirmed gifts.
	ConfirmedTotal float64 `json:"confirmed_total"`
}

type ConfirmGiftRequest struct {
	GiftID string `json:"gift_id"`
}

type ConfirmGiftResponse struct {
	Gift *models.Gift `json:"gift"`
}
