package models

// Invitation is the primary shareable record for one wedding.
type Invitation struct {
	// ID is the unique identifier (UUID format), assigned by the store.
	ID string `json:"id,omitempty"`

	// OwnerID is the backend user that created the invitation.
	// Only the owner may update it.
	OwnerID string `json:"owner_id,omitempty"`

	GroomName string `json:"groom_name" validate:"required,max=120"`
	BrideName string `json:"bride_name" validate:"required,max=120"`

	// Date is the event date as YYYY-MM-DD.
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	// Time is the event start as HH:MM (24h).
	Time string `json:"time" validate:"required,datetime=15:04"`

	Venue string `json:"venue" validate:"required,max=500"`

	// Message is the main invitation text, usually html.
	Message Content `json:"message"`

	OpeningText    *Content `json:"opening_text,omitempty"`
	InvitationText *Content `json:"invitation_text,omitempty"`

	// Photo references are http(s) URLs or storage identifiers.
	GroomPhoto *string `json:"groom_photo,omitempty" validate:"omitempty,max=2048,photoref"`
	BridePhoto *string `json:"bride_photo,omitempty" validate:"omitempty,max=2048,photoref"`
	CoverPhoto *string `json:"cover_photo,omitempty" validate:"omitempty,max=2048,photoref"`

	// Gallery is an ordered list of photo references.
	Gallery []string `json:"gallery" validate:"omitempty,max=50,dive,required,max=2048,photoref"`

	BankAccounts []BankAccount `json:"bank_accounts" validate:"omitempty,max=10,dive"`
	SocialLinks  []SocialLink  `json:"social_links" validate:"omitempty,max=20,dive"`

	// MapEmbed is a map URL (plain) or iframe markup (embed).
	MapEmbed *Content `json:"map_embed,omitempty"`

	// CustomSlug is the human-readable identifier used in the share URL.
	CustomSlug *string `json:"custom_slug,omitempty" validate:"omitempty,slug"`

	// CreatedAt is the Unix timestamp when the invitation was created.
	CreatedAt int64 `json:"created_at,omitempty"`
	// UpdatedAt is the Unix timestamp of the last owner update.
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// BankAccount is a gift destination shown on the invitation page.
// The account number is free text; no checksum is applied.
type BankAccount struct {
	BankName      string `json:"bank_name" validate:"required,max=120"`
	AccountHolder string `json:"account_holder" validate:"required,max=120"`
	AccountNumber string `json:"account_number" validate:"required,max=64"`
}

// SocialLink is a link (and optional embed) shown on the invitation page.
type SocialLink struct {
	Platform  string   `json:"platform" validate:"required,max=60"`
	Title     string   `json:"title" validate:"max=200"`
	URL       string   `json:"url" validate:"required,url,startswith=http"`
	EmbedCode *Content `json:"embed_code,omitempty"`
}

// IsOwnedBy reports whether userID owns the invitation.
func (inv *Invitation) IsOwnedBy(userID string) bool {
	return userID != "" && inv.OwnerID == userID
}

// ShareKey returns the identifier used in share URLs: the custom slug when
// set, the ID otherwise.
func (inv *Invitation) ShareKey() string {
	if inv.CustomSlug != nil && *inv.CustomSlug != "" {
		return *inv.CustomSlug
	}
	return inv.ID
}
