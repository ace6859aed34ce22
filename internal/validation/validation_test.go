package validation

import (
	"errors"
	"testing"

	"github.com/mmynk/weddingcard/internal/models"
)

func strPtr(s string) *string { return &s }

func minimalInvitation() *models.Invitation {
	return &models.Invitation{
		GroomName: "Budi",
		BrideName: "Siti",
		Date:      "2025-06-14",
		Time:      "10:00",
		Venue:     "Gedung Serbaguna, Jakarta",
		Message:   models.HTML("<p>Please join us</p>"),
	}
}

func TestInvitationOptionalFieldsMayBeOmitted(t *testing.T) {
	v := New()
	if err := v.Invitation(minimalInvitation()); err != nil {
		t.Fatalf("expected minimal invitation to be valid, got %v", err)
	}

	// Present-but-empty optional lists are just as valid as absent ones.
	inv := minimalInvitation()
	inv.Gallery = []string{}
	inv.BankAccounts = []models.BankAccount{}
	inv.SocialLinks = []models.SocialLink{}
	inv.CoverPhoto = strPtr("")
	if err := v.Invitation(inv); err != nil {
		t.Fatalf("expected empty optional fields to be valid, got %v", err)
	}
}

func TestInvitationRequiredFields(t *testing.T) {
	v := New()
	err := v.Invitation(&models.Invitation{})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	for _, field := range []string{"groom_name", "bride_name", "date", "time", "venue", "message.kind"} {
		if !verr.Has(field) {
			t.Errorf("expected failure for %s, got %v", field, verr.Fields)
		}
	}
}

func TestInvitationFieldRules(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		mutate func(*models.Invitation)
		field  string
	}{
		{"bad date", func(i *models.Invitation) { i.Date = "14/06/2025" }, "date"},
		{"bad time", func(i *models.Invitation) { i.Time = "10am" }, "time"},
		{"bad slug", func(i *models.Invitation) { i.CustomSlug = strPtr("Budi & Siti") }, "custom_slug"},
		{"short slug", func(i *models.Invitation) { i.CustomSlug = strPtr("ab") }, "custom_slug"},
		{"empty slug", func(i *models.Invitation) { i.CustomSlug = strPtr("") }, "custom_slug"},
		{"bank account missing number", func(i *models.Invitation) {
			i.BankAccounts = []models.BankAccount{{BankName: "BCA", AccountHolder: "Budi"}}
		}, "bank_accounts[0].account_number"},
		{"social link bad url", func(i *models.Invitation) {
			i.SocialLinks = []models.SocialLink{{Platform: "instagram", URL: "not a url"}}
		}, "social_links[0].url"},
		{"social embed wrong kind", func(i *models.Invitation) {
			i.SocialLinks = []models.SocialLink{{Platform: "youtube", URL: "https://youtube.com/x", EmbedCode: &models.Content{Kind: models.ContentHTML, Body: "<b>x</b>"}}}
		}, "social_links[0].embed_code"},
		{"map embed html", func(i *models.Invitation) { i.MapEmbed = &models.Content{Kind: models.ContentHTML, Body: "x"} }, "map_embed"},
		{"unknown content kind", func(i *models.Invitation) { i.OpeningText = &models.Content{Kind: "markdown"} }, "opening_text.kind"},
		{"empty gallery entry", func(i *models.Invitation) { i.Gallery = []string{"a.jpg", ""} }, "gallery[1]"},
		{"slug shaped like an id", func(i *models.Invitation) {
			i.CustomSlug = strPtr("37c2d9a9-5f0e-4b8e-9a43-2f8d6c1b7e10")
		}, "custom_slug"},
		{"javascript gallery entry", func(i *models.Invitation) {
			i.Gallery = []string{"https://cdn.example/1.jpg", "javascript:alert(1)"}
		}, "gallery[1]"},
		{"data uri cover", func(i *models.Invitation) { i.CoverPhoto = strPtr("data:image/png;base64,AAAA") }, "cover_photo"},
		{"relative path groom photo", func(i *models.Invitation) { i.GroomPhoto = strPtr("../../etc/passwd") }, "groom_photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := minimalInvitation()
			tt.mutate(inv)

			err := v.Invitation(inv)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("expected failure for %s, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestCommentRequiresInvitationAndAttendance(t *testing.T) {
	v := New()

	valid := &models.Comment{InvitationID: "inv-1", Name: "Andi", Message: "Selamat!", Attendance: models.AttendanceYes}
	if err := v.Comment(valid); err != nil {
		t.Fatalf("expected valid comment, got %v", err)
	}

	missingInvitation := *valid
	missingInvitation.InvitationID = ""
	assertFieldError(t, v.Comment(&missingInvitation), "invitation_id")

	for _, bad := range []models.Attendance{"", "Yes", "attending", "maybe "} {
		c := *valid
		c.Attendance = bad
		assertFieldError(t, v.Comment(&c), "attendance")
	}
	for _, good := range []models.Attendance{models.AttendanceYes, models.AttendanceNo, models.AttendanceMaybe} {
		c := *valid
		c.Attendance = good
		if err := v.Comment(&c); err != nil {
			t.Errorf("attendance %q: unexpected error %v", good, err)
		}
	}
}

func TestGiftRules(t *testing.T) {
	v := New()

	valid := &models.Gift{InvitationID: "inv-1", SenderName: "Andi", Amount: 100000, BankAccount: "BCA 123"}
	if err := v.Gift(valid); err != nil {
		t.Fatalf("expected valid gift, got %v", err)
	}

	zero := *valid
	zero.Amount = 0
	if err := v.Gift(&zero); err != nil {
		t.Errorf("expected zero amount to be valid, got %v", err)
	}

	negative := *valid
	negative.Amount = -1
	assertFieldError(t, v.Gift(&negative), "amount")

	missingInvitation := *valid
	missingInvitation.InvitationID = ""
	assertFieldError(t, v.Gift(&missingInvitation), "invitation_id")
}

func TestNilValues(t *testing.T) {
	v := New()
	if err := v.Invitation(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Invitation(nil): expected ErrInvalid, got %v", err)
	}
	if err := v.Comment(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Comment(nil): expected ErrInvalid, got %v", err)
	}
	if err := v.Gift(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Gift(nil): expected ErrInvalid, got %v", err)
	}
}

func TestErrorMessagesUseJSONNames(t *testing.T) {
	err := New().Comment(&models.Comment{InvitationID: "x", Name: "A", Attendance: "perhaps"})
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Fields) != 1 {
		t.Fatalf("expected one field error, got %v", err)
	}
	if verr.Fields[0].Message != "attendance must be one of yes, no, maybe" {
		t.Errorf("unexpected message %q", verr.Fields[0].Message)
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error for %s, got %v", field, err)
	}
	if !verr.Has(field) {
		t.Errorf("expected failure for %s, got %v", field, verr.Fields)
	}
}

func TestValidSlug(t *testing.T) {
	tests := map[string]bool{
		"budi-siti":                            true,
		"budi-siti-2025":                       true,
		"ab":                                   false,
		"Budi-Siti":                            false,
		"budi--siti":                           false,
		"37c2d9a9-5f0e-4b8e-9a43-2f8d6c1b7e10": false,
		"37c2d9a95f0e4b8e9a432f8d6c1b7e10":     false,
	}
	for slug, want := range tests {
		if got := ValidSlug(slug); got != want {
			t.Errorf("ValidSlug(%q) = %v, want %v", slug, got, want)
		}
	}
}

func TestValidPhotoRef(t *testing.T) {
	tests := map[string]bool{
		"":                              true,
		"https://cdn.example/cover.jpg": true,
		"http://cdn.example/a.png":      true,
		"weddings/abc123.jpg":           true,
		"cover-123":                     true,
		"javascript:alert(1)":           false,
		"data:image/png;base64,AAAA":    false,
		"https:///no-host.jpg":          false,
		"ftp://cdn.example/a.jpg":       false,
		"/absolute/path.jpg":            false,
		"weddings/../secret.jpg":        false,
	}
	for ref, want := range tests {
		if got := ValidPhotoRef(ref); got != want {
			t.Errorf("ValidPhotoRef(%q) = %v, want %v", ref, got, want)
		}
	}
}
