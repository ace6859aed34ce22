package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/weddingcard/internal/auth"
	"github.com/mmynk/weddingcard/internal/metrics"
	"github.com/mmynk/weddingcard/internal/middleware"
	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/sanitize"
	"github.com/mmynk/weddingcard/internal/storage/sqlite"
	"github.com/mmynk/weddingcard/internal/validation"
	"github.com/mmynk/weddingcard/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
)

const testSecret = "test-secret"

type testEnv struct {
	invitations *api.InvitationServiceClient
	guestbook   *api.GuestbookServiceClient
	metrics     *metrics.Metrics
	jwt         *auth.JWTManager
}

// setupTestServer serves both services behind the auth interceptor, backed by
// a temporary SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "weddingcard-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	validator := validation.New()
	sanitizer := sanitize.New(nil)

	interceptors := connect.WithInterceptors(middleware.AuthInterceptor(jwtManager, ProtectedProcedures...))
	invPath, invHandler := api.NewInvitationServiceHandler(NewInvitationService(store, validator, sanitizer, m), interceptors)
	gbPath, gbHandler := api.NewGuestbookServiceHandler(NewGuestbookService(store, validator, sanitizer, m), interceptors)

	mux := http.NewServeMux()
	mux.Handle(invPath, invHandler)
	mux.Handle(gbPath, gbHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		invitations: api.NewInvitationServiceClient(http.DefaultClient, server.URL),
		guestbook:   api.NewGuestbookServiceClient(http.DefaultClient, server.URL),
		metrics:     m,
		jwt:         jwtManager,
	}
}

// as attaches a bearer token for userID to req.
func as[T any](t *testing.T, env *testEnv, userID string, msg *T) *connect.Request[T] {
	t.Helper()
	token, err := env.jwt.Generate(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func strPtr(s string) *string { return &s }

func newInvitation() models.Invitation {
	return models.Invitation{
		GroomName: "Budi",
		BrideName: "Siti",
		Date:      "2025-06-14",
		Time:      "10:00",
		Venue:     "Gedung Serbaguna",
		Message:   models.HTML(`<p>Join us</p><script>alert(1)</script>`),
	}
}

func createInvitation(t *testing.T, env *testEnv, owner string, inv models.Invitation) *models.Invitation {
	t.Helper()
	resp, err := env.invitations.CreateInvitation(context.Background(),
		as(t, env, owner, &api.CreateInvitationRequest{Invitation: inv}))
	if err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}
	return resp.Msg.Invitation
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestCreateInvitation(t *testing.T) {
	env := setupTestServer(t)

	inv := newInvitation()
	inv.OwnerID = "someone-else"
	inv.CustomSlug = strPtr("budi-siti")
	inv.Gallery = []string{}
	created := createInvitation(t, env, "owner-1", inv)

	if created.ID == "" {
		t.Error("expected invitation ID to be generated")
	}
	if created.OwnerID != "owner-1" {
		t.Errorf("expected owner from token, got %q", created.OwnerID)
	}
	if created.Message.Body != "<p>Join us</p>" {
		t.Errorf("expected script to be stripped, got %q", created.Message.Body)
	}
	if created.Gallery == nil || len(created.Gallery) != 0 {
		t.Errorf("expected empty gallery to stay empty, got %#v", created.Gallery)
	}
	if created.BankAccounts != nil {
		t.Errorf("expected absent bank accounts to stay absent, got %#v", created.BankAccounts)
	}

	got, err := env.invitations.GetInvitation(context.Background(),
		connect.NewRequest(&api.GetInvitationRequest{Slug: "budi-siti"}))
	if err != nil {
		t.Fatalf("GetInvitation by slug failed: %v", err)
	}
	if got.Msg.Invitation.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, got.Msg.Invitation.ID)
	}
}

func TestCreateInvitationErrors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		_, err := env.invitations.CreateInvitation(ctx,
			connect.NewRequest(&api.CreateInvitationRequest{Invitation: newInvitation()}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("missing required fields", func(t *testing.T) {
		inv := newInvitation()
		inv.GroomName = ""
		inv.Date = "14/06/2025"
		_, err := env.invitations.CreateInvitation(ctx, as(t, env, "owner-1", &api.CreateInvitationRequest{Invitation: inv}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unsafe embed", func(t *testing.T) {
		inv := newInvitation()
		embed := models.Embed(`<iframe src="https://evil.example.com/x"></iframe>`)
		inv.MapEmbed = &embed
		_, err := env.invitations.CreateInvitation(ctx, as(t, env, "owner-1", &api.CreateInvitationRequest{Invitation: inv}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("slug equal to another invitation id", func(t *testing.T) {
		victim := createInvitation(t, env, "owner-1", newInvitation())
		inv := newInvitation()
		inv.Venue = "attacker"
		inv.CustomSlug = strPtr(victim.ID)
		_, err := env.invitations.CreateInvitation(ctx, as(t, env, "owner-2", &api.CreateInvitationRequest{Invitation: inv}))
		assertCode(t, err, connect.CodeInvalidArgument)

		got, err := env.invitations.GetInvitation(ctx, connect.NewRequest(&api.GetInvitationRequest{ID: victim.ID}))
		if err != nil {
			t.Fatalf("GetInvitation failed: %v", err)
		}
		if got.Msg.Invitation.Venue != victim.Venue {
			t.Errorf("expected victim venue %q, got %q", victim.Venue, got.Msg.Invitation.Venue)
		}
	})

	t.Run("javascript photo", func(t *testing.T) {
		inv := newInvitation()
		inv.Gallery = []string{"javascript:alert(1)"}
		_, err := env.invitations.CreateInvitation(ctx, as(t, env, "owner-1", &api.CreateInvitationRequest{Invitation: inv}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("slug taken", func(t *testing.T) {
		inv := newInvitation()
		inv.CustomSlug = strPtr("taken-slug")
		createInvitation(t, env, "owner-1", inv)
		_, err := env.invitations.CreateInvitation(ctx, as(t, env, "owner-2", &api.CreateInvitationRequest{Invitation: inv}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})
}

func TestCreateInvitationIgnoresClientTimestamps(t *testing.T) {
	env := setupTestServer(t)
	before := time.Now().Unix()

	inv := newInvitation()
	inv.CreatedAt = 42
	inv.UpdatedAt = 42
	created := createInvitation(t, env, "owner-1", inv)

	if created.CreatedAt < before || created.UpdatedAt != created.CreatedAt {
		t.Errorf("expected store-assigned timestamps, got created_at=%d updated_at=%d", created.CreatedAt, created.UpdatedAt)
	}

	got, err := env.invitations.GetInvitation(context.Background(), connect.NewRequest(&api.GetInvitationRequest{ID: created.ID}))
	if err != nil {
		t.Fatalf("GetInvitation failed: %v", err)
	}
	if got.Msg.Invitation.CreatedAt != created.CreatedAt {
		t.Errorf("stored created_at %d, want %d", got.Msg.Invitation.CreatedAt, created.CreatedAt)
	}
}

func TestGetInvitation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createInvitation(t, env, "owner-1", newInvitation())

	resp, err := env.invitations.GetInvitation(ctx, connect.NewRequest(&api.GetInvitationRequest{ID: created.ID}))
	if err != nil {
		t.Fatalf("GetInvitation failed: %v", err)
	}
	if resp.Msg.Invitation.GroomName != "Budi" {
		t.Errorf("expected groom Budi, got %s", resp.Msg.Invitation.GroomName)
	}

	_, err = env.invitations.GetInvitation(ctx, connect.NewRequest(&api.GetInvitationRequest{ID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.invitations.GetInvitation(ctx, connect.NewRequest(&api.GetInvitationRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestUpdateInvitation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	inv := newInvitation()
	inv.BankAccounts = []models.BankAccount{{BankName: "BCA", AccountHolder: "Budi", AccountNumber: "123"}}
	created := createInvitation(t, env, "owner-1", inv)

	update := *created
	update.Venue = "Balai Kartini"
	update.BankAccounts = []models.BankAccount{{BankName: "Mandiri", AccountHolder: "Siti", AccountNumber: "456"}}

	t.Run("owner", func(t *testing.T) {
		resp, err := env.invitations.UpdateInvitation(ctx, as(t, env, "owner-1", &api.UpdateInvitationRequest{Invitation: update}))
		if err != nil {
			t.Fatalf("UpdateInvitation failed: %v", err)
		}
		got := resp.Msg.Invitation
		if got.Venue != "Balai Kartini" {
			t.Errorf("expected venue updated, got %s", got.Venue)
		}
		if len(got.BankAccounts) != 1 || got.BankAccounts[0].BankName != "Mandiri" {
			t.Errorf("expected bank accounts replaced, got %+v", got.BankAccounts)
		}
		if got.CreatedAt != created.CreatedAt {
			t.Errorf("expected CreatedAt unchanged")
		}
	})

	t.Run("not owner", func(t *testing.T) {
		_, err := env.invitations.UpdateInvitation(ctx, as(t, env, "intruder", &api.UpdateInvitationRequest{Invitation: update}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("missing", func(t *testing.T) {
		missing := update
		missing.ID = "does-not-exist"
		_, err := env.invitations.UpdateInvitation(ctx, as(t, env, "owner-1", &api.UpdateInvitationRequest{Invitation: missing}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestListMyInvitations(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	createInvitation(t, env, "owner-1", newInvitation())
	createInvitation(t, env, "owner-1", newInvitation())
	createInvitation(t, env, "owner-2", newInvitation())

	resp, err := env.invitations.ListMyInvitations(ctx, as(t, env, "owner-1", &api.ListMyInvitationsRequest{}))
	if err != nil {
		t.Fatalf("ListMyInvitations failed: %v", err)
	}
	if len(resp.Msg.Invitations) != 2 {
		t.Errorf("expected 2 invitations, got %d", len(resp.Msg.Invitations))
	}
	for _, inv := range resp.Msg.Invitations {
		if inv.OwnerID != "owner-1" {
			t.Errorf("unexpected owner %s", inv.OwnerID)
		}
	}
}

func TestSuggestSlug(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	suggest := func() *api.SuggestSlugResponse {
		t.Helper()
		resp, err := env.invitations.SuggestSlug(ctx, connect.NewRequest(&api.SuggestSlugRequest{GroomName: "Zoë", BrideName: "André"}))
		if err != nil {
			t.Fatalf("SuggestSlug failed: %v", err)
		}
		return resp.Msg
	}

	first := suggest()
	if first.Slug != "zoe-andre" || !first.Available {
		t.Fatalf("expected available zoe-andre, got %+v", first)
	}

	inv := newInvitation()
	inv.CustomSlug = strPtr(first.Slug)
	createInvitation(t, env, "owner-1", inv)

	second := suggest()
	if second.Slug != "zoe-andre-2" || !second.Available {
		t.Errorf("expected available zoe-andre-2, got %+v", second)
	}

	_, err := env.invitations.SuggestSlug(ctx, connect.NewRequest(&api.SuggestSlugRequest{GroomName: "李", BrideName: "王"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestWithSuffixStaysWithinLimit(t *testing.T) {
	base := "a-" + strings.Repeat("b", 62)
	got := withSuffix(base, 12)
	if len(got) > 64 || !validation.ValidSlug(got) {
		t.Errorf("withSuffix produced %q", got)
	}
}
