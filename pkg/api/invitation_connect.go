package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// InvitationServiceName is the fully-qualified name of the InvitationService.
const InvitationServiceName = "wedding.v1.InvitationService"

const (
	InvitationServiceCreateInvitationProcedure  = "/wedding.v1.InvitationService/CreateInvitation"
	InvitationServiceGetInvitationProcedure     = "/wedding.v1.InvitationService/GetInvitation"
	InvitationServiceUpdateInvitationProcedure  = "/wedding.v1.InvitationService/UpdateInvitation"
	InvitationServiceListMyInvitationsProcedure = "/wedding.v1.InvitationService/ListMyInvitations"
	InvitationServiceSuggestSlugProcedure       = "/wedding.v1.InvitationService/SuggestSlug"
)

// InvitationServiceHandler is implemented by the server side of the service.
type InvitationServiceHandler interface {
	CreateInvitation(context.Context, *connect.Request[CreateInvitationRequest]) (*connect.Response[CreateInvitationResponse], error)
	GetInvitation(context.Context, *connect.Request[GetInvitationRequest]) (*connect.Response[GetInvitationResponse], error)
	UpdateInvitation(context.Context, *connect.Request[UpdateInvitationRequest]) (*connect.Response[UpdateInvitationResponse], error)
	ListMyInvitations(context.Context, *connect.Request[ListMyInvitationsRequest]) (*connect.Response[ListMyInvitationsResponse], error)
	SuggestSlug(context.Context, *connect.Request[SuggestSlugRequest]) (*connect.Response[SuggestSlugResponse], error)
}

// NewInvitationServiceHandler builds an HTTP handler for svc and returns the
// path prefix to mount it on.
func NewInvitationServiceHandler(svc InvitationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	routes := map[string]http.Handler{
		InvitationServiceCreateInvitationProcedure:  connect.NewUnaryHandler(InvitationServiceCreateInvitationProcedure, svc.CreateInvitation, opts...),
		InvitationServiceGetInvitationProcedure:     connect.NewUnaryHandler(InvitationServiceGetInvitationProcedure, svc.GetInvitation, opts...),
		InvitationServiceUpdateInvitationProcedure:  connect.NewUnaryHandler(InvitationServiceUpdateInvitationProcedure, svc.UpdateInvitation, opts...),
		InvitationServiceListMyInvitationsProcedure: connect.NewUnaryHandler(InvitationServiceListMyInvitationsProcedure, svc.ListMyInvitations, opts...),
		InvitationServiceSuggestSlugProcedure:       connect.NewUnaryHandler(InvitationServiceSuggestSlugProcedure, svc.SuggestSlug, opts...),
	}
	return "/" + InvitationServiceName + "/", routeHandler(routes)
}

// InvitationServiceClient calls an InvitationService.
type InvitationServiceClient struct {
	createInvitation  *connect.Client[CreateInvitationRequest, CreateInvitationResponse]
	getInvitation     *connect.Client[GetInvitationRequest, GetInvitationResponse]
	updateInvitation  *connect.Client[UpdateInvitationRequest, UpdateInvitationResponse]
	listMyInvitations *connect.Client[ListMyInvitationsRequest, ListMyInvitationsResponse]
	suggestSlug       *connect.Client[SuggestSlugRequest, SuggestSlugResponse]
}

// NewInvitationServiceClient creates a client for the service at baseURL.
func NewInvitationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *InvitationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &InvitationServiceClient{
		createInvitation:  connect.NewClient[CreateInvitationRequest, CreateInvitationResponse](httpClient, baseURL+InvitationServiceCreateInvitationProcedure, opts...),
		getInvitation:     connect.NewClient[GetInvitationRequest, GetInvitationResponse](httpClient, baseURL+InvitationServiceGetInvitationProcedure, opts...),
		updateInvitation:  connect.NewClient[UpdateInvitationRequest, UpdateInvitationResponse](httpClient, baseURL+InvitationServiceUpdateInvitationProcedure, opts...),
		listMyInvitations: connect.NewClient[ListMyInvitationsRequest, ListMyInvitationsResponse](httpClient, baseURL+InvitationServiceListMyInvitationsProcedure, opts...),
		suggestSlug:       connect.NewClient[SuggestSlugRequest, SuggestSlugResponse](httpClient, baseURL+InvitationServiceSuggestSlugProcedure, opts...),
	}
}

func (c *InvitationServiceClient) CreateInvitation(ctx context.Context, req *connect.Request[CreateInvitationRequest]) (*connect.Response[CreateInvitationResponse], error) {
	return c.createInvitation.CallUnary(ctx, req)
}

func (c *InvitationServiceClient) GetInvitation(ctx context.Context, req *connect.Request[GetInvitationRequest]) (*connect.Response[GetInvitationResponse], error) {
	return c.getInvitation.CallUnary(ctx, req)
}

func (c *InvitationServiceClient) UpdateInvitation(ctx context.Context, req *connect.Request[UpdateInvitationRequest]) (*connect.Response[UpdateInvitationResponse], error) {
	return c.updateInvitation.CallUnary(ctx, req)
}

func (c *InvitationServiceClient) ListMyInvitations(ctx context.Context, req *connect.Request[ListMyInvitationsRequest]) (*connect.Response[ListMyInvitationsResponse], error) {
	return c.listMyInvitations.CallUnary(ctx, req)
}

func (c *InvitationServiceClient) SuggestSlug(ctx context.Context, req *connect.Request[SuggestSlugRequest]) (*connect.Response[SuggestSlugResponse], error) {
	return c.suggestSlug.CallUnary(ctx, req)
}

func withJSON(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func routeHandler(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
