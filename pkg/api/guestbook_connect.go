package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// GuestbookServiceName is the fully-qualified name of the GuestbookService.
const GuestbookServiceName = "wedding.v1.GuestbookService"

const (
	GuestbookServicePostCommentProcedure  = "/wedding.v1.GuestbookService/PostComment"
	GuestbookServiceListCommentsProcedure = "/wedding.v1.GuestbookService/ListComments"
	GuestbookServiceSendGiftProcedure     = "/wedding.v1.GuestbookService/SendGift"
	GuestbookServiceListGiftsProcedure    = "/wedding.v1.GuestbookService/ListGifts"
	GuestbookServiceConfirmGiftProcedure  = "/wedding.v1.GuestbookService/ConfirmGift"
)

// GuestbookServiceHandler is implemented by the server side of the service.
type GuestbookServiceHandler interface {
	PostComment(context.Context, *connect.Request[PostCommentRequest]) (*connect.Response[PostCommentResponse], error)
	ListComments(context.Context, *connect.Request[ListCommentsRequest]) (*connect.Response[ListCommentsResponse], error)
	SendGift(context.Context, *connect.Request[SendGiftRequest]) (*connect.Response[SendGiftResponse], error)
	ListGifts(context.Context, *connect.Request[ListGiftsRequest]) (*connect.Response[ListGiftsResponse], error)
	ConfirmGift(context.Context, *connect.Request[ConfirmGiftRequest]) (*connect.Response[ConfirmGiftResponse], error)
}

// NewGuestbookServiceHandler builds an HTTP handler for svc and returns the
// path prefix to mount it on.
func NewGuestbookServiceHandler(svc GuestbookServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	routes := map[string]http.Handler{
		GuestbookServicePostCommentProcedure:  connect.NewUnaryHandler(GuestbookServicePostCommentProcedure, svc.PostComment, opts...),
		GuestbookServiceListCommentsProcedure: connect.NewUnaryHandler(GuestbookServiceListCommentsProcedure, svc.ListComments, opts...),
		GuestbookServiceSendGiftProcedure:     connect.NewUnaryHandler(GuestbookServiceSendGiftProcedure, svc.SendGift, opts...),
		GuestbookServiceListGiftsProcedure:    connect.NewUnaryHandler(GuestbookServiceListGiftsProcedure, svc.ListGifts, opts...),
		GuestbookServiceConfirmGiftProcedure:  connect.NewUnaryHandler(GuestbookServiceConfirmGiftProcedure, svc.ConfirmGift, opts...),
	}
	return "/" + GuestbookServiceName + "/", routeHandler(routes)
}

// GuestbookServiceClient calls a GuestbookService.
type GuestbookServiceClient struct {
	postComment  *connect.Client[PostCommentRequest, PostCommentResponse]
	listComments *connect.Client[ListCommentsRequest, ListCommentsResponse]
	sendGift     *connect.Client[SendGiftRequest, SendGiftResponse]
	listGifts    *connect.Client[ListGiftsRequest, ListGiftsResponse]
	confirmGift  *connect.Client[ConfirmGiftRequest, ConfirmGiftResponse]
}

// NewGuestbookServiceClient creates a client for the service at baseURL.
func NewGuestbookServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GuestbookServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &GuestbookServiceClient{
		postComment:  connect.NewClient[PostCommentRequest, PostCommentResponse](httpClient, baseURL+GuestbookServicePostCommentProcedure, opts...),
		listComments: connect.NewClient[ListCommentsRequest, ListCommentsResponse](httpClient, baseURL+GuestbookServiceListCommentsProcedure, opts...),
		sendGift:     connect.NewClient[SendGiftRequest, SendGiftResponse](httpClient, baseURL+GuestbookServiceSendGiftProcedure, opts...),
		listGifts:    connect.NewClient[ListGiftsRequest, ListGiftsResponse](httpClient, baseURL+GuestbookServiceListGiftsProcedure, opts...),
		confirmGift:  connect.NewClient[ConfirmGiftRequest, ConfirmGiftResponse](httpClient, baseURL+GuestbookServiceConfirmGiftProcedure, opts...),
	}
}

func (c *GuestbookServiceClient) PostComment(ctx context.Context, req *connect.Request[PostCommentRequest]) (*connect.Response[PostCommentResponse], error) {
	return c.postComment.CallUnary(ctx, req)
}

func (c *GuestbookServiceClient) ListComments(ctx context.Context, req *connect.Request[ListCommentsRequest]) (*connect.Response[ListCommentsResponse], error) {
	return c.listComments.CallUnary(ctx, req)
}

func (c *GuestbookServiceClient) SendGift(ctx context.Context, req *connect.Request[SendGiftRequest]) (*connect.Response[SendGiftResponse], error) {
	return c.sendGift.CallUnary(ctx, req)
}

func (c *GuestbookServiceClient) ListGifts(ctx context.Context, req *connect.Request[ListGiftsRequest]) (*connect.Response[ListGiftsResponse], error) {
	return c.listGifts.CallUnary(ctx, req)
}

func (c *GuestbookServiceClient) ConfirmGift(ctx context.Context, req *connect.Request[ConfirmGiftRequest]) (*connect.Response[ConfirmGiftResponse], error) {
	return c.confirmGift.CallUnary(ctx, req)
}
