package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"strconv"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/freshcart/shopkit/domain"
)

// SignIn authenticates a customer. Sent without the Authorization header.
func (c *Client) SignIn(ctx context.Context, req domain.LoginRequest) (domain.JwtResponse, error) {
	return callJSON[domain.JwtResponse](ctx, c, fasthttp.MethodPost, "/auth/customer/signin", req, false)
}

// SignUp registers a new customer account.
func (c *Client) SignUp(ctx context.Context, req domain.SignupRequest) (domain.MessageResponse, error) {
	return callJSON[domain.MessageResponse](ctx, c, fasthttp.MethodPost, "/auth/customer/signup", req, false)
}

// Categories lists the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	return call[[]domain.Category](ctx, c, Descriptor{Path: "/categories", Method: fasthttp.MethodGet})
}

// Products lists the catalog, optionally filtered by category.
func (c *Client) Products(ctx context.Context, categoryID *int) ([]domain.Product, error) {
	path := "/fruits"
	if categoryID != nil {
		path += "?categoryId=" + strconv.Itoa(*categoryID)
	}
	return call[[]domain.Product](ctx, c, Descriptor{Path: path, Method: fasthttp.MethodGet})
}

// Orders lists the authenticated customer's orders.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	return call[[]domain.Order](ctx, c, Descriptor{Path: "/orders", Method: fasthttp.MethodGet, RequiresAuth: true})
}

// Checkout submits the cart for server-side pricing and order creation.
func (c *Client) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	return callJSON[domain.Order](ctx, c, fasthttp.MethodPost, "/orders/checkout", req, true)
}

// Profile fetches the customer profile.
func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	return call[domain.Profile](ctx, c, Descriptor{Path: "/customers/profile", Method: fasthttp.MethodGet, RequiresAuth: true})
}

// UpdateProfile replaces the customer profile.
func (c *Client) UpdateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	return callJSON[domain.Profile](ctx, c, fasthttp.MethodPut, "/customers/profile", profile, true)
}

// ChatHistory fetches the saved assistant conversation.
func (c *Client) ChatHistory(ctx context.Context) ([]domain.ChatMessage, error) {
	return call[[]domain.ChatMessage](ctx, c, Descriptor{Path: "/chat/history", Method: fasthttp.MethodGet, RequiresAuth: true})
}

// SaveChatMessage appends one message to the assistant conversation.
func (c *Client) SaveChatMessage(ctx context.Context, msg domain.ChatMessage) (domain.MessageResponse, error) {
	return callJSON[domain.MessageResponse](ctx, c, fasthttp.MethodPost, "/chat/messages", msg, true)
}

// UploadImage sends image bytes as a multipart form under the `file` field.
func (c *Client) UploadImage(ctx context.Context, fileName string, data []byte) (domain.ImageUploadResponse, error) {
	body, contentType, err := multipartFile(fileName, data)
	if err != nil {
		return domain.ImageUploadResponse{}, err
	}
	return call[domain.ImageUploadResponse](ctx, c, Descriptor{
		Path:         "/images/upload",
		Method:       fasthttp.MethodPost,
		Body:         body,
		RequiresAuth: true,
		ContentType:  contentType,
	})
}

// Ping hits the unauthenticated health endpoint.
func (c *Client) Ping(ctx context.Context) (map[string]string, error) {
	return call[map[string]string](ctx, c, Descriptor{Path: "/health/ping", Method: fasthttp.MethodGet})
}

// IsReachable reports whether the backend answers the health check.
func (c *Client) IsReachable(ctx context.Context) bool {
	_, err := c.Ping(ctx)
	return err == nil
}

func multipartFile(fileName string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(uuid.NewString()); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
