package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farmhub-ng/farm-marketplace/internal/config"
	"github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Store is the remote cart/order store as the client sees it: the
// authoritative holder of cart contents and order records. Implementations
// never retry; every failure is terminal for that call.
type Store interface {
	FetchCart(ctx context.Context, ownerID string) (*models.Cart, error)
	AddItem(ctx context.Context, ownerID, productID string, quantity int) error
	DeltaQuantity(ctx context.Context, ownerID, productID string, action models.DeltaAction) error
	RemoveItem(ctx context.Context, ownerID, productID string) error
	PlaceOrder(ctx context.Context, ownerID string) (*models.Order, error)
	FetchOrders(ctx context.Context, ownerID string) ([]models.Order, error)
	FetchOrderFeed(ctx context.Context, sellerID string) ([]models.OrderLine, error)
	UpdateStatuses(ctx context.Context, updates []models.StatusUpdate) error
}

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, httpClient *http.Client) Store {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// NewFromConfig builds a Store pointed at the deployment named in the
// store_client config section.
func NewFromConfig(cfg config.StoreClient, token string) Store {
	return New(cfg.BaseURL, token, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// wireError covers both body shapes the store produces on failure: the
// flat {success, message} of the add endpoint and the error envelope of
// everything else.
type wireError struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (w *wireError) text() string {
	if w.Error != nil && w.Error.Message != "" {
		return w.Error.Message
	}

	return w.Message
}

func (c *client) do(ctx context.Context, method, path string, reqBody any) (int, []byte, error) {

	var body io.Reader

	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.RemoteUnavailableError("Store is unreachable").WithError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.RemoteUnavailableError("Failed to read store response").WithError(err)
	}

	return resp.StatusCode, data, nil
}

// mapFailure turns a non-2xx store response into the client-facing
// taxonomy: auth failures, transport-level outages and business-rule
// rejections are distinct because callers recover from them differently.
func mapFailure(status int, body []byte, fallback string) error {

	var wire wireError
	_ = json.Unmarshal(body, &wire)

	message := wire.text()
	if message == "" {
		message = fallback
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.NotAuthenticatedError(message)
	case status >= http.StatusInternalServerError:
		return errors.RemoteUnavailableError(message)
	default:
		return errors.MutationRejectedError(message)
	}
}

func (c *client) FetchCart(ctx context.Context, ownerID string) (*models.Cart, error) {

	status, body, err := c.do(ctx, http.MethodGet, "/cart/"+ownerID, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, mapFailure(status, body, "Failed to fetch cart")
	}

	var resp models.CartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.RemoteUnavailableError("Malformed cart response").WithError(err)
	}

	return &models.Cart{OwnerID: ownerID, Lines: resp.Products}, nil
}

func (c *client) AddItem(ctx context.Context, ownerID, productID string, quantity int) error {

	path := fmt.Sprintf("/cart/add/%s/%s", ownerID, productID)

	status, body, err := c.do(ctx, http.MethodPost, path, models.AddItemRequest{Quantity: quantity})
	if err != nil {
		return err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return mapFailure(status, body, "Failed to add item to cart")
	}

	// The add endpoint can report a business rejection inside a 2xx body.
	var resp models.AddItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return errors.RemoteUnavailableError("Malformed add-item response").WithError(err)
	}

	if !resp.Success {
		message := resp.Message
		if message == "" {
			message = "Item could not be added"
		}
		return errors.MutationRejectedError(message)
	}

	return nil
}

func (c *client) DeltaQuantity(ctx context.Context, ownerID, productID string, action models.DeltaAction) error {

	if !action.Valid() {
		return errors.BadRequestError(fmt.Sprintf("invalid delta action %q", action))
	}

	path := fmt.Sprintf("/cart/update/%s/%s/%s", ownerID, productID, action)

	status, body, err := c.do(ctx, http.MethodPatch, path, nil)
	if err != nil {
		return err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return mapFailure(status, body, "Failed to update quantity")
	}

	return nil
}

func (c *client) RemoveItem(ctx context.Context, ownerID, productID string) error {

	path := fmt.Sprintf("/cart/remove/%s/%s", ownerID, productID)

	status, body, err := c.do(ctx, http.MethodPatch, path, nil)
	if err != nil {
		return err
	}

	// Removing an absent line is a successful no-op.
	if status == http.StatusNotFound {
		return nil
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return mapFailure(status, body, "Failed to remove item")
	}

	return nil
}

func (c *client) PlaceOrder(ctx context.Context, ownerID string) (*models.Order, error) {

	status, body, err := c.do(ctx, http.MethodPost, "/orders/place/"+ownerID, nil)
	if err != nil {
		return nil, err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {

		failure := mapFailure(status, body, "Order could not be placed")

		// Checkout rejections get their own code; the store's own words are
		// surfaced verbatim when it sent any.
		if errors.IsCode(failure, errors.ErrCodeMutationRejected) {
			appErr, _ := errors.IsAppError(failure)
			return nil, errors.OrderPlacementFailedError(appErr.Message)
		}

		return nil, failure
	}

	var resp models.PlaceOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.RemoteUnavailableError("Malformed order response").WithError(err)
	}

	// Some stores answer with only a message; callers still get a non-nil
	// confirmation to read the status off.
	if resp.Order == nil {
		resp.Order = &models.Order{Status: models.OrderStatusPending}
	}

	return resp.Order, nil
}

func (c *client) FetchOrders(ctx context.Context, ownerID string) ([]models.Order, error) {

	status, body, err := c.do(ctx, http.MethodGet, "/orders/"+ownerID, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, mapFailure(status, body, "Failed to fetch orders")
	}

	var resp models.OrdersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.RemoteUnavailableError("Malformed orders response").WithError(err)
	}

	return resp.Orders, nil
}

func (c *client) FetchOrderFeed(ctx context.Context, sellerID string) ([]models.OrderLine, error) {

	status, body, err := c.do(ctx, http.MethodGet, "/orders/feed/"+sellerID, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, mapFailure(status, body, "Failed to fetch order feed")
	}

	var resp models.OrderFeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.RemoteUnavailableError("Malformed order feed response").WithError(err)
	}

	return resp.Lines, nil
}

func (c *client) UpdateStatuses(ctx context.Context, updates []models.StatusUpdate) error {

	status, body, err := c.do(ctx, http.MethodPut, "/orders/status", models.BatchStatusRequest{Updates: updates})
	if err != nil {
		return err
	}

	// The client has no visibility into partial batch failure; any non-2xx
	// means "no changes applied" and the caller should prompt a retry.
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return mapFailure(status, body, "Failed to update order statuses")
	}

	return nil
}
