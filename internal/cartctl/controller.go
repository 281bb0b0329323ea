// Package cartctl keeps a visitor's locally displayed cart consistent with
// the remote store. Local state is a cache: every mutation is followed by a
// refresh from the store, because the store may reject, clamp or otherwise
// alter the requested change.
package cartctl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/farmhub-ng/farm-marketplace/internal/storeclient"
	"github.com/shopspring/decimal"
)

// Session identifies the visitor for the lifetime of the controller. It is
// injected at construction instead of being read from ambient storage
// inside every call.
type Session struct {
	OwnerID string
	Token   string
}

func (s Session) Authenticated() bool {
	return s.OwnerID != ""
}

// Notifier is the toast surface. Fire and forget, no delivery guarantee.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Failure(string) {}

type Controller struct {
	session Session
	store   storeclient.Store
	notify  Notifier
	logger  *slog.Logger

	mu           sync.RWMutex
	cart         models.Cart
	inFlight     map[string]struct{}
	checkoutBusy bool
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notify = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(session Session, store storeclient.Store, opts ...Option) *Controller {

	c := &Controller{
		session:  session,
		store:    store,
		notify:   noopNotifier{},
		logger:   slog.Default(),
		cart:     models.Cart{OwnerID: session.OwnerID},
		inFlight: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Cart returns a copy of the cached view.
func (c *Controller) Cart() models.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cart := models.Cart{OwnerID: c.cart.OwnerID}
	cart.Lines = append(cart.Lines, c.cart.Lines...)

	return cart
}

func (c *Controller) GrandTotal() decimal.Decimal {
	cart := c.Cart()

	return cart.GrandTotal()
}

// LoadCart replaces the entire cached cart with the store's response. On
// failure the last-known cart is retained so the caller can keep showing
// it behind a non-blocking error state.
func (c *Controller) LoadCart(ctx context.Context) (models.Cart, error) {

	if !c.session.Authenticated() {
		return models.Cart{}, errors.NotAuthenticatedError("No active session")
	}

	cart, err := c.store.FetchCart(ctx, c.session.OwnerID)
	if err != nil {
		c.logger.Warn("cart fetch failed", slog.String("error", err.Error()))
		return c.Cart(), err
	}

	c.mu.Lock()
	c.cart = *cart
	c.mu.Unlock()

	return c.Cart(), nil
}

// AddItem upserts a line. Merging quantities for a product already in the
// cart is the store's job; the client never merges locally.
func (c *Controller) AddItem(ctx context.Context, productID string, quantity int) error {

	if quantity < 1 {
		return errors.BadRequestError("Quantity must be at least 1")
	}

	return c.mutateLine(ctx, productID, func(ctx context.Context) error {
		return c.store.AddItem(ctx, c.session.OwnerID, productID, quantity)
	}, "added to cart")
}

// IncrementLine issues a single +1 delta. The true resulting quantity is
// only learned from the refresh; the store may clamp differently.
func (c *Controller) IncrementLine(ctx context.Context, productID string) error {
	return c.mutateLine(ctx, productID, func(ctx context.Context) error {
		return c.store.DeltaQuantity(ctx, c.session.OwnerID, productID, models.DeltaAdd)
	}, "")
}

// DecrementLine issues a single -1 delta. The UI disables the control at
// quantity 1, but the store may still clamp at 1 or remove the line; either
// outcome is resolved by the refresh.
func (c *Controller) DecrementLine(ctx context.Context, productID string) error {
	return c.mutateLine(ctx, productID, func(ctx context.Context) error {
		return c.store.DeltaQuantity(ctx, c.session.OwnerID, productID, models.DeltaRemove)
	}, "")
}

// RemoveLine is idempotent: a line already absent on the store side counts
// as removed.
func (c *Controller) RemoveLine(ctx context.Context, productID string) error {
	return c.mutateLine(ctx, productID, func(ctx context.Context) error {
		return c.store.RemoveItem(ctx, c.session.OwnerID, productID)
	}, "removed from cart")
}

// PlaceOrder converts the cart into an order and empties the cart. The
// non-empty check here is a UX guard only; the store is the authority and
// may still reject. On failure the cached cart is left untouched.
func (c *Controller) PlaceOrder(ctx context.Context) (*models.Order, error) {

	if !c.session.Authenticated() {
		return nil, errors.NotAuthenticatedError("No active session")
	}

	cart := c.Cart()
	if cart.IsEmpty() {
		return nil, errors.OrderPlacementFailedError("Your cart is empty")
	}

	if err := c.beginCheckout(); err != nil {
		return nil, err
	}
	defer c.endCheckout()

	order, err := c.store.PlaceOrder(ctx, c.session.OwnerID)
	if err != nil {
		c.notify.Failure(err.Error())
		return nil, err
	}

	// The cart is now empty server-side; pick that up.
	c.refresh(ctx)
	c.notify.Success("Order placed")

	return order, nil
}

// mutateLine serializes mutations per product, runs the mutation and then
// unconditionally refreshes from the store. The refresh happens whether
// the mutation succeeded or not, because partial application is possible
// server-side; its own errors are swallowed.
func (c *Controller) mutateLine(ctx context.Context, productID string, op func(context.Context) error, successNote string) error {

	if !c.session.Authenticated() {
		return errors.NotAuthenticatedError("No active session")
	}

	if productID == "" {
		return errors.BadRequestError("Product ID is required")
	}

	if err := c.beginLine(productID); err != nil {
		return err
	}
	defer c.endLine(productID)

	mutErr := op(ctx)

	c.refresh(ctx)

	if mutErr != nil {
		c.notify.Failure(mutErr.Error())
		return mutErr
	}

	if successNote != "" {
		c.notify.Success(successNote)
	}

	return nil
}

// refresh re-establishes ground truth after a mutation attempt. A caller
// that has already gone away (cancelled context) gets no cache update; the
// stale response is discarded.
func (c *Controller) refresh(ctx context.Context) {

	if ctx.Err() != nil {
		return
	}

	cart, err := c.store.FetchCart(ctx, c.session.OwnerID)
	if err != nil {
		c.logger.Warn("post-mutation refresh failed", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	c.cart = *cart
	c.mu.Unlock()
}

// beginLine enforces at most one in-flight mutation per product. The store
// speaks relative deltas, so two overlapping requests for one line would
// produce a wrong but plausible-looking quantity until the next refresh.
func (c *Controller) beginLine(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[productID]; busy {
		return errors.MutationRejectedError("Another update for this item is in progress")
	}

	c.inFlight[productID] = struct{}{}

	return nil
}

func (c *Controller) endLine(productID string) {
	c.mu.Lock()
	delete(c.inFlight, productID)
	c.mu.Unlock()
}

func (c *Controller) beginCheckout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkoutBusy {
		return errors.OrderPlacementFailedError("Checkout already in progress")
	}

	c.checkoutBusy = true

	return nil
}

func (c *Controller) endCheckout() {
	c.mu.Lock()
	c.checkoutBusy = false
	c.mu.Unlock()
}
