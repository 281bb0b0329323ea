// Package orderboard lets a seller view orders grouped by order id and
// bulk-submit status transitions.
package orderboard

import (
	"context"
	"sync"

	"github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/farmhub-ng/farm-marketplace/internal/storeclient"
)

// Group is one order reassembled from the flat seller feed.
type Group struct {
	OrderID  string             `json:"orderId"`
	Status   models.OrderStatus `json:"status"`
	Products []models.OrderLine `json:"products"`
}

// GroupByOrderID groups flat per-line order records by shared order id,
// preserving first-seen order. The feed repeats the status on every row;
// when rows disagree the last-seen value wins. That is a data-quality
// assumption inherited from the feed, not a correctness guarantee.
func GroupByOrderID(lines []models.OrderLine) []Group {

	var groups []Group

	index := make(map[string]int, len(lines))

	for _, line := range lines {

		i, seen := index[line.OrderID]
		if !seen {
			index[line.OrderID] = len(groups)
			groups = append(groups, Group{OrderID: line.OrderID, Status: line.Status})
			i = len(groups) - 1
		}

		groups[i].Status = line.Status
		groups[i].Products = append(groups[i].Products, line)
	}

	return groups
}

type Board struct {
	sellerID string
	store    storeclient.Store

	mu     sync.RWMutex
	groups []Group
}

func NewBoard(sellerID string, store storeclient.Store) *Board {
	return &Board{sellerID: sellerID, store: store}
}

// Load fetches the seller's flat order feed and regroups it, replacing any
// local edits that were never saved.
func (b *Board) Load(ctx context.Context) ([]Group, error) {

	if b.sellerID == "" {
		return nil, errors.NotAuthenticatedError("No active session")
	}

	lines, err := b.store.FetchOrderFeed(ctx, b.sellerID)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.groups = GroupByOrderID(lines)
	b.mu.Unlock()

	return b.Groups(), nil
}

// SetGroupStatus changes a group's status locally. Nothing reaches the
// store until SaveAll. Unknown order ids are a no-op.
func (b *Board) SetGroupStatus(orderID string, status models.OrderStatus) bool {

	if !status.Valid() {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.groups {
		if b.groups[i].OrderID == orderID {
			b.groups[i].Status = status
			return true
		}
	}

	return false
}

// SaveAll submits every {orderId, status} pair in one batch. Any non-2xx
// response is treated as "no changes applied"; the caller prompts a retry.
func (b *Board) SaveAll(ctx context.Context) error {

	b.mu.RLock()
	updates := make([]models.StatusUpdate, 0, len(b.groups))

	for _, group := range b.groups {
		updates = append(updates, models.StatusUpdate{OrderID: group.OrderID, Status: group.Status})
	}
	b.mu.RUnlock()

	if len(updates) == 0 {
		return nil
	}

	return b.store.UpdateStatuses(ctx, updates)
}

// Groups returns a copy of the current group list.
func (b *Board) Groups() []Group {
	b.mu.RLock()
	defer b.mu.RUnlock()

	groups := make([]Group, len(b.groups))
	copy(groups, b.groups)

	for i := range groups {
		groups[i].Products = append([]models.OrderLine(nil), groups[i].Products...)
	}

	return groups
}
