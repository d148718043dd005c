package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dineflow/internal/models"
)

// requirement is one stock-tracked item's aggregated demand across the whole
// cart. Duplicate references are summed before any row is touched.
type requirement struct {
	item *models.CatalogItem
	qty  int
}

// DepletedItem names an item whose stock reached zero during assembly. The
// engine publishes one alert per entry after commit.
type DepletedItem struct {
	Kind models.ItemKind
	ID   int64
	Name string
}

// stockRequirements flattens a cart into per-item demands in first-appearance
// order. Items that do not track stock are skipped entirely.
func stockRequirements(cart *models.Cart, menus, addons map[int64]*models.CatalogItem) []requirement {
	type key struct {
		kind models.ItemKind
		id   int64
	}
	index := make(map[key]int)
	var reqs []requirement

	add := func(item *models.CatalogItem, qty int) {
		if item == nil || !item.TrackStock {
			return
		}
		k := key{kind: item.Kind, id: item.ID}
		if pos, ok := index[k]; ok {
			reqs[pos].qty += qty
			return
		}
		index[k] = len(reqs)
		reqs = append(reqs, requirement{item: item, qty: qty})
	}

	for _, line := range cart.Items {
		add(menus[line.MenuID], line.Quantity)
		for _, addon := range line.Addons {
			add(addons[addon.AddonItemID], addon.Quantity)
		}
	}
	return reqs
}

// applyStockDecrements walks the aggregated requirements and performs the
// conditional decrement per item. The snapshot check catches obviously short
// stock before writing; the guard on the UPDATE is what actually serializes
// concurrent carts, so a zero-row update fails the run even when the snapshot
// looked fine. Items that hit zero are deactivated and reported back.
func (e *Engine) applyStockDecrements(ctx context.Context, tx pgx.Tx, reqs []requirement) ([]DepletedItem, error) {
	var depleted []DepletedItem
	for _, req := range reqs {
		item := req.item
		if item.StockQty == nil || *item.StockQty < req.qty {
			return nil, models.ErrInsufficientStock(item.Name)
		}

		newQty, ok, err := e.store.DecrementStock(ctx, tx, item.Kind, item.ID, req.qty)
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s %d: %w", item.Kind, item.ID, err)
		}
		if !ok {
			return nil, models.ErrInsufficientStock(item.Name)
		}

		if newQty <= 0 {
			if err := e.store.DeactivateItem(ctx, tx, item.Kind, item.ID); err != nil {
				return nil, fmt.Errorf("deactivate %s %d: %w", item.Kind, item.ID, err)
			}
			depleted = append(depleted, DepletedItem{Kind: item.Kind, ID: item.ID, Name: item.Name})
		}
	}
	return depleted, nil
}
