package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"dineflow/internal/models"
)

const (
	orderNumberCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberAttempts = 10
)

// NumberGenerator produces short staff-readable order numbers of the form
// CODE-XXXX, unique per merchant per business day in the merchant's timezone.
// Across days the same number may recur: it is a counter-side handle, not a
// global key.
type NumberGenerator struct {
	store    Store
	randText func(n int) (string, error)
}

// NewNumberGenerator creates a generator backed by crypto/rand.
func NewNumberGenerator(store Store) *NumberGenerator {
	return &NumberGenerator{store: store, randText: randText}
}

// Generate picks a candidate and checks it against orders placed the same
// business day, retrying on collision. After the attempt budget it falls back
// to the tail of the millisecond clock in base36, which it accepts unchecked.
func (g *NumberGenerator) Generate(ctx context.Context, tx pgx.Tx, merchant *models.Merchant, placedAt time.Time) (string, error) {
	from, to := businessDayBounds(merchant, placedAt)

	for i := 0; i < orderNumberAttempts; i++ {
		suffix, err := g.randText(4)
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		candidate := merchant.Code + "-" + suffix

		taken, err := g.store.OrderNumberTaken(ctx, tx, merchant.ID, candidate, from, to)
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	ms := strings.ToUpper(strconv.FormatInt(placedAt.UnixMilli(), 36))
	return merchant.Code + "-" + ms[len(ms)-4:], nil
}

// businessDayBounds returns the [start, end) of the calendar day containing
// the instant in the merchant's timezone.
func businessDayBounds(m *models.Merchant, at time.Time) (time.Time, time.Time) {
	loc := m.Location()
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour)
}

func randText(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return string(out), nil
}
