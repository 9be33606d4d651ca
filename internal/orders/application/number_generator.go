package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"sales-micro/internal/orders/ports"
	"sales-micro/pkg/errors"
)

// OrderNumberGenerator issues unique order numbers of the form
// ORD-<year>-<sequence>. The sequence is scoped to the calendar year and
// strictly increasing. On first use, and again after a year rollover, the
// counter is seeded from the highest persisted order number for the year so
// restarts never reissue a number.
type OrderNumberGenerator struct {
	repo ports.OrderRepository

	mu     sync.Mutex
	year   int
	seq    uint64
	seeded bool
}

// NewOrderNumberGenerator creates a generator backed by the order repository
func NewOrderNumberGenerator(repo ports.OrderRepository) *OrderNumberGenerator {
	return &OrderNumberGenerator{repo: repo}
}

// Next returns the next unique order number. Safe for concurrent use; the
// mutex covers both seeding and the increment so no two callers observe the
// same sequence value.
func (g *OrderNumberGenerator) Next(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	year := time.Now().Year()
	if !g.seeded || year != g.year {
		prefix := fmt.Sprintf("ORD-%d-", year)
		last, err := g.repo.LastOrderNumberWithPrefix(ctx, prefix)
		if err != nil {
			return "", errors.NewInternal("failed to derive order number sequence", err)
		}
		g.seq = lastSequence(last)
		g.year = year
		g.seeded = true
	}

	g.seq++
	return fmt.Sprintf("ORD-%d-%06d", g.year, g.seq), nil
}

// lastSequence parses the trailing sequence of an order number; malformed
// stored numbers count as zero so generation recovers from bad data.
func lastSequence(number string) uint64 {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0
	}
	seq, err := strconv.ParseUint(number[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return seq
}
