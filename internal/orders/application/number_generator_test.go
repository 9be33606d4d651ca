package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"sales-micro/internal/orders/domain"
)

func TestOrderNumberGenerator_Format(t *testing.T) {
	gen := NewOrderNumberGenerator(NewMockOrderRepository())

	number, err := gen.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	want := fmt.Sprintf("ORD-%d-000001", time.Now().Year())
	if number != want {
		t.Errorf("Next() = %q, want %q", number, want)
	}
}

func TestOrderNumberGenerator_SeedsFromPersistedNumbers(t *testing.T) {
	repo := NewMockOrderRepository()
	year := time.Now().Year()

	// A restart must pick up after the highest persisted number, not reissue
	order := domain.NewOrder(fmt.Sprintf("ORD-%d-000041", year), 1, "")
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	gen := NewOrderNumberGenerator(repo)
	number, err := gen.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	want := fmt.Sprintf("ORD-%d-000042", year)
	if number != want {
		t.Errorf("Next() = %q, want %q", number, want)
	}
}

func TestOrderNumberGenerator_MalformedPersistedNumberCountsAsZero(t *testing.T) {
	repo := NewMockOrderRepository()
	year := time.Now().Year()

	order := domain.NewOrder(fmt.Sprintf("ORD-%d-garbage", year), 1, "")
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	gen := NewOrderNumberGenerator(repo)
	number, err := gen.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	want := fmt.Sprintf("ORD-%d-000001", year)
	if number != want {
		t.Errorf("Next() = %q, want %q", number, want)
	}
}

func TestOrderNumberGenerator_ConcurrentUniqueness(t *testing.T) {
	gen := NewOrderNumberGenerator(NewMockOrderRepository())

	const n = 1000
	numbers := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := gen.Next(context.Background())
			if err != nil {
				t.Errorf("Next() error = %v", err)
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate order number issued: %s", number)
		}
		seen[number] = true
	}
	if len(seen) != n {
		t.Errorf("issued %d unique numbers, want %d", len(seen), n)
	}
}

func TestLastSequence(t *testing.T) {
	tests := []struct {
		number string
		want   uint64
	}{
		{"ORD-2026-000123", 123},
		{"ORD-2026-999999", 999999},
		{"", 0},
		{"ORD-2026-", 0},
		{"ORD-2026-12x", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		if got := lastSequence(tt.number); got != tt.want {
			t.Errorf("lastSequence(%q) = %d, want %d", tt.number, got, tt.want)
		}
	}
}
