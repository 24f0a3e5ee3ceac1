package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/advisor"
	"github.com/rs/zerolog"
)

// counting is a helper for test that loads priced assets and counts the loads.
func counting(calls *atomic.Int32) LoadFunc {
	return func(ctx context.Context, ticker string) (*advisor.Asset, error) {
		calls.Add(1)
		if ticker == "MISSING" {
			return nil, errors.New("not found")
		}
		return &advisor.Asset{Ticker: ticker, Price: 10}, nil
	}
}

func TestProfiles_Get(t *testing.T) {
	var calls atomic.Int32
	p := New(10, time.Hour, counting(&calls), zerolog.Nop())
	ctx := context.Background()

	a, err := p.Get(ctx, "AAPL")
	if err != nil || a.Ticker != "AAPL" {
		t.Fatalf("Get() = %v, %v, want AAPL", a, err)
	}
	b, _ := p.Get(ctx, "AAPL")
	if a != b || calls.Load() != 1 {
		t.Errorf("Get() loaded %d times, want 1", calls.Load())
	}

	if _, err := p.Get(ctx, "MISSING"); err == nil {
		t.Errorf("Get(MISSING) error = nil, want error")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}

	p.Remove("AAPL")
	p.Get(ctx, "AAPL")
	if calls.Load() != 3 {
		t.Errorf("Get() after Remove loaded %d times, want 3", calls.Load())
	}
}

func TestProfiles_Expiry(t *testing.T) {
	var calls atomic.Int32
	p := New(10, 20*time.Millisecond, counting(&calls), zerolog.Nop())
	ctx := context.Background()

	p.Get(ctx, "KO")
	time.Sleep(50 * time.Millisecond)
	p.Get(ctx, "KO")
	if calls.Load() != 2 {
		t.Errorf("Get() after ttl loaded %d times, want 2", calls.Load())
	}
}

func TestProfiles_Eviction(t *testing.T) {
	var calls atomic.Int32
	p := New(2, time.Hour, counting(&calls), zerolog.Nop())

	p.GetAll(context.Background(), "A", "B", "C")

	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	p.Purge()
	if p.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", p.Len())
	}
}

func TestProfiles_Concurrent(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	slow := func(ctx context.Context, ticker string) (*advisor.Asset, error) {
		<-release
		return counting(&calls)(ctx, ticker)
	}
	p := New(10, time.Hour, slow, zerolog.Nop())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Get(context.Background(), "MSFT")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("concurrent Get() loaded %d times, want 1", calls.Load())
	}
}

func TestFromSnapshot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "snapshot.jsonl")
	content := "{\"ticker\":\"A\",\"price\":12}\n{\"ticker\":\"B\",\"price\":3}\n"
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	p := New(10, time.Hour, FromSnapshot(filename), zerolog.Nop())

	assets, err := p.GetAll(context.Background(), "B", "A")
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if assets[0].Price != 3 || assets[1].Price != 12 {
		t.Errorf("GetAll() = %v, %v, want B at 3 and A at 12", assets[0], assets[1])
	}
	if _, err := p.Get(context.Background(), "C"); !errors.Is(err, advisor.ErrInvalidInput) {
		t.Errorf("Get(C) error = %v, want ErrInvalidInput", err)
	}
}
