package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func newTestLimiter(anonPoints, authPoints int) (*Limiter, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	l := New(
		PoolConfig{Points: anonPoints, Window: time.Minute, Block: 30 * time.Second},
		PoolConfig{Points: authPoints, Window: time.Minute, Block: 15 * time.Second},
	)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestExhaustedPoolRejectsUntilRefill(t *testing.T) {
	l, now := newTestLimiter(3, 6)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1", false) {
			t.Fatalf("attempt %d unexpectedly rejected", i+1)
		}
	}
	if l.Allow("10.0.0.1", false) {
		t.Fatalf("attempt beyond capacity was allowed")
	}

	// Inside the block window nothing gets through, even though the bucket
	// is refilling in the background.
	*now = now.Add(10 * time.Second)
	if l.Allow("10.0.0.1", false) {
		t.Fatalf("attempt during block window was allowed")
	}

	// After the block expires the partially refilled bucket admits again.
	*now = now.Add(25 * time.Second)
	if !l.Allow("10.0.0.1", false) {
		t.Fatalf("attempt after block expiry was rejected")
	}
}

func TestPoolsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(2, 4)

	for i := 0; i < 2; i++ {
		if !l.Allow("10.0.0.1", false) {
			t.Fatalf("anonymous attempt %d rejected", i+1)
		}
	}
	if l.Allow("10.0.0.1", false) {
		t.Fatalf("anonymous pool should be exhausted")
	}

	// The authenticated pool for the same address is untouched.
	for i := 0; i < 4; i++ {
		if !l.Allow("10.0.0.1", true) {
			t.Fatalf("authenticated attempt %d rejected", i+1)
		}
	}
	if l.Allow("10.0.0.1", true) {
		t.Fatalf("authenticated pool should be exhausted")
	}
}

func TestAddressesAreIsolated(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	if !l.Allow("10.0.0.1", false) {
		t.Fatalf("first address rejected")
	}
	if l.Allow("10.0.0.1", false) {
		t.Fatalf("first address should be exhausted")
	}
	if !l.Allow("10.0.0.2", false) {
		t.Fatalf("second address should be unaffected")
	}
}

func TestZeroConfigStillAdmitsOne(t *testing.T) {
	l := New(PoolConfig{}, PoolConfig{})
	if !l.Allow("10.0.0.1", false) {
		t.Fatalf("defaulted pool rejected the first attempt")
	}
}

func TestManyAddressesDoNotInterfere(t *testing.T) {
	l, _ := newTestLimiter(2, 2)

	for i := 0; i < 50; i++ {
		addr := fmt.Sprintf("10.0.1.%d", i)
		if !l.Allow(addr, false) {
			t.Fatalf("address %s rejected on first attempt", addr)
		}
	}
}
