package llm

import (
	"context"
	"testing"
	"time"
)

func TestPacerSpacesCalls(t *testing.T) {
	p := newPacer(50)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 2*p.interval {
		t.Fatalf("three calls completed in %v, want at least %v", elapsed, 2*p.interval)
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := newPacer(1)
	if err := p.wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.wait(ctx); err == nil {
		t.Fatal("cancelled wait returned nil")
	}
}
