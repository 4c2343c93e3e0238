package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubExpirer struct {
	batches []int
	err     error
	calls   int
	cutoffs []time.Time
}

func (s *stubExpirer) ExpirePendingOrders(_ context.Context, cutoff time.Time, _ int) (int, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	if s.err != nil {
		return 0, s.err
	}
	if s.calls >= len(s.batches) {
		return 0, nil
	}
	n := s.batches[s.calls]
	s.calls++
	return n, nil
}

func TestOrderExpiryWorker_RunDrainsFullBatches(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		batches []int
		err     error
		want    int
	}{
		{"empty", nil, nil, 1},
		{"short batch stops", []int{3}, nil, 1},
		{"full batches continue", []int{5, 5, 2}, nil, 3},
		{"error stops", nil, errors.New("db down"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubExpirer{batches: tt.batches, err: tt.err}
			w := NewOrderExpiryWorker(stub, 2*time.Hour, time.Minute, 5)
			w.now = func() time.Time { return now }

			w.run(context.Background())

			if len(stub.cutoffs) != tt.want {
				t.Errorf("calls = %d, want %d", len(stub.cutoffs), tt.want)
			}
			if want := now.Add(-2 * time.Hour); !stub.cutoffs[0].Equal(want) {
				t.Errorf("cutoff = %v, want %v", stub.cutoffs[0], want)
			}
		})
	}
}

func TestOrderExpiryWorker_StartStopsOnCancel(t *testing.T) {
	w := NewOrderExpiryWorker(&stubExpirer{}, time.Hour, time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
