package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/mock"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestStartPoller_SendsOnlyChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mock.NewMockDirectory(ctrl)

	initial := []library.Client{{ID: "user1", Name: "Paweł"}}
	grown := []library.Client{{ID: "user1", Name: "Paweł"}, {ID: "user2", Name: "Kasia"}}

	gomock.InOrder(
		dir.EXPECT().Clients(gomock.Any()).Return(initial, nil),
		dir.EXPECT().Clients(gomock.Any()).Return(nil, errors.New("catalog down")),
		dir.EXPECT().Clients(gomock.Any()).Return(grown, nil),
	)
	dir.EXPECT().Clients(gomock.Any()).Return(grown, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := StartPoller(ctx, dir, initial, 5*time.Millisecond, nil)

	select {
	case got := <-updates:
		assert.Equal(t, grown, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no directory update")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
