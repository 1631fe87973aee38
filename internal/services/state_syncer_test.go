package services

import (
	"context"
	"sync"
	"testing"

	"ourlog/internal/domain"
	"ourlog/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestTradeStateSyncer_Sync(t *testing.T) {
	trades := newFakeTradeRepo(
		openTrade(10, 1, 5000, nil),
		openTrade(11, 1, 0, nil),
	)
	stateCache := newFakeStateCache()
	syncer := NewTradeStateSyncer(trades, stateCache, logger.NewNop())
	ctx := context.Background()

	syncer.sync(ctx)

	status, ok, err := stateCache.GetTradeStatus(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.TradeOpen, status)

	// Trade 11 closes; it drops out of the open set, so the next pass
	// must mark it closed in the cache.
	trades.trades[11].Status = domain.TradeClosed
	syncer.sync(ctx)

	status, ok, err = stateCache.GetTradeStatus(ctx, 11)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.TradeClosed, status)

	// Trade 10 stays open.
	status, ok, err = stateCache.GetTradeStatus(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.TradeOpen, status)
}

// Overlapping cron activations must serialize: a pass that outlasts the
// interval runs alongside the next fire, and both touch knownOpen.
func TestTradeStateSyncer_OverlappingSyncs(t *testing.T) {
	trades := newFakeTradeRepo(
		openTrade(10, 1, 5000, nil),
		openTrade(11, 1, 0, nil),
	)
	stateCache := newFakeStateCache()
	syncer := NewTradeStateSyncer(trades, stateCache, logger.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				syncer.sync(ctx)
			}
		}()
	}
	wg.Wait()

	status, ok, err := stateCache.GetTradeStatus(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.TradeOpen, status)
}
