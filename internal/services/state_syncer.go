package services

import (
	"context"
	"sync"

	"ourlog/internal/domain"
	"ourlog/pkg/logger"

	"github.com/robfig/cron/v3"
)

// TradeStateSyncer keeps the Redis status cache in step with MySQL so the
// bid path can reject bids on ended auctions without a database round
// trip. A cache entry is only ever missing or correct: trades drop out of
// the open set when they close, and the syncer writes the closed status
// before forgetting them.
type TradeStateSyncer struct {
	cron       *cron.Cron
	trades     domain.TradeRepository
	stateCache domain.TradeStateCache
	mu         sync.Mutex
	knownOpen  map[int64]bool
	log        logger.Logger
}

func NewTradeStateSyncer(trades domain.TradeRepository, stateCache domain.TradeStateCache,
	log logger.Logger) *TradeStateSyncer {
	return &TradeStateSyncer{
		cron:       cron.New(cron.WithSeconds()),
		trades:     trades,
		stateCache: stateCache,
		knownOpen:  make(map[int64]bool),
		log:        log,
	}
}

func (s *TradeStateSyncer) Start(ctx context.Context) error {
	s.log.Info("Starting trade state syncer")

	_, err := s.cron.AddFunc("@every 30s", func() {
		s.sync(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *TradeStateSyncer) Stop() error {
	s.log.Info("Stopping trade state syncer")
	s.cron.Stop()
	return nil
}

func (s *TradeStateSyncer) sync(ctx context.Context) {
	// Cron fires each activation in its own goroutine; a pass that
	// outlasts the interval would otherwise race the next one over
	// knownOpen.
	s.mu.Lock()
	defer s.mu.Unlock()

	trades, err := s.trades.ListOpenTrades(ctx)
	if err != nil {
		s.log.Error("Failed to list open trades", "error", err)
		return
	}

	open := make(map[int64]bool, len(trades))
	for _, trade := range trades {
		open[trade.ID] = true
		if err := s.stateCache.SetTradeStatus(ctx, trade.ID, domain.TradeOpen); err != nil {
			s.log.Error("Failed to cache trade status", "trade_id", trade.ID, "error", err)
		}
	}

	// Anything we saw open before and is gone now has closed.
	for tradeID := range s.knownOpen {
		if open[tradeID] {
			continue
		}
		if err := s.stateCache.SetTradeStatus(ctx, tradeID, domain.TradeClosed); err != nil {
			s.log.Error("Failed to cache trade status", "trade_id", tradeID, "error", err)
		}
	}

	s.knownOpen = open
}
