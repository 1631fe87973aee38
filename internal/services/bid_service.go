package services

import (
	"context"

	"ourlog/internal/domain"
	"ourlog/pkg/logger"

	"github.com/google/uuid"
)

// BidUnit is the bidding step: amounts are multiples of this, and every
// accepted bid must beat the current highest bid by at least this much.
const BidUnit int64 = 1000

type BidService struct {
	trades     domain.TradeRepository
	bids       domain.BidRepository
	users      domain.UserRepository
	stateCache domain.TradeStateCache
	eventPub   domain.EventPublisher
	clock      domain.Clock
	log        logger.Logger
}

func NewBidService(
	trades domain.TradeRepository,
	bids domain.BidRepository,
	users domain.UserRepository,
	stateCache domain.TradeStateCache,
	eventPub domain.EventPublisher,
	clock domain.Clock,
	log logger.Logger,
) *BidService {
	return &BidService{
		trades:     trades,
		bids:       bids,
		users:      users,
		stateCache: stateCache,
		eventPub:   eventPub,
		clock:      clock,
		log:        log,
	}
}

// PlaceBid validates a bid against the trade's locked state and, when it
// passes, commits the new highest bid together with the bid record in one
// store transaction. A rejected bid leaves no trace. A bid that exactly
// matches the buy-now price short-circuits to BuyNowMatched without
// touching the trade; closing the sale is a separate confirmation step.
func (s *BidService) PlaceBid(ctx context.Context, tradeID, bidderID, amount int64) (*domain.BidResult, error) {
	s.log.Info("Placing bid", "trade_id", tradeID, "bidder_id", bidderID, "amount", amount)

	// Cheap rejection from the status cache. Status only ever moves
	// open -> closed, so a cached closed status is final. The locked
	// snapshot below stays the authority for everything else.
	if status, ok, err := s.stateCache.GetTradeStatus(ctx, tradeID); err == nil && ok && status == domain.TradeClosed {
		return nil, domain.InvalidState("the auction has already ended")
	}

	var result *domain.BidResult
	err := s.trades.PlaceBid(ctx, tradeID, func(trade *domain.Trade) (*domain.Bid, error) {
		res, err := s.evaluate(ctx, trade, bidderID, amount)
		if err != nil {
			return nil, err
		}
		result = res
		return res.Bid, nil
	})
	if err != nil {
		s.log.Info("Bid rejected", "trade_id", tradeID, "bidder_id", bidderID, "reason", err)
		return nil, err
	}

	s.publishEvent(ctx, result.Outcome, tradeID, bidderID, amount)
	return result, nil
}

// evaluate runs the validation gate in order against the locked trade
// snapshot. The first failing check wins; nothing is persisted here. On
// acceptance it raises trade.HighestBid and builds the bid record for the
// repository to commit.
func (s *BidService) evaluate(ctx context.Context, trade *domain.Trade, bidderID, amount int64) (*domain.BidResult, error) {
	if trade.Status != domain.TradeOpen {
		return nil, domain.InvalidState("the auction has already ended")
	}

	if amount <= 0 {
		return nil, domain.InvalidInput("bid amount must be positive")
	}

	if amount%BidUnit != 0 {
		return nil, domain.InvalidInput("bid amount must be in units of 1000")
	}

	if trade.NowBuy != nil && amount == *trade.NowBuy {
		return &domain.BidResult{
			Outcome:    domain.BuyNowMatched,
			HighestBid: trade.HighestBid,
		}, nil
	}

	if amount < trade.HighestBid+BidUnit {
		return nil, domain.InvalidInput("bid must exceed the current highest bid by at least 1000")
	}

	// Reachable when the buy-now price sits between increments, e.g. a
	// seller-entered price that is not itself a multiple of 1000.
	if trade.NowBuy != nil && amount > *trade.NowBuy {
		return nil, domain.InvalidInput("bid must not exceed the buy-now price")
	}

	bidder, err := s.users.GetUser(ctx, bidderID)
	if err != nil {
		return nil, err
	}

	if bidder.ID == trade.SellerID {
		return nil, domain.Forbidden("sellers cannot bid on their own auction")
	}

	now := s.clock.Now()
	trade.HighestBid = amount
	trade.UpdatedAt = now
	bid := &domain.Bid{
		BidID:   uuid.NewString(),
		TradeID: trade.ID,
		UserID:  bidder.ID,
		Amount:  amount,
		BidTime: now,
	}

	return &domain.BidResult{
		Outcome:    domain.BidAccepted,
		HighestBid: amount,
		Bid:        bid,
	}, nil
}

func (s *BidService) publishEvent(ctx context.Context, outcome domain.BidOutcome, tradeID, bidderID, amount int64) {
	event := &domain.BidEvent{
		Type:      outcome,
		TradeID:   tradeID,
		UserID:    bidderID,
		Amount:    amount,
		Timestamp: s.clock.Now(),
	}
	if err := s.eventPub.PublishBidEvent(ctx, event); err != nil {
		s.log.Warn("Failed to publish bid event", "trade_id", tradeID, "error", err)
	}
}

func (s *BidService) GetTrade(ctx context.Context, tradeID int64) (*domain.Trade, error) {
	return s.trades.GetTrade(ctx, tradeID)
}

func (s *BidService) GetBidHistory(ctx context.Context, tradeID int64) ([]*domain.Bid, error) {
	if _, err := s.trades.GetTrade(ctx, tradeID); err != nil {
		return nil, err
	}
	return s.bids.GetBidHistory(ctx, tradeID)
}
