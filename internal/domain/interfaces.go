package domain

import (
	"context"
	"time"
)

// Repository interfaces
type TradeRepository interface {
	GetTrade(ctx context.Context, tradeID int64) (*Trade, error)
	// PlaceBid runs fn against a snapshot of the trade that stays locked
	// for the duration of the call. A non-nil bid from fn commits the
	// highest-bid update and the bid insert in the same transaction; a nil
	// bid or an error commits nothing. Calls on the same trade serialize.
	PlaceBid(ctx context.Context, tradeID int64, fn BidFunc) error
	ListOpenTrades(ctx context.Context) ([]*Trade, error)
}

// BidFunc decides a bid against the locked trade. It may mutate the
// trade's HighestBid; the repository persists the mutation only when a
// bid is returned.
type BidFunc func(trade *Trade) (*Bid, error)

type BidRepository interface {
	GetBidHistory(ctx context.Context, tradeID int64) ([]*Bid, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
}

type PostRepository interface {
	GetPostDetail(ctx context.Context, postID int64) (*PostDetail, error)
	IncrementViews(ctx context.Context, postID int64) error
}

// Cache interfaces
type TradeStateCache interface {
	SetTradeStatus(ctx context.Context, tradeID int64, status TradeStatus) error
	GetTradeStatus(ctx context.Context, tradeID int64) (TradeStatus, bool, error)
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

// Clock supplies bid timestamps so tests can pin them.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}
