package domain

import (
	"time"
)

// Trade is one auction listing. HighestBid only moves up while the trade
// is open; NowBuy is nil when no buy-now price was set by the seller.
type Trade struct {
	ID         int64
	SellerID   int64
	Status     TradeStatus
	HighestBid int64
	NowBuy     *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TradeStatus int

const (
	TradeOpen TradeStatus = iota
	TradeClosed
)

func (s TradeStatus) String() string {
	switch s {
	case TradeOpen:
		return "open"
	case TradeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Bid is an append-only record of one accepted offer. Never updated.
type Bid struct {
	BidID   string
	TradeID int64
	UserID  int64
	Amount  int64
	BidTime time.Time
}

type User struct {
	ID        int64
	Nickname  string
	Email     string
	CreatedAt time.Time
}

type BidOutcome string

const (
	BidAccepted   BidOutcome = "bid_accepted"
	BuyNowMatched BidOutcome = "buy_now_matched"
)

// BidResult is what PlaceBid hands back to the caller. Bid is nil for a
// buy-now match: no bid record is written until the purchase is confirmed
// through the separate buy-now flow.
type BidResult struct {
	Outcome    BidOutcome
	HighestBid int64
	Bid        *Bid
}

type BidEvent struct {
	Type      BidOutcome `json:"type"`
	TradeID   int64      `json:"trade_id"`
	UserID    int64      `json:"user_id"`
	Amount    int64      `json:"amount"`
	Timestamp time.Time  `json:"timestamp"`
}

type Post struct {
	ID        int64
	WriterID  int64
	Title     string
	Content   string
	Views     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Picture struct {
	ID     int64
	PostID int64
	UUID   string
	Path   string
	Name   string
}

// PostDetail is the read model for the post detail page.
type PostDetail struct {
	Post     *Post
	Pictures []*Picture
	Writer   *User
	ReplyCnt int64
}
