package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ourlog/internal/domain"
	"ourlog/internal/services"
	"ourlog/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubTradeRepo struct {
	trades    map[int64]*domain.Trade
	bids      []*domain.Bid
	commitErr error
}

func (s *stubTradeRepo) GetTrade(ctx context.Context, tradeID int64) (*domain.Trade, error) {
	trade, ok := s.trades[tradeID]
	if !ok {
		return nil, domain.NotFound("the trade does not exist")
	}
	snapshot := *trade
	return &snapshot, nil
}

func (s *stubTradeRepo) PlaceBid(ctx context.Context, tradeID int64, fn domain.BidFunc) error {
	trade, ok := s.trades[tradeID]
	if !ok {
		return domain.NotFound("the trade does not exist")
	}

	snapshot := *trade
	bid, err := fn(&snapshot)
	if err != nil {
		return err
	}
	if bid == nil {
		return nil
	}
	if s.commitErr != nil {
		return s.commitErr
	}

	*trade = snapshot
	s.bids = append(s.bids, bid)
	return nil
}

func (s *stubTradeRepo) ListOpenTrades(ctx context.Context) ([]*domain.Trade, error) {
	return nil, nil
}

type stubBidRepo struct {
	trades *stubTradeRepo
}

func (s *stubBidRepo) GetBidHistory(ctx context.Context, tradeID int64) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	for _, bid := range s.trades.bids {
		if bid.TradeID == tradeID {
			bids = append(bids, bid)
		}
	}
	return bids, nil
}

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (s *stubUserRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFound("the bidder does not exist")
	}
	return user, nil
}

type nopStateCache struct{}

func (nopStateCache) SetTradeStatus(ctx context.Context, tradeID int64, status domain.TradeStatus) error {
	return nil
}

func (nopStateCache) GetTradeStatus(ctx context.Context, tradeID int64) (domain.TradeStatus, bool, error) {
	return domain.TradeOpen, false, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func newTestTradeHandler(repo *stubTradeRepo) *TradeHandler {
	users := &stubUserRepo{users: map[int64]*domain.User{
		1: {ID: 1, Nickname: "seller"},
		2: {ID: 2, Nickname: "bidder"},
	}}
	bidService := services.NewBidService(
		repo,
		&stubBidRepo{trades: repo},
		users,
		nopStateCache{},
		nopPublisher{},
		domain.ClockFunc(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
		logger.NewNop(),
	)
	return NewTradeHandler(bidService, logger.NewNop())
}

func placeBidRequest(t *testing.T, handler *TradeHandler, tradeID, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/trades/:tradeId/bids")
	c.SetParamNames("tradeId")
	c.SetParamValues(tradeID)

	require.NoError(t, handler.PlaceBid(c))
	return rec
}

func TestTradeHandler_PlaceBid(t *testing.T) {
	tests := []struct {
		name            string
		trade           *domain.Trade
		commitErr       error
		tradeID         string
		body            string
		expectedStatus  int
		expectedOutcome string
	}{
		{
			name: "accepted",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000,
			},
			tradeID:         "10",
			body:            `{"bidder_id":2,"bid_amount":6000}`,
			expectedStatus:  http.StatusCreated,
			expectedOutcome: "bid_accepted",
		},
		{
			name: "buy_now_matched",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000, NowBuy: int64Ptr(20000),
			},
			tradeID:         "10",
			body:            `{"bidder_id":2,"bid_amount":20000}`,
			expectedStatus:  http.StatusOK,
			expectedOutcome: "buy_now_matched",
		},
		{
			name: "invalid_amount",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000,
			},
			tradeID:        "10",
			body:           `{"bidder_id":2,"bid_amount":5500}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "seller_self_bid",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000,
			},
			tradeID:        "10",
			body:           `{"bidder_id":1,"bid_amount":6000}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "unknown_trade",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000,
			},
			tradeID:        "99",
			body:           `{"bidder_id":2,"bid_amount":6000}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "closed_trade",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeClosed, HighestBid: 5000,
			},
			tradeID:        "10",
			body:           `{"bidder_id":2,"bid_amount":6000}`,
			expectedStatus: http.StatusConflict,
		},
		{
			name: "store_failure",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000,
			},
			commitErr:      domain.StoreError("failed to commit bid", nil),
			tradeID:        "10",
			body:           `{"bidder_id":2,"bid_amount":6000}`,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "malformed_trade_id",
			trade: &domain.Trade{
				ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000,
			},
			tradeID:        "abc",
			body:           `{"bidder_id":2,"bid_amount":6000}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubTradeRepo{
				trades:    map[int64]*domain.Trade{tc.trade.ID: tc.trade},
				commitErr: tc.commitErr,
			}
			handler := newTestTradeHandler(repo)

			rec := placeBidRequest(t, handler, tc.tradeID, tc.body)
			require.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expectedOutcome != "" {
				var resp PlaceBidResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				require.Equal(t, tc.expectedOutcome, resp.Outcome)
			}
		})
	}
}

// Store failures must never reach the client verbatim.
func TestTradeHandler_StoreErrorIsOpaque(t *testing.T) {
	repo := &stubTradeRepo{
		trades: map[int64]*domain.Trade{
			10: {ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000},
		},
		commitErr: domain.StoreError("duplicate entry 'bids.PRIMARY'", nil),
	}
	handler := newTestTradeHandler(repo)

	rec := placeBidRequest(t, handler, "10", `{"bidder_id":2,"bid_amount":6000}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "duplicate entry")
	require.Contains(t, rec.Body.String(), "internal server error")
}

func TestTradeHandler_GetTrade(t *testing.T) {
	repo := &stubTradeRepo{
		trades: map[int64]*domain.Trade{
			10: {ID: 10, SellerID: 1, Status: domain.TradeOpen, HighestBid: 5000, NowBuy: int64Ptr(20000)},
		},
	}
	handler := newTestTradeHandler(repo)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/trades/:tradeId")
	c.SetParamNames("tradeId")
	c.SetParamValues("10")

	require.NoError(t, handler.GetTrade(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(10), resp.TradeID)
	require.Equal(t, "open", resp.Status)
	require.Equal(t, int64(5000), resp.HighestBid)
	require.NotNil(t, resp.NowBuy)
	require.Equal(t, int64(20000), *resp.NowBuy)
}

func TestTradeHandler_GetBidHistory(t *testing.T) {
	repo := &stubTradeRepo{
		trades: map[int64]*domain.Trade{
			10: {ID: 10, SellerID: 1, Status: domain.TradeOpen},
		},
	}
	handler := newTestTradeHandler(repo)

	// Seed two bids through the service path.
	placeBidRequest(t, handler, "10", `{"bidder_id":2,"bid_amount":1000}`)
	placeBidRequest(t, handler, "10", `{"bidder_id":2,"bid_amount":2000}`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/trades/:tradeId/bids")
	c.SetParamNames("tradeId")
	c.SetParamValues("10")

	require.NoError(t, handler.GetBidHistory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []BidResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, int64(1000), resp[0].Amount)
	require.Equal(t, int64(2000), resp[1].Amount)
}
