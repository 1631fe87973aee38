package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ourlog/internal/domain"
	"ourlog/internal/services"
	"ourlog/pkg/logger"

	"github.com/labstack/echo/v4"
)

type TradeHandler struct {
	bidService *services.BidService
	log        logger.Logger
}

func NewTradeHandler(bidService *services.BidService, log logger.Logger) *TradeHandler {
	return &TradeHandler{
		bidService: bidService,
		log:        log,
	}
}

type PlaceBidRequest struct {
	BidderID  int64 `json:"bidder_id"`
	BidAmount int64 `json:"bid_amount"`
}

type PlaceBidResponse struct {
	Outcome    string `json:"outcome"`
	HighestBid int64  `json:"highest_bid"`
	BidID      string `json:"bid_id,omitempty"`
	Message    string `json:"message"`
}

type TradeResponse struct {
	TradeID    int64  `json:"trade_id"`
	SellerID   int64  `json:"seller_id"`
	Status     string `json:"status"`
	HighestBid int64  `json:"highest_bid"`
	NowBuy     *int64 `json:"now_buy,omitempty"`
}

type BidResponse struct {
	BidID   string    `json:"bid_id"`
	UserID  int64     `json:"user_id"`
	Amount  int64     `json:"amount"`
	BidTime time.Time `json:"bid_time"`
}

func (h *TradeHandler) PlaceBid(c echo.Context) error {
	tradeID, err := strconv.ParseInt(c.Param("tradeId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid trade id"})
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind bid request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.bidService.PlaceBid(c.Request().Context(), tradeID, req.BidderID, req.BidAmount)
	if err != nil {
		return writeError(c, h.log, err)
	}

	if result.Outcome == domain.BuyNowMatched {
		return c.JSON(http.StatusOK, PlaceBidResponse{
			Outcome:    string(result.Outcome),
			HighestBid: result.HighestBid,
			Message:    "bid matches the buy-now price; confirm the purchase to finish",
		})
	}

	return c.JSON(http.StatusCreated, PlaceBidResponse{
		Outcome:    string(result.Outcome),
		HighestBid: result.HighestBid,
		BidID:      result.Bid.BidID,
		Message:    "bid registered",
	})
}

func (h *TradeHandler) GetTrade(c echo.Context) error {
	tradeID, err := strconv.ParseInt(c.Param("tradeId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid trade id"})
	}

	trade, err := h.bidService.GetTrade(c.Request().Context(), tradeID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, TradeResponse{
		TradeID:    trade.ID,
		SellerID:   trade.SellerID,
		Status:     trade.Status.String(),
		HighestBid: trade.HighestBid,
		NowBuy:     trade.NowBuy,
	})
}

func (h *TradeHandler) GetBidHistory(c echo.Context) error {
	tradeID, err := strconv.ParseInt(c.Param("tradeId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid trade id"})
	}

	bids, err := h.bidService.GetBidHistory(c.Request().Context(), tradeID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	response := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		response = append(response, BidResponse{
			BidID:   bid.BidID,
			UserID:  bid.UserID,
			Amount:  bid.Amount,
			BidTime: bid.BidTime,
		})
	}

	return c.JSON(http.StatusOK, response)
}
