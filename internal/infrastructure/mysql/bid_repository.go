package mysql

import (
	"context"
	"database/sql"

	"ourlog/internal/domain"
)

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

func (r *MySQLBidRepository) GetBidHistory(ctx context.Context, tradeID int64) ([]*domain.Bid, error) {
	query := `
        SELECT bid_id, trade_id, user_id, amount, bid_time
        FROM bids
        WHERE trade_id = ?
        ORDER BY bid_time ASC
    `

	rows, err := r.db.QueryContext(ctx, query, tradeID)
	if err != nil {
		return nil, domain.StoreError("failed to query bid history", err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		err := rows.Scan(&bid.BidID, &bid.TradeID, &bid.UserID, &bid.Amount, &bid.BidTime)
		if err != nil {
			return nil, domain.StoreError("failed to scan bid", err)
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}
