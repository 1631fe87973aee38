package mysql

import (
	"context"
	"database/sql"
	"errors"

	"ourlog/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLTradeRepository struct {
	db *sql.DB
}

func NewMySQLTradeRepository(db *sql.DB) *MySQLTradeRepository {
	return &MySQLTradeRepository{db: db}
}

func (r *MySQLTradeRepository) GetTrade(ctx context.Context, tradeID int64) (*domain.Trade, error) {
	query := `
        SELECT trade_id, seller_id, status, highest_bid, now_buy, created_at, updated_at
        FROM trades WHERE trade_id = ?
    `
	return scanTrade(r.db.QueryRowContext(ctx, query, tradeID))
}

// PlaceBid serializes bids per trade. The trade row is read under FOR
// UPDATE, so concurrent bids on the same trade queue on the row lock and
// each fn sees the highest bid its predecessor committed. The highest-bid
// update and the bid insert commit together or not at all.
func (r *MySQLTradeRepository) PlaceBid(ctx context.Context, tradeID int64, fn domain.BidFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoreError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
        SELECT trade_id, seller_id, status, highest_bid, now_buy, created_at, updated_at
        FROM trades WHERE trade_id = ? FOR UPDATE
    `
	trade, err := scanTrade(tx.QueryRowContext(ctx, query, tradeID))
	if err != nil {
		return err
	}

	bid, err := fn(trade)
	if err != nil {
		return err
	}
	if bid == nil {
		// Nothing to commit; the buy-now match path ends here.
		return nil
	}

	updateQuery := `UPDATE trades SET highest_bid = ?, updated_at = ? WHERE trade_id = ?`
	if _, err := tx.ExecContext(ctx, updateQuery, trade.HighestBid, trade.UpdatedAt, tradeID); err != nil {
		return domain.StoreError("failed to update highest bid", err)
	}

	insertQuery := `
        INSERT INTO bids (bid_id, trade_id, user_id, amount, bid_time)
        VALUES (?, ?, ?, ?, ?)
    `
	if _, err := tx.ExecContext(ctx, insertQuery,
		bid.BidID, bid.TradeID, bid.UserID, bid.Amount, bid.BidTime); err != nil {
		return domain.StoreError("failed to insert bid", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.StoreError("failed to commit bid", err)
	}
	return nil
}

func (r *MySQLTradeRepository) ListOpenTrades(ctx context.Context) ([]*domain.Trade, error) {
	query := `
        SELECT trade_id, seller_id, status, highest_bid, now_buy, created_at, updated_at
        FROM trades WHERE status = ?
    `

	rows, err := r.db.QueryContext(ctx, query, int(domain.TradeOpen))
	if err != nil {
		return nil, domain.StoreError("failed to list open trades", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		trade, err := scanTradeRow(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row *sql.Row) (*domain.Trade, error) {
	trade, err := scanTradeRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("the trade does not exist")
	}
	return trade, err
}

func scanTradeRow(row rowScanner) (*domain.Trade, error) {
	var trade domain.Trade
	var status int
	var highestBid, nowBuy sql.NullInt64

	err := row.Scan(&trade.ID, &trade.SellerID, &status,
		&highestBid, &nowBuy, &trade.CreatedAt, &trade.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, domain.StoreError("failed to scan trade", err)
	}

	trade.Status = domain.TradeStatus(status)
	trade.HighestBid = highestBid.Int64
	if nowBuy.Valid {
		trade.NowBuy = &nowBuy.Int64
	}
	return &trade, nil
}
