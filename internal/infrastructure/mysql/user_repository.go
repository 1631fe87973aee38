package mysql

import (
	"context"
	"database/sql"
	"errors"

	"ourlog/internal/domain"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	query := `
        SELECT user_id, nickname, email, created_at
        FROM users WHERE user_id = ?
    `

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Nickname, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("the bidder does not exist")
		}
		return nil, domain.StoreError("failed to query user", err)
	}

	return &user, nil
}
