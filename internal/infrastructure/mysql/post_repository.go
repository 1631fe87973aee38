package mysql

import (
	"context"
	"database/sql"
	"errors"

	"ourlog/internal/domain"
)

type MySQLPostRepository struct {
	db *sql.DB
}

func NewMySQLPostRepository(db *sql.DB) *MySQLPostRepository {
	return &MySQLPostRepository{db: db}
}

// GetPostDetail assembles the detail page read model: the post row, its
// writer, attached pictures and the reply count.
func (r *MySQLPostRepository) GetPostDetail(ctx context.Context, postID int64) (*domain.PostDetail, error) {
	query := `
        SELECT p.post_id, p.writer_id, p.title, p.content, p.views, p.created_at, p.updated_at,
               u.user_id, u.nickname, u.email, u.created_at,
               (SELECT COUNT(*) FROM replies r WHERE r.post_id = p.post_id)
        FROM posts p
        JOIN users u ON u.user_id = p.writer_id
        WHERE p.post_id = ?
    `

	var post domain.Post
	var writer domain.User
	var replyCnt int64

	err := r.db.QueryRowContext(ctx, query, postID).Scan(
		&post.ID, &post.WriterID, &post.Title, &post.Content, &post.Views,
		&post.CreatedAt, &post.UpdatedAt,
		&writer.ID, &writer.Nickname, &writer.Email, &writer.CreatedAt,
		&replyCnt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("the post does not exist")
		}
		return nil, domain.StoreError("failed to query post", err)
	}

	pictures, err := r.getPictures(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &domain.PostDetail{
		Post:     &post,
		Pictures: pictures,
		Writer:   &writer,
		ReplyCnt: replyCnt,
	}, nil
}

func (r *MySQLPostRepository) getPictures(ctx context.Context, postID int64) ([]*domain.Picture, error) {
	query := `
        SELECT picture_id, post_id, uuid, path, name
        FROM pictures WHERE post_id = ?
    `

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, domain.StoreError("failed to query pictures", err)
	}
	defer rows.Close()

	var pictures []*domain.Picture
	for rows.Next() {
		var picture domain.Picture
		err := rows.Scan(&picture.ID, &picture.PostID, &picture.UUID, &picture.Path, &picture.Name)
		if err != nil {
			return nil, domain.StoreError("failed to scan picture", err)
		}
		pictures = append(pictures, &picture)
	}

	return pictures, rows.Err()
}

// IncrementViews bumps the counter in place so concurrent views never
// lose an increment to a read-modify-write race.
func (r *MySQLPostRepository) IncrementViews(ctx context.Context, postID int64) error {
	query := `UPDATE posts SET views = views + 1 WHERE post_id = ?`

	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return domain.StoreError("failed to increment views", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.StoreError("failed to read affected rows", err)
	}
	if affected == 0 {
		return domain.NotFound("the post does not exist")
	}

	return nil
}
