package services

import (
	"context"

	"ourlog/internal/domain"
	"ourlog/pkg/logger"
)

type PostService struct {
	posts domain.PostRepository
	log   logger.Logger
}

func NewPostService(posts domain.PostRepository, log logger.Logger) *PostService {
	return &PostService{
		posts: posts,
		log:   log,
	}
}

// Get returns the post detail page data. Reading never bumps the view
// counter; clients report a view through IncreaseViews so the read stays
// idempotent.
func (s *PostService) Get(ctx context.Context, postID int64) (*domain.PostDetail, error) {
	return s.posts.GetPostDetail(ctx, postID)
}

func (s *PostService) IncreaseViews(ctx context.Context, postID int64) error {
	if err := s.posts.IncrementViews(ctx, postID); err != nil {
		return err
	}
	s.log.Debug("Increased post views", "post_id", postID)
	return nil
}
