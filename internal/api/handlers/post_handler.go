package handlers

import (
	"net/http"
	"strconv"

	"ourlog/internal/domain"
	"ourlog/internal/services"
	"ourlog/pkg/logger"

	"github.com/labstack/echo/v4"
)

type PostHandler struct {
	postService *services.PostService
	log         logger.Logger
}

func NewPostHandler(postService *services.PostService, log logger.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		log:         log,
	}
}

type PostDetailResponse struct {
	PostID   int64             `json:"post_id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Views    int64             `json:"views"`
	Writer   WriterResponse    `json:"writer"`
	Pictures []PictureResponse `json:"pictures"`
	ReplyCnt int64             `json:"reply_cnt"`
}

type WriterResponse struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
}

type PictureResponse struct {
	UUID string `json:"uuid"`
	Path string `json:"path"`
	Name string `json:"name"`
}

func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid post id"})
	}

	detail, err := h.postService.Get(c.Request().Context(), postID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, toPostDetailResponse(detail))
}

// IncreaseViews is a write endpoint of its own so that reading a post
// stays idempotent; the frontend calls it once per page view.
func (h *PostHandler) IncreaseViews(c echo.Context) error {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid post id"})
	}

	if err := h.postService.IncreaseViews(c.Request().Context(), postID); err != nil {
		return writeError(c, h.log, err)
	}

	return c.NoContent(http.StatusOK)
}

func toPostDetailResponse(detail *domain.PostDetail) PostDetailResponse {
	pictures := make([]PictureResponse, 0, len(detail.Pictures))
	for _, picture := range detail.Pictures {
		pictures = append(pictures, PictureResponse{
			UUID: picture.UUID,
			Path: picture.Path,
			Name: picture.Name,
		})
	}

	return PostDetailResponse{
		PostID:   detail.Post.ID,
		Title:    detail.Post.Title,
		Content:  detail.Post.Content,
		Views:    detail.Post.Views,
		Writer: WriterResponse{
			UserID:   detail.Writer.ID,
			Nickname: detail.Writer.Nickname,
		},
		Pictures: pictures,
		ReplyCnt: detail.ReplyCnt,
	}
}
