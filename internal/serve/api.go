package serve

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quill/internal/comments"
	domainerr "quill/internal/domain/errors"
	"quill/internal/notify"
	"quill/internal/search"
)

func (s *Server) handleSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, []search.Result{})
		return
	}

	items, err := s.site.Published(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("search: list posts")
		c.JSON(http.StatusInternalServerError, []search.Result{})
		return
	}
	c.JSON(http.StatusOK, search.Search(items, q))
}

func (s *Server) handleListComments(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing slug parameter"})
		return
	}

	list, err := s.comments.List(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, domainerr.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slug"})
			return
		}
		s.log.WithError(err).WithField("slug", slug).Error("list comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateComment(c *gin.Context) {
	var in comments.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cm, err := comments.New(in, s.now())
	if err != nil {
		var ve domainerr.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.First()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.comments.Append(c.Request.Context(), cm); err != nil {
		s.log.WithError(err).WithField("slug", cm.Slug).Error("save comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	ev := notify.Event{Slug: cm.Slug, Author: cm.Author, Content: cm.Content}
	if it, err := s.site.Posts.GetBySlug(c.Request.Context(), cm.Slug); err == nil {
		ev.PostTitle = it.Title
	}
	s.notify.Go(ev)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Comment submitted successfully",
	})
}
