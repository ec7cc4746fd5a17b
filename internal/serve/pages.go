package serve

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quill/internal/app"
)

const (
	htmlType = "text/html; charset=utf-8"

	postNotFound = "The blog post you are looking for does not exist or has been moved."
)

type pageFunc func(ctx context.Context) ([]byte, error)

// page renders fn, mapping ErrNotFound to the 404 page.
func (s *Server) page(c *gin.Context, fn pageFunc, missing string) {
	b, err := fn(c.Request.Context())
	if err != nil {
		if app.IsNotFound(err) {
			s.notFound(c, missing)
			return
		}
		s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("render page")
		c.String(http.StatusInternalServerError, "render error")
		return
	}
	c.Data(http.StatusOK, htmlType, b)
}

func (s *Server) notFound(c *gin.Context, message string) {
	b, err := s.site.NotFound(c.Request.Context(), c.Request.URL.Path, message)
	if err != nil {
		s.log.WithError(err).Error("render 404")
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	c.Data(http.StatusNotFound, htmlType, b)
}

func (s *Server) handleHome(c *gin.Context) {
	s.page(c, s.site.Home, "")
}

func (s *Server) handleAbout(c *gin.Context) {
	s.page(c, s.site.About, "")
}

func (s *Server) handleBlog(c *gin.Context) {
	page := parsePage(c.Query("page"))
	s.page(c, func(ctx context.Context) ([]byte, error) {
		return s.site.Blog(ctx, page)
	}, "")
}

func (s *Server) handlePost(c *gin.Context) {
	slug := c.Param("slug")
	s.page(c, func(ctx context.Context) ([]byte, error) {
		return s.site.Post(ctx, slug)
	}, postNotFound)
}

func (s *Server) handleTags(c *gin.Context) {
	s.page(c, s.site.Tags, "")
}

func (s *Server) handleTag(c *gin.Context) {
	tag := c.Param("tag")
	s.page(c, func(ctx context.Context) ([]byte, error) {
		return s.site.Tag(ctx, tag)
	}, "")
}

func (s *Server) handleCategories(c *gin.Context) {
	s.page(c, s.site.Categories, "")
}

func (s *Server) handleCategory(c *gin.Context) {
	cat := c.Param("category")
	s.page(c, func(ctx context.Context) ([]byte, error) {
		return s.site.Category(ctx, cat)
	}, "")
}

func (s *Server) handleSitemap(c *gin.Context) {
	b, err := s.site.Sitemap(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("build sitemap")
		c.String(http.StatusInternalServerError, "sitemap error")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", b)
}

func (s *Server) handleRobots(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", s.site.Robots())
}

// parsePage falls back to 1 on anything that is not a positive integer.
func parsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
