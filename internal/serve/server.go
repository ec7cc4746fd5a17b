package serve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quill/internal/app"
	"quill/internal/comments"
	"quill/internal/domain/config"
	"quill/internal/notify"
)

type Options struct {
	Config   config.Config
	Site     *app.Site
	Comments comments.Store
	Notify   *notify.Dispatcher
	// Static is served under /static/.
	Static fs.FS
	// WatchDirs are watched in dev mode.
	WatchDirs []string
	Log       logrus.FieldLogger
	Now       func() time.Time
}

type Server struct {
	cfg      config.Config
	site     *app.Site
	comments comments.Store
	notify   *notify.Dispatcher
	log      logrus.FieldLogger
	now      func() time.Time

	engine    *gin.Engine
	events    *eventHub
	watchDirs []string
}

func New(opt Options) (*Server, error) {
	if opt.Site == nil {
		return nil, errors.New("serve: site is required")
	}
	if opt.Comments == nil {
		return nil, errors.New("serve: comment store is required")
	}
	if opt.Log == nil {
		opt.Log = logrus.StandardLogger()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Notify == nil {
		opt.Notify = notify.NewDispatcher(notify.Noop{}, 0, opt.Log)
	}

	s := &Server{
		cfg:       opt.Config,
		site:      opt.Site,
		comments:  opt.Comments,
		notify:    opt.Notify,
		log:       opt.Log.WithField("component", "serve"),
		now:       opt.Now,
		events:    newEventHub(),
		watchDirs: opt.WatchDirs,
	}
	s.site.DevReload = opt.Config.Server.Dev

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	_ = r.SetTrustedProxies(nil)

	r.GET("/", s.handleHome)
	r.GET("/about", s.handleAbout)
	r.GET("/blog", s.handleBlog)
	r.GET("/blog/:slug", s.handlePost)
	r.GET("/tags", s.handleTags)
	r.GET("/tags/:tag", s.handleTag)
	r.GET("/categories", s.handleCategories)
	r.GET("/categories/:category", s.handleCategory)
	r.GET("/sitemap.xml", s.handleSitemap)
	r.GET("/robots.txt", s.handleRobots)

	api := r.Group("/api")
	api.GET("/search", s.handleSearch)
	api.GET("/comments", s.handleListComments)
	api.POST("/comments", s.handleCreateComment)

	if opt.Static != nil {
		r.StaticFS("/static", http.FS(opt.Static))
	}
	if opt.Config.Server.Dev {
		r.GET("/dev/events", s.handleEvents)
	}
	r.NoRoute(func(c *gin.Context) {
		s.notFound(c, "")
	})

	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe blocks until ctx is cancelled or the listener fails. In-flight
// notifications are drained before it returns.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.cfg.Server.Dev {
		// 启动文件监控
		stop, err := s.startWatch(ctx)
		if err != nil {
			return fmt.Errorf("serve: watch: %w", err)
		}
		defer stop()
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.events.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.notify.Wait()
	return err
}
