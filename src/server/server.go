// Package server serves the dashboard over HTTP: a rendered page per section,
// chart images, exports and a small JSON API.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/registry"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/report"
	"github.com/iafilius/MediaTrendsDashboard/src/section"
	"github.com/iafilius/MediaTrendsDashboard/src/types"
	"github.com/iafilius/MediaTrendsDashboard/src/views"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type errResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type sectionsResponse struct {
	OK       bool            `json:"ok"`
	Active   types.Section   `json:"active"`
	Sections []types.Section `json:"sections"`
	Selected []string        `json:"selected"`
}

type outcomeJSON struct {
	Slot     string `json:"slot"`
	Endpoint string `json:"endpoint"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	TookMS   int64  `json:"took_ms"`
}

type refreshResponse struct {
	OK       bool          `json:"ok"`
	Live     int           `json:"live"`
	Outcomes []outcomeJSON `json:"outcomes"`
}

type diagnosticsResponse struct {
	OK      bool              `json:"ok"`
	Counts  map[diag.Kind]int `json:"counts"`
	Entries []diag.Entry      `json:"entries"`
}

type Server struct {
	d      *dashboard.Dashboard
	logger *zap.Logger
	engine *gin.Engine
	page   *template.Template
}

func New(d *dashboard.Dashboard, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		d:      d,
		logger: logger,
		engine: gin.New(),
		page:   template.Must(template.New("page").Parse(pageHTML)),
	}
	s.engine.Use(gin.Recovery(), s.accessLog())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	r := s.engine
	r.GET("/", s.servePage)
	r.GET("/sections/:name", s.navigate)
	r.GET("/charts/:slot/image.png", s.chartImage(false))
	r.GET("/charts/:slot/export.png", s.chartImage(true))
	r.GET("/report.html", s.reportHTML)
	r.GET("/report.xlsx", s.reportXLSX)

	api := r.Group("/api")
	api.GET("/sections", s.sections)
	api.POST("/sections/:name", s.activate)
	api.POST("/refresh", s.refresh)
	api.POST("/charts/:slot/refresh", s.refreshOne)
	api.POST("/theme", s.theme)
	api.POST("/hints", s.hints)
	api.GET("/diagnostics", s.diagnostics)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", zap.String("addr", addr))
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func fail(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, errResponse{OK: false, Error: code, Message: err.Error()})
}

func (s *Server) sectionParam(c *gin.Context) (types.Section, bool) {
	name, ok := types.ParseSection(c.Param("name"))
	if !ok {
		fail(c, http.StatusNotFound, "UNKNOWN_SECTION", fmt.Errorf("%w: %q", section.ErrUnknownSection, c.Param("name")))
		return "", false
	}
	if err := s.d.Sections.Activate(name); err != nil {
		fail(c, http.StatusNotFound, "UNKNOWN_SECTION", err)
		return "", false
	}
	return name, true
}

func (s *Server) sectionsBody() sectionsResponse {
	sc := s.d.Sections
	return sectionsResponse{OK: true, Active: sc.Active(), Sections: sc.Sections(), Selected: sc.Selected()}
}

func (s *Server) sections(c *gin.Context) { c.JSON(http.StatusOK, s.sectionsBody()) }

func (s *Server) activate(c *gin.Context) {
	if _, ok := s.sectionParam(c); !ok {
		return
	}
	c.JSON(http.StatusOK, s.sectionsBody())
}

func (s *Server) navigate(c *gin.Context) {
	if _, ok := s.sectionParam(c); !ok {
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) chartImage(attachment bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		slot := c.Param("slot")
		var buf bytes.Buffer
		if err := s.d.Registry.Export(slot, &buf); err != nil {
			if errors.Is(err, registry.ErrNoChart) || errors.Is(err, render.ErrReleased) {
				fail(c, http.StatusNotFound, "NO_CHART", err)
				return
			}
			fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
			return
		}
		c.Header("Cache-Control", "no-store")
		if attachment {
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slot+".png"))
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func toJSON(o views.Outcome) outcomeJSON {
	return outcomeJSON{Slot: o.Slot, Endpoint: o.Endpoint, OK: o.OK(), Error: o.Error(), TookMS: o.Took.Milliseconds()}
}

func (s *Server) refresh(c *gin.Context) {
	out := s.d.Refresh(c.Request.Context())
	resp := refreshResponse{OK: true, Live: s.d.Registry.Len(), Outcomes: make([]outcomeJSON, len(out))}
	for i, o := range out {
		resp.Outcomes[i] = toJSON(o)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) refreshOne(c *gin.Context) {
	o, err := s.d.LoadView(c.Request.Context(), c.Param("slot"))
	if err != nil {
		fail(c, http.StatusNotFound, "UNKNOWN_CHART", err)
		return
	}
	c.JSON(http.StatusOK, toJSON(o))
}

func (s *Server) theme(c *gin.Context) {
	var err error
	switch c.Query("theme") {
	case "":
		_, err = s.d.ToggleTheme()
	case string(render.ThemeLight), string(render.ThemeDark):
		err = s.d.SetTheme(render.Theme(c.Query("theme")))
	default:
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", errors.New("theme must be light or dark"))
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "theme": s.d.Theme()})
}

func (s *Server) hints(c *gin.Context) {
	on := !s.d.Hints()
	if q := c.Query("on"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			fail(c, http.StatusBadRequest, "VALIDATION_ERROR", errors.New("on must be a boolean"))
			return
		}
		on = v
	}
	if err := s.d.SetHints(on); err != nil {
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "hints": s.d.Hints()})
}

func (s *Server) diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, diagnosticsResponse{OK: true, Counts: s.d.Diag.Counts(), Entries: s.d.Diag.Entries()})
}

func (s *Server) reportHTML(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteHTML(&buf, dashboard.Title, s.d.Theme(), s.d.Entries()); err != nil {
		fail(c, http.StatusNotFound, "NO_CHART", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) reportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, s.d.Entries()); err != nil {
		fail(c, http.StatusNotFound, "NO_CHART", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}
