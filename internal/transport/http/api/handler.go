package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ballooner/internal/balloon"
	"ballooner/internal/click"
	"ballooner/internal/gateway/backend"
	"ballooner/internal/gdt"
	"ballooner/internal/logger"
	"ballooner/internal/overlay"
	"ballooner/internal/report"
	"ballooner/internal/session"
	"ballooner/internal/types"

	"github.com/gin-gonic/gin"
)

// Handler wires the session operations to HTTP routes.
type Handler struct {
	Sessions  *session.Registry
	Recorder  *balloon.Recorder
	Clicks    *click.Router
	Projector *overlay.Projector
	Now       func() time.Time
}

func NewHandler(sessions *session.Registry, recorder *balloon.Recorder, clicks *click.Router, projector *overlay.Projector) *Handler {
	return &Handler{
		Sessions:  sessions,
		Recorder:  recorder,
		Clicks:    clicks,
		Projector: projector,
		Now:       time.Now,
	}
}

// Register mounts the session API under group.
func (h *Handler) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/sessions", h.handleCreateSession)
	group.GET("/sessions", h.handleListSessions)

	s := group.Group("/sessions/:id")
	s.GET("", h.handleGetSession)
	s.DELETE("", h.handleDeleteSession)
	s.PUT("/source", h.handleUploadSource)
	s.PUT("/page", h.handleUploadPage)
	s.POST("/mode/toggle", h.handleToggleMode)
	s.POST("/click", h.handleClick)
	s.POST("/balloons", h.handleAddDirect)
	s.POST("/balloons/lookup", h.handleLookup)
	s.DELETE("/balloons/:number", h.handleRemoveBalloon)
	s.POST("/reset", h.handleReset)
	s.GET("/report", h.handleReport)
	s.GET("/preview.png", h.handlePreview)
}

type balloonRequest struct {
	Parameter string  `json:"parameter"`
	Value     string  `json:"value"`
	Label     string  `json:"label"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type sessionSummary struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Balloons   int       `json:"balloons"`
	SourceFile string    `json:"source_file,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeen   time.Time `json:"last_seen"`
}

func (h *Handler) handleCreateSession(c *gin.Context) {
	s := h.Sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"session": s.View()})
}

func (h *Handler) handleListSessions(c *gin.Context) {
	list := h.Sessions.List()
	out := make([]sessionSummary, 0, len(list))
	for _, s := range list {
		v := s.View()
		out = append(out, sessionSummary{
			ID:         v.ID,
			Mode:       v.Mode,
			Balloons:   len(v.Balloons),
			SourceFile: v.SourceFile,
			CreatedAt:  v.CreatedAt,
			LastSeen:   s.LastSeen(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *Handler) handleGetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s.View()})
}

func (h *Handler) handleDeleteSession(c *gin.Context) {
	if err := h.Sessions.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleUploadSource(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	name, data, err := readFormFile(c, "sourceFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.SetSource(types.SourceFile{Name: name, Data: data})
	logger.Session(s.ID).Info("source file uploaded", "name", name, "bytes", len(data))
	c.JSON(http.StatusOK, gin.H{"session": s.View()})
}

func (h *Handler) handleUploadPage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	_, data, err := readFormFile(c, "page")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, format, err := gdt.DecodePage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	number, _ := strconv.Atoi(c.DefaultPostForm("page_number", "1"))
	s.SetPage(session.Page{Number: number, Image: img})
	h.Projector.Reposition(s)
	b := img.Bounds()
	logger.Session(s.ID).Info("page uploaded", "format", format, "width", b.Dx(), "height", b.Dy(), "page", number)
	c.JSON(http.StatusOK, gin.H{"session": s.View()})
}

func (h *Handler) handleToggleMode(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	mode := s.ToggleMode()
	logger.Session(s.ID).Debug("mode toggled", "mode", mode.String())
	c.JSON(http.StatusOK, gin.H{"mode": mode.String(), "session": s.View()})
}

func (h *Handler) handleClick(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req balloonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid click payload: " + err.Error()})
		return
	}
	in := click.Input{
		X:       req.X,
		Y:       req.Y,
		Balloon: types.BalloonInput{Label: req.Label, Parameter: req.Parameter, Value: req.Value},
	}
	out, err := h.Clicks.Route(c.Request.Context(), s, in)
	if err != nil {
		writeError(c, err, gin.H{"session": s.View()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": out, "session": s.View()})
}

func (h *Handler) handleAddDirect(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req balloonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid balloon payload: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	in := types.BalloonInput{Parameter: req.Parameter, Value: req.Value, Label: req.Label}
	h.placeBalloon(c, s, req.X, req.Y, in)
}

func (h *Handler) handleLookup(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req balloonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lookup payload: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label is required"})
		return
	}
	h.placeBalloon(c, s, req.X, req.Y, types.BalloonInput{Label: req.Label})
}

func (h *Handler) placeBalloon(c *gin.Context, s *session.Session, x, y float64, in types.BalloonInput) {
	entry, err := h.Recorder.AddBalloon(c.Request.Context(), s, x, y, in)
	if err != nil {
		writeError(c, err, gin.H{"session": s.View()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"balloon": entry, "session": s.View()})
}

func (h *Handler) handleRemoveBalloon(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "balloon number must be an integer"})
		return
	}
	if err := h.Recorder.Remove(c.Request.Context(), s, number); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s.View()})
}

func (h *Handler) handleReset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.Recorder.Reset(c.Request.Context(), s); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s.View()})
}

func (h *Handler) handleReport(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	format, err := report.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rep := report.Build(s, h.Now())
	if c.Query("download") != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=inspection_report.%s", format.Extension()))
	}
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := report.Write(c.Writer, rep, format); err != nil {
		logger.Session(s.ID).Error("report export failed", "format", string(format), "err", err)
	}
}

func (h *Handler) handlePreview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	data, err := overlay.RenderPreview(s, h.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

func readFormFile(c *gin.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %s file", field)
	}
	data, err := readMultipartFile(fh)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%s file is empty", field)
	}
	return fh.Filename, data, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, balloon.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoPage), errors.Is(err, session.ErrNoSource):
		return http.StatusConflict
	case errors.Is(err, click.ErrOutsidePage),
		errors.Is(err, balloon.ErrEmptyInput),
		errors.Is(err, balloon.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, err error, extra ...gin.H) {
	body := gin.H{"error": err.Error()}
	if status := backend.StatusOf(err); status != 0 {
		body["backend_status"] = status
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(statusFor(err), body)
}
