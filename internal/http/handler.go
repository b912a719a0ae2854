package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/waste-pickup/internal/http/middleware"
	"github.com/nurpe/waste-pickup/internal/model"
	"github.com/nurpe/waste-pickup/internal/service"
	"github.com/nurpe/waste-pickup/internal/view"
)

type Handler struct {
	renderer *view.Renderer
	reports  *service.ReportService
	log      zerolog.Logger
}

func NewHandler(renderer *view.Renderer, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{renderer: renderer, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, sessionMiddleware gin.HandlerFunc) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/")
	public.Use(sessionMiddleware)
	public.GET("/", h.showPage)
	public.GET("/pages/:page", h.navigate)
	public.GET("/ws", h.serveWS)
	public.POST("/estimate", h.estimate)
	public.POST("/requests", h.submitRequest)
	public.POST("/admin/login", h.login)

	admin := public.Group("/admin/requests")
	admin.Use(middleware.AdminOnly())
	admin.POST("/:id/status", h.setStatus)
	admin.POST("/:id/delete", h.deleteRequest)
	admin.GET("/export/xlsx", h.exportExcel)
	admin.GET("/export/pdf", h.exportPDF)
}

type estimateRequest struct {
	WasteType string `form:"waste_type" json:"waste_type"`
	Weight    string `form:"weight" json:"weight"`
}

type submitRequest struct {
	Name      string `form:"name" json:"name" binding:"required"`
	Phone     string `form:"phone" json:"phone" binding:"required"`
	Address   string `form:"address" json:"address" binding:"required"`
	Area      string `form:"area" json:"area" binding:"required"`
	WasteType string `form:"waste_type" json:"waste_type" binding:"required"`
	Weight    string `form:"weight" json:"weight" binding:"required"`
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type statusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

func (h *Handler) showPage(c *gin.Context) {
	s, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	h.render(c, s.Dashboard)
}

func (h *Handler) navigate(c *gin.Context) {
	s, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	page, ok := view.ParsePage(c.Param("page"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown page"})
		return
	}
	if err := s.Dashboard.Navigate(page); err != nil {
		h.handleError(c, err)
		return
	}
	h.render(c, s.Dashboard)
}

func (h *Handler) render(c *gin.Context, d *service.Dashboard) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.renderer.RenderPage(c.Writer, d.Page()); err != nil {
		h.log.Error().Err(err).Msg("render page failed")
	}
}

func (h *Handler) serveWS(c *gin.Context) {
	s, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	s.Hub.Serve(c.Writer, c.Request)
}

func (h *Handler) estimate(c *gin.Context) {
	s, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	var req estimateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	estimate := s.Dashboard.UpdateEstimate(strings.TrimSpace(req.WasteType), req.Weight)
	c.JSON(http.StatusOK, gin.H{"estimate": estimate})
}

func (h *Handler) submitRequest(c *gin.Context) {
	s, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, service.ErrInvalidInput, "/pages/request")
		return
	}

	err := s.Dashboard.Submit(c.Request.Context(), service.SubmitInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Area:      req.Area,
		WasteType: req.WasteType,
		Weight:    req.Weight,
	})
	if err != nil {
		h.respondError(c, err, "/pages/request")
		return
	}
	h.respond(c, http.StatusCreated, gin.H{"status": "submitted"}, "/pages/request")
}

func (h *Handler) login(c *gin.Context) {
	s, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Dashboard.Login(req.Username, req.Password); err != nil {
		h.respondError(c, err, "/pages/admin")
		return
	}
	h.respond(c, http.StatusOK, gin.H{"logged_in": true}, "/pages/admin")
}

func (h *Handler) setStatus(c *gin.Context) {
	s, _ := middleware.MustSession(c)
	backendID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, ok := model.ParseStatus(strings.TrimSpace(req.Status))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := s.Dashboard.SetStatus(c.Request.Context(), backendID, status); err != nil {
		h.respondError(c, err, "/pages/admin")
		return
	}
	h.respond(c, http.StatusOK, gin.H{"status": string(status)}, "/pages/admin")
}

func (h *Handler) deleteRequest(c *gin.Context) {
	s, _ := middleware.MustSession(c)
	backendID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.Dashboard.Delete(c.Request.Context(), backendID); err != nil {
		h.respondError(c, err, "/pages/admin")
		return
	}
	h.respond(c, http.StatusOK, gin.H{"deleted": true}, "/pages/admin")
}

func (h *Handler) exportExcel(c *gin.Context) {
	s, _ := middleware.MustSession(c)
	result, err := h.reports.GenerateExcel(s.Dashboard)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) exportPDF(c *gin.Context) {
	s, _ := middleware.MustSession(c)
	result, err := h.reports.GeneratePDF(s.Dashboard)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

// respond answers API clients with JSON and browsers with a redirect back to the page, which shows
// whatever banner or notice the dashboard recorded.
func (h *Handler) respond(c *gin.Context, status int, body gin.H, redirect string) {
	if wantsJSON(c) {
		c.JSON(status, body)
		return
	}
	c.Redirect(http.StatusSeeOther, redirect)
}

func (h *Handler) respondError(c *gin.Context, err error, redirect string) {
	if wantsJSON(c) {
		h.handleError(c, err)
		return
	}
	if !reportedByDashboard(err) {
		h.log.Error().Err(err).Msg("request failed")
	}
	c.Redirect(http.StatusSeeOther, redirect)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCapacityReached), errors.Is(err, service.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCollaborator):
		h.log.Error().Err(err).Msg("store operation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// reportedByDashboard lists the failures the dashboard already surfaced or logged.
func reportedByDashboard(err error) bool {
	return errors.Is(err, service.ErrInvalidInput) ||
		errors.Is(err, service.ErrCollaborator) ||
		errors.Is(err, service.ErrInvalidCredentials) ||
		errors.Is(err, service.ErrCapacityReached) ||
		errors.Is(err, service.ErrSubmitInProgress) ||
		errors.Is(err, service.ErrPermissionDenied)
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
