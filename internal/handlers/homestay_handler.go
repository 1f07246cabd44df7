package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/internal/database"
	"github.com/stayadmin/homestay-editor/internal/models"
	"github.com/stayadmin/homestay-editor/internal/services"
	"github.com/stayadmin/homestay-editor/pkg/homestayapi"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SearchResponse wraps a list of homestays
type SearchResponse struct {
	Data  []models.Homestay `json:"data"`
	Count int               `json:"count"`
}

// HomestayHandler handles HTTP requests for homestays
type HomestayHandler struct {
	service *services.HomestayService
	logger  *logrus.Logger
}

// NewHomestayHandler creates a new homestay handler
func NewHomestayHandler(service *services.HomestayService, logger *logrus.Logger) *HomestayHandler {
	return &HomestayHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the homestay endpoints on group
func (h *HomestayHandler) RegisterRoutes(group *gin.RouterGroup) {
	homestays := group.Group("/homestays")
	{
		homestays.GET("", h.Search)
		homestays.POST("", h.Create)
		homestays.GET("/:id", h.Get)
		homestays.PUT("/:id", h.Update)
		homestays.DELETE("/:id", h.Delete)
	}
}

// Search handles GET /api/homestays?search=<q>&limit=<n>
func (h *HomestayHandler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = n
	}

	results, err := h.service.Search(c.Query("search"), limit)
	if err != nil {
		h.respondError(c, err, "Failed to search homestays")
		return
	}

	c.JSON(http.StatusOK, SearchResponse{Data: results, Count: len(results)})
}

// Get handles GET /api/homestays/:id
func (h *HomestayHandler) Get(c *gin.Context) {
	homestay, err := h.service.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to load homestay")
		return
	}
	c.JSON(http.StatusOK, homestay)
}

// Create handles POST /api/homestays
func (h *HomestayHandler) Create(c *gin.Context) {
	var payload homestayapi.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.WithError(err).Warn("Invalid homestay payload")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	homestay, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		h.respondError(c, err, "Failed to save homestay")
		return
	}
	c.JSON(http.StatusCreated, homestay)
}

// Update handles PUT /api/homestays/:id
func (h *HomestayHandler) Update(c *gin.Context) {
	var payload homestayapi.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.WithError(err).Warn("Invalid homestay payload")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	homestay, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		h.respondError(c, err, "Failed to save homestay")
		return
	}
	c.JSON(http.StatusOK, homestay)
}

// Delete handles DELETE /api/homestays/:id
func (h *HomestayHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete homestay")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps service errors to status codes
func (h *HomestayHandler) respondError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, database.ErrHomestayNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Homestay not found",
		})
	case errors.Is(err, services.ErrSlugTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "slug_taken",
			Message: "Slug is already used by another homestay",
			Code:    "SLUG_TAKEN",
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: validationErr.Error(),
			Code:    validationErr.Field,
		})
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: fallback,
		})
	}
}
