package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/common/middleware"
	"giveaway-market-backend/internal/features/giveaway/models"
	"giveaway-market-backend/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service service.GiveawayService
	logger  zerolog.Logger
}

func NewGiveawayHandler(svc service.GiveawayService, logger zerolog.Logger) *GiveawayHandler {
	return &GiveawayHandler{
		service: svc,
		logger:  logger.With().Str("component", "giveaway_handler").Logger(),
	}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup, moderatorOnly gin.HandlerFunc) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.POST("", h.create)
		giveaways.GET("/:id", h.getByID)
		giveaways.POST("/:id/publish", h.publish)
		giveaways.POST("/:id/approve", moderatorOnly, h.approve)
		giveaways.POST("/:id/cancel", h.cancel)
		giveaways.POST("/:id/close", h.close)
		giveaways.POST("/:id/entries", h.purchase)
		giveaways.GET("/:id/entries", h.listEntries)
		giveaways.GET("/:id/draw", h.getDrawRecord)
		giveaways.GET("/me", h.listMine)
	}
}

func (h *GiveawayHandler) create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input models.GiveawayCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.Create(c.Request.Context(), userID, &input)
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *GiveawayHandler) getByID(c *gin.Context) {
	response, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *GiveawayHandler) publish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.service.Publish(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *GiveawayHandler) approve(c *gin.Context) {
	response, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *GiveawayHandler) cancel(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.service.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// close is the creator's manual end. Expiry closes are driven by the
// background closer, not this endpoint.
func (h *GiveawayHandler) close(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	giveaway, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	if giveaway.CreatorID != userID {
		middleware.RespondWithError(c, h.logger,
			apperrors.New(apperrors.ErrCodeForbidden, "only the creator may end a giveaway"))
		return
	}

	closed, err := h.service.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, closed.ToResponse())
}

func (h *GiveawayHandler) purchase(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input models.PurchaseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.Purchase(c.Request.Context(), c.Param("id"), userID, input.SlotCount)
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *GiveawayHandler) listEntries(c *gin.Context) {
	entries, err := h.service.ListEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// getDrawRecord exposes the audit record so anyone can verify the draw.
func (h *GiveawayHandler) getDrawRecord(c *gin.Context) {
	record, err := h.service.GetDrawRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *GiveawayHandler) listMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	giveaways, err := h.service.ListByCreator(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"giveaways": giveaways, "count": len(giveaways)})
}
