package handlers

import (
	"net/http"

	"github.com/wl39/todo-sync/internal/auth"
	dom "github.com/wl39/todo-sync/internal/domain"
	"github.com/wl39/todo-sync/internal/dto"
	"github.com/wl39/todo-sync/internal/service"

	"github.com/gin-gonic/gin"
)

// SharingHandler manages the caller's public calendar settings.
type SharingHandler struct {
	shareSvc *service.ShareService
}

// NewSharingHandler returns a new SharingHandler.
func NewSharingHandler(shareSvc *service.ShareService) *SharingHandler {
	return &SharingHandler{shareSvc: shareSvc}
}

// Update godoc
// @Summary      Update sharing settings
// @Tags         sharing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SharingUpdateRequest  true  "Sharing settings"
// @Success      200   {object}  dto.SharingResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /sharing [put]
func (h *SharingHandler) Update(c *gin.Context) {
	var req dto.SharingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := auth.UserIDFromContext(c)

	user, err := h.shareSvc.UpdateSharing(c.Request.Context(), userID, dom.ShareMode(req.ShareMode), req.PublicSlug, req.EditToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SharingResponse{
		ShareMode:  string(user.ShareMode),
		PublicSlug: user.PublicSlug,
		EditToken:  user.EditToken,
	})
}
