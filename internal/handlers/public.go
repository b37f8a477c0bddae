package handlers

import (
	"net/http"

	"github.com/wl39/todo-sync/internal/dto"
	"github.com/wl39/todo-sync/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves shared calendars: read access for public_view and
// public_edit, anonymous toggles for public_edit.
type PublicHandler struct {
	shareSvc *service.ShareService
	todoSvc  *service.TodoService
}

// NewPublicHandler returns a new PublicHandler.
func NewPublicHandler(shareSvc *service.ShareService, todoSvc *service.TodoService) *PublicHandler {
	return &PublicHandler{shareSvc: shareSvc, todoSvc: todoSvc}
}

// List godoc
// @Summary      List a public calendar's todos for one date
// @Tags         public
// @Produce      json
// @Param        slug  path      string  true  "Share slug"
// @Param        date  query     string  true  "Date (YYYY-MM-DD)"
// @Success      200   {array}   dto.TodoResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /public/{slug}/todos [get]
func (h *PublicHandler) List(c *gin.Context) {
	access, err := h.shareSvc.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}
	list, err := h.todoSvc.ListForDate(c.Request.Context(), access.OwnerID, date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponses(list))
}

// Toggle godoc
// @Summary      Toggle a todo on a public-edit calendar
// @Tags         public
// @Produce      json
// @Param        slug        path      string  true   "Share slug"
// @Param        id          path      int     true   "Todo ID"
// @Param        edit_token  query     string  false  "Edit token"
// @Success      200  {object}  dto.TodoResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /public/{slug}/todos/{id}/toggle [post]
func (h *PublicHandler) Toggle(c *gin.Context) {
	slug := c.Param("slug")
	access, err := h.shareSvc.AuthorizeEdit(c.Request.Context(), slug, c.Query("edit_token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// Anonymous edit: no editor id on the audit record.
	t, err := h.todoSvc.Toggle(c.Request.Context(), access.OwnerID, id, nil, slug)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// MonthlySummary godoc
// @Summary      Monthly summary of a public calendar
// @Tags         public
// @Produce      json
// @Param        slug   path      string  true  "Share slug"
// @Param        month  query     string  true  "Month (YYYY-MM)"
// @Success      200    {array}   dto.TodoSummaryResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /public/{slug}/summary/month [get]
func (h *PublicHandler) MonthlySummary(c *gin.Context) {
	access, err := h.shareSvc.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	first, last, err := monthRange(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.todoSvc.MonthlySummary(c.Request.Context(), access.OwnerID, first, last)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoSummaryResponses(rows))
}
