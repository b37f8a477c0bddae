package handlers

import (
	"net/http"

	"github.com/wl39/todo-sync/internal/auth"
	"github.com/wl39/todo-sync/internal/dto"
	"github.com/wl39/todo-sync/internal/service"

	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ownerID := auth.UserIDFromContext(c)

	t, err := h.svc.Create(c.Request.Context(), ownerID, req.Title, req.Description, req.TodoDate.Time())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTodoResponse(t))
}

// List godoc
// @Summary      List todos for one date
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  true  "Date (YYYY-MM-DD)"
// @Success      200   {array}   dto.TodoResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}
	ownerID := auth.UserIDFromContext(c)

	list, err := h.svc.ListForDate(c.Request.Context(), ownerID, date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponses(list))
}

// Update godoc
// @Summary      Update a todo (version-checked partial update)
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Patch + expected version"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ownerID := auth.UserIDFromContext(c)

	t, err := h.svc.Update(c.Request.Context(), ownerID, id, req.Patch(), *req.Version)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Toggle godoc
// @Summary      Advance a todo's status (pending -> done -> partial -> pending)
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id}/toggle [post]
func (h *TodoHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ownerID := auth.UserIDFromContext(c)

	t, err := h.svc.Toggle(c.Request.Context(), ownerID, id, &ownerID, "")
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Delete godoc
// @Summary      Soft-delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id   path  int  true  "Todo ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ownerID := auth.UserIDFromContext(c)

	if err := h.svc.Delete(c.Request.Context(), ownerID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MonthlySummary godoc
// @Summary      Count still-open todos per date of a month
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  true  "Month (YYYY-MM)"
// @Success      200    {array}   dto.TodoSummaryResponse
// @Failure      400    {object}  map[string]string
// @Router       /todos/summary/month [get]
func (h *TodoHandler) MonthlySummary(c *gin.Context) {
	first, last, err := monthRange(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ownerID := auth.UserIDFromContext(c)

	rows, err := h.svc.MonthlySummary(c.Request.Context(), ownerID, first, last)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoSummaryResponses(rows))
}

// Audit godoc
// @Summary      Get the audit trail of a todo
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {array}   dto.AuditResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id}/audit [get]
func (h *TodoHandler) Audit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ownerID := auth.UserIDFromContext(c)

	records, err := h.svc.Audit(c.Request.Context(), ownerID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuditResponses(records))
}
