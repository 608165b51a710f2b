package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"assistant-service/internal/common"
)

type createTaskRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" binding:"required"`
}

func (h *handlers) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	claims := requestClaims(c)
	task, err := h.tasks.Create(c.Request.Context(), claims.UserID, req.Title, req.Description, req.DueDate)
	if err != nil {
		h.logger.Error(c.Request.Context(), "error creating task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *handlers) listTasks(c *gin.Context) {
	claims := requestClaims(c)

	tasks, err := h.tasks.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error(c.Request.Context(), "error listing tasks", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (h *handlers) completeTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	claims := requestClaims(c)
	if err := h.tasks.Complete(c.Request.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task_not_found"})
			return
		}
		h.logger.Error(c.Request.Context(), "error completing task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed": true})
}
