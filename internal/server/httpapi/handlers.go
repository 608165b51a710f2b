package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assistant-service/internal/logging"
	"assistant-service/internal/server/auth"
	"assistant-service/internal/server/models"
	"assistant-service/internal/server/push"
	"assistant-service/internal/server/services"
)

type handlers struct {
	users    *services.UserService
	tasks    *services.TaskService
	registry *push.Registry
	logger   logging.Logger
}

// userResponse is the public projection of a user. Digest and salt never
// leave the server.
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, Email: u.Email}
}

type taskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Completed   bool   `json:"completed"`
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.Format(time.RFC3339),
		Completed:   t.Completed,
	}
}

func requestClaims(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsKey).(*auth.Claims)
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "assistant service is running"})
}
