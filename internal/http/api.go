package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"users-service/internal/domain"
	"users-service/internal/service"
)

const (
	msgInternal      = "Internal Server Error"
	msgMissingFields = "Bad Request - Missing required fields"
	msgMissingID     = "Bad Request - Missing user ID"
	msgInvalidBody   = "Bad Request - Invalid JSON body"
	msgNotFound      = "Not Found - User not found"
	msgConflict      = "Conflict - User already exists"
	msgDeleted       = "User deleted successfully"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune how handler outcomes map to HTTP statuses.
type Options struct {
	// ReportConflicts answers duplicate names with 409 instead of a generic 500.
	ReportConflicts bool
}

// Handler wires HTTP routes to the user service.
type Handler struct {
	users  service.UserService
	store  Pinger
	logger *logrus.Logger
	opts   Options
}

func NewHandler(users service.UserService, store Pinger, logger *logrus.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	router.GET("/get", h.getUsers)
	router.POST("/add", h.addUser)
	router.PUT("/update/:id", h.updateUser)
	router.PUT("/update", abortWith(http.StatusBadRequest, msgMissingFields))
	router.DELETE("/delete/:id", h.deleteUser)
	router.DELETE("/delete", abortWith(http.StatusBadRequest, msgMissingID))
	router.GET("/healthz", h.healthz)
}

type userRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type lookupResponse struct {
	Results []domain.User `json:"results"`
}

type createdResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// updatedResponse and deletedResponse echo the id exactly as it appeared in the path.
type updatedResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type deletedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (h *Handler) getUsers(c *gin.Context) {
	users, err := h.users.Lookup(c.Request.Context(), c.Query("firstName"), c.Query("lastName"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, lookupResponse{Results: users})
}

func (h *Handler) addUser(c *gin.Context) {
	req, ok := bindUser(c)
	if !ok {
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, createdResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *Handler) updateUser(c *gin.Context) {
	idStr := c.Param("id")
	id, validID := parseID(idStr)

	req, ok := bindUser(c)
	if !ok {
		return
	}
	if !validID {
		// No row can carry this id.
		if req.FirstName == "" || req.LastName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFields})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, req.FirstName, req.LastName)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, updatedResponse{
		ID:        idStr,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *Handler) deleteUser(c *gin.Context) {
	idStr := c.Param("id")
	id, ok := parseID(idStr)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, deletedResponse{Message: msgDeleted, ID: idStr})
}

func (h *Handler) healthz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		entryFrom(c, h.logger).WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps a service error to a response. Storage failures are logged and
// reported with a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFields})
	case errors.Is(err, service.ErrMissingID):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingID})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	case errors.Is(err, service.ErrConflict) && h.opts.ReportConflicts:
		entryFrom(c, h.logger).WithError(err).Info("duplicate user rejected")
		c.JSON(http.StatusConflict, gin.H{"error": msgConflict})
	default:
		entryFrom(c, h.logger).WithError(err).Error("user store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// bindUser decodes the JSON body. An empty body decodes to an empty request so
// that the presence checks report the missing fields.
func bindUser(c *gin.Context) (userRequest, bool) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return userRequest{}, false
	}
	return req, true
}

// parseID accepts positive integer ids only.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func abortWith(status int, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
	}
}
