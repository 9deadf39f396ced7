package rest

import (
	"errors"
	"net/http"
	"strconv"

	"bank-settlement-engine/internal/realtime"
	"bank-settlement-engine/internal/services"

	"github.com/gin-gonic/gin"
)

// NotificationHandlers обслуживает уведомления и websocket каналы воркера расчётов
type NotificationHandlers struct {
	service   services.NotificationService
	hub       *realtime.Hub
	jwtSecret string
}

func NewNotificationHandlers(service services.NotificationService, hub *realtime.Hub, jwtSecret string) *NotificationHandlers {
	return &NotificationHandlers{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

// resolveUser возвращает пользователя из токена. Query user_id допускается
// только совпадающий с токеном, иначе 403.
func resolveUser(c *gin.Context) (int64, bool) {
	authed := currentUser(c)
	if authed == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token not provided"})
		return 0, false
	}

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
			return 0, false
		}
		if id != authed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this user"})
			return 0, false
		}
	}

	return authed, true
}

// ListNotifications возвращает уведомления пользователя
// @Summary Список уведомлений
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "Только непрочитанные"
// @Param skip query int false "Смещение" default(0)
// @Param limit query int false "Лимит (максимум 100)" default(50)
// @Success 200 {object} models.NotificationListResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /notifications [get]
func (h *NotificationHandlers) ListNotifications(c *gin.Context) {
	userID, ok := resolveUser(c)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.service.List(c.Request.Context(), userID, unreadOnly, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// NotificationStats возвращает счётчики уведомлений
// @Summary Статистика уведомлений
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.NotificationStats
// @Router /notifications/stats [get]
func (h *NotificationHandlers) NotificationStats(c *gin.Context) {
	userID, ok := resolveUser(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notification stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type markReadRequest struct {
	IsRead *bool `json:"is_read"`
}

// MarkRead меняет флаг прочтения
// @Summary Отметить уведомление прочитанным
// @Tags notifications
// @Accept json
// @Produce json
// @Param id path int true "ID уведомления"
// @Security BearerAuth
// @Success 200 {object} models.Notification
// @Failure 404 {object} map[string]string "Not Found"
// @Router /notifications/{id}/read [put]
func (h *NotificationHandlers) MarkRead(c *gin.Context) {
	userID, ok := resolveUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	read := true
	var body markReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.IsRead != nil {
			read = *body.IsRead
		}
	}

	n, err := h.service.MarkRead(c.Request.Context(), userID, id, read)
	if errors.Is(err, services.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, n)
}

// MarkAllRead отмечает все уведомления пользователя прочитанными
// @Summary Отметить все уведомления прочитанными
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /notifications/read-all [put]
func (h *NotificationHandlers) MarkAllRead(c *gin.Context) {
	userID, ok := resolveUser(c)
	if !ok {
		return
	}

	marked, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// ServeUserWS открывает персональный канал уведомлений, токен передается в query
func (h *NotificationHandlers) ServeUserWS(c *gin.Context) {
	userID, err := ParseUserToken(h.jwtSecret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.hub.ServeWS(c.Writer, c.Request, userID)
}

// ServeEventsWS открывает анонимный канал событий расчёта
func (h *NotificationHandlers) ServeEventsWS(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request, realtime.Anonymous)
}
