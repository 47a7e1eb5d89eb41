package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"SmartScore/internal/directory"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type SendRequest struct {
	StudentID string      `json:"studentId"`
	Message   string      `json:"message"`
	Options   SendOptions `json:"options"`
}

type BulkSendRequest struct {
	StudentIDs []string    `json:"studentIds"`
	Message    string      `json:"message"`
	Options    SendOptions `json:"options"`
}

func (h *NotificationHandler) Send(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.StudentID == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Student ID and message are required"})
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid student ID"})
	}

	n, err := h.service.Send(c.Request().Context(), studentID, req.Message, req.Options)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrStudentNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		case errors.Is(err, ErrAllChannelsFailed):
			return c.JSON(http.StatusBadGateway, map[string]interface{}{
				"message":      "All notification channels failed",
				"notification": n,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Error sending notification"})
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":      "Notification sent successfully",
		"notification": n,
	})
}

func (h *NotificationHandler) SendBulk(c echo.Context) error {
	var req BulkSendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if len(req.StudentIDs) == 0 || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Student IDs array and message are required"})
	}
	studentIDs := make([]primitive.ObjectID, 0, len(req.StudentIDs))
	for _, raw := range req.StudentIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid student ID: " + raw})
		}
		studentIDs = append(studentIDs, id)
	}

	results := h.service.SendBulk(c.Request().Context(), studentIDs, req.Message, req.Options)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Bulk notifications processed",
		"results": results,
	})
}

func (h *NotificationHandler) Schedule(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.Options.ScheduledFor == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "scheduledFor is required"})
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid student ID"})
	}

	n, err := h.service.Schedule(c.Request().Context(), studentID, req.Message, req.Options)
	if err != nil {
		if errors.Is(err, directory.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to schedule notification"})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":      "Notification scheduled successfully",
		"notification": n,
	})
}

func (h *NotificationHandler) List(c echo.Context) error {
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Student ID is required"})
	}
	notifications, err := h.service.List(c.Request().Context(), studentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Error fetching notifications"})
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) Stats(c echo.Context) error {
	schoolID, err := primitive.ObjectIDFromHex(c.Param("schoolId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "School ID is required"})
	}
	days := 30
	if raw := c.QueryParam("dateRange"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid dateRange"})
		}
		days = parsed
	}

	report, err := h.service.Stats(c.Request().Context(), schoolID, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Error getting notification statistics"})
	}
	return c.JSON(http.StatusOK, report)
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid notification ID"})
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Error deleting notification"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification deleted successfully"})
}
