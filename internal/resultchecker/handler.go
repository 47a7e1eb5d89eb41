package resultchecker

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"SmartScore/internal/directory"
)

// ResultCheckerHandler handles HTTP requests for the result checker flow.
type ResultCheckerHandler struct {
	service *ResultCheckerService
}

func NewResultCheckerHandler(service *ResultCheckerService) *ResultCheckerHandler {
	return &ResultCheckerHandler{service: service}
}

type GenerateTokenRequest struct {
	StudentID string `json:"studentId"`
	ClassID   string `json:"classId"`
}

type CheckResultsRequest struct {
	StudentID string `json:"studentId"`
	ClassID   string `json:"classId"`
	Token     string `json:"token"`
}

type ResetTrialsRequest struct {
	StudentID string `json:"studentId"`
	ClassID   string `json:"classId"`
}

func parsePair(studentID, classID string) (primitive.ObjectID, primitive.ObjectID, error) {
	sid, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errors.New("Student ID and Class ID are required")
	}
	cid, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errors.New("Student ID and Class ID are required")
	}
	return sid, cid, nil
}

func (h *ResultCheckerHandler) GenerateToken(c echo.Context) error {
	var req GenerateTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	studentID, classID, err := parsePair(req.StudentID, req.ClassID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	grant, err := h.service.Generate(c.Request().Context(), studentID, classID)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrStudentNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		case errors.Is(err, ErrStudentNotInClass):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Student does not belong to this class"})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, grant)
}

func (h *ResultCheckerHandler) CheckResults(c echo.Context) error {
	var req CheckResultsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Student ID, Class ID, and token are required"})
	}
	studentID, classID, err := parsePair(req.StudentID, req.ClassID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	sheet, trialsRemaining, err := h.service.GetResults(c.Request().Context(), studentID, classID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTrialsExceeded):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Maximum verification attempts exceeded"})
		case errors.Is(err, ErrTokenExpired):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Token has expired"})
		case errors.Is(err, ErrTokenNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"message": "No token found for this student and class"})
		case errors.Is(err, ErrInvalidToken):
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid token"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to check results"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results":         sheet,
		"trialsRemaining": trialsRemaining,
	})
}

func (h *ResultCheckerHandler) ResetTrials(c echo.Context) error {
	var req ResetTrialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}
	studentID, classID, err := parsePair(req.StudentID, req.ClassID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	updated, err := h.service.ResetTrials(c.Request().Context(), studentID, classID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to reset trials"})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Token not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Token trials reset successfully"})
}
