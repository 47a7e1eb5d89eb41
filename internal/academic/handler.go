package academic

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AcademicHandler handles HTTP requests for classes, subjects, teachers
// and scores.
type AcademicHandler struct {
	service *AcademicService
}

func NewAcademicHandler(service *AcademicService) *AcademicHandler {
	return &AcademicHandler{service: service}
}

func (h *AcademicHandler) CreateClass(c echo.Context) error {
	var req CreateClassRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	class, err := h.service.CreateClass(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Class created successfully", "class": class})
}

func (h *AcademicHandler) GetClass(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid class ID"})
	}
	class, err := h.service.GetClass(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Class not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch class"})
	}
	return c.JSON(http.StatusOK, class)
}

func (h *AcademicHandler) ListClasses(c echo.Context) error {
	schoolID, err := primitive.ObjectIDFromHex(c.Param("schoolId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	classes, err := h.service.ListClasses(c.Request().Context(), schoolID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch classes"})
	}
	return c.JSON(http.StatusOK, classes)
}

type addStudentRequest struct {
	StudentID string `json:"student_id"`
}

func (h *AcademicHandler) AddStudentToClass(c echo.Context) error {
	classID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid class ID"})
	}
	var req addStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}
	if err := h.service.AddStudentToClass(c.Request().Context(), classID, studentID); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Class not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to add student to class"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Student added to class"})
}

func (h *AcademicHandler) DeleteClass(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid class ID"})
	}
	if err := h.service.DeleteClass(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Class not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete class"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Class deleted successfully"})
}

func (h *AcademicHandler) CreateSubject(c echo.Context) error {
	var req CreateSubjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	subject, err := h.service.CreateSubject(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Subject created successfully", "subject": subject})
}

func (h *AcademicHandler) ListSubjects(c echo.Context) error {
	schoolID, err := primitive.ObjectIDFromHex(c.Param("schoolId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	subjects, err := h.service.ListSubjects(c.Request().Context(), schoolID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch subjects"})
	}
	return c.JSON(http.StatusOK, subjects)
}

func (h *AcademicHandler) DeleteSubject(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid subject ID"})
	}
	if err := h.service.DeleteSubject(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Subject not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete subject"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Subject deleted successfully"})
}

func (h *AcademicHandler) CreateTeacher(c echo.Context) error {
	var req CreateTeacherRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	teacher, err := h.service.CreateTeacher(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Teacher created successfully", "teacher": teacher})
}

func (h *AcademicHandler) ListTeachers(c echo.Context) error {
	schoolID, err := primitive.ObjectIDFromHex(c.Param("schoolId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	teachers, err := h.service.ListTeachers(c.Request().Context(), schoolID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch teachers"})
	}
	return c.JSON(http.StatusOK, teachers)
}

func (h *AcademicHandler) DeleteTeacher(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid teacher ID"})
	}
	if err := h.service.DeleteTeacher(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrTeacherNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Teacher not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete teacher"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Teacher deleted successfully"})
}

func (h *AcademicHandler) RecordScore(c echo.Context) error {
	var req RecordScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	score, err := h.service.RecordScore(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Score recorded successfully", "score": score})
}

func (h *AcademicHandler) GetResults(c echo.Context) error {
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}
	classID, err := primitive.ObjectIDFromHex(c.Param("classId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid class ID"})
	}
	sheet, err := h.service.ResultsForStudent(c.Request().Context(), studentID, classID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch results"})
	}
	return c.JSON(http.StatusOK, sheet)
}
