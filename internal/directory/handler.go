package directory

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DirectoryHandler handles HTTP requests for schools and students.
type DirectoryHandler struct {
	service *DirectoryService
}

func NewDirectoryHandler(service *DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) CreateSchool(c echo.Context) error {
	var req CreateSchoolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	school, err := h.service.CreateSchool(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "School created successfully", "school": school})
}

func (h *DirectoryHandler) GetSchool(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	school, err := h.service.GetSchool(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrSchoolNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "School not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch school"})
	}
	return c.JSON(http.StatusOK, school)
}

func (h *DirectoryHandler) ListSchools(c echo.Context) error {
	schools, err := h.service.ListSchools(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch schools"})
	}
	return c.JSON(http.StatusOK, schools)
}

func (h *DirectoryHandler) UpdateSchool(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	var req UpdateSchoolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	school, err := h.service.UpdateSchool(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrSchoolNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "School not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update school"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "School updated successfully", "school": school})
}

func (h *DirectoryHandler) DeleteSchool(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	if err := h.service.DeleteSchool(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrSchoolNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "School not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete school"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "School deleted successfully"})
}

func (h *DirectoryHandler) CreateStudent(c echo.Context) error {
	var req CreateStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	student, err := h.service.CreateStudent(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSchoolNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "School not found"})
		case errors.Is(err, ErrAllocationExhausted):
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to allocate a student ID"})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": "Student created successfully", "student": student})
}

func (h *DirectoryHandler) GetStudent(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}
	student, err := h.service.GetStudent(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch student"})
	}
	return c.JSON(http.StatusOK, student)
}

func (h *DirectoryHandler) ListStudents(c echo.Context) error {
	schoolID, err := primitive.ObjectIDFromHex(c.Param("schoolId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid school ID"})
	}
	students, err := h.service.ListStudents(c.Request().Context(), schoolID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch students"})
	}
	return c.JSON(http.StatusOK, students)
}

func (h *DirectoryHandler) UpdateStudent(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}
	var req UpdateStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	student, err := h.service.UpdateStudent(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update student"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Student updated successfully", "student": student})
}

func (h *DirectoryHandler) DeleteStudent(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid student ID"})
	}
	if err := h.service.DeleteStudent(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete student"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}
