package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jeswin28/lms-backend/internal/api/dto"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/service"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// CoursesHandler exposes the course workflow endpoints.
type CoursesHandler struct {
	courses *service.CourseService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService) *CoursesHandler {
	return &CoursesHandler{courses: courseService}
}

// Create handles POST /courses (instructor only).
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	instructor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.CourseCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title is required", nil)
	}

	course, err := h.courses.Submit(c.Context(), instructor, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"course":  dto.NewCourseResponse(course),
	})
}

// List handles GET /courses (any authenticated user).
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	courses, err := h.courses.Catalog(c.Context())
	if err != nil {
		return err
	}
	resp := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp = append(resp, dto.NewCourseResponse(&courses[i]))
	}
	return c.JSON(fiber.Map{"success": true, "courses": resp})
}

// Moderate handles POST /courses/:id/approve (admin only).
func (h *CoursesHandler) Moderate(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	req := dto.CourseModerateRequest{Approve: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	course, err := h.courses.Moderate(c.Context(), admin, c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"course":  dto.NewCourseResponse(course),
	})
}

// Enroll handles POST /courses/:id/enroll (student only).
func (h *CoursesHandler) Enroll(c *fiber.Ctx) error {
	student, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	enrollment, err := h.courses.Enroll(c.Context(), student, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"enrollment": dto.EnrollmentResponse{
			ID:        enrollment.ID,
			CourseID:  enrollment.CourseID,
			StudentID: enrollment.StudentID,
			CreatedAt: enrollment.CreatedAt,
		},
	})
}
