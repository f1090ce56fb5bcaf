package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/verifai/proctor-backend/internal/model"
	"github.com/verifai/proctor-backend/internal/repository"
	"github.com/verifai/proctor-backend/internal/response"
	"github.com/verifai/proctor-backend/internal/service"
	"github.com/verifai/proctor-backend/internal/validator"
)

// AdminHandler handles the proctor dashboard: account management and the
// integrity log views.
type AdminHandler struct {
	adminService *service.AdminService
	examService  *service.ExamService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService, examService *service.ExamService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		examService:  examService,
	}
}

// ListUsers godoc
// GET /api/v1/admin/users
// Lists accounts with pagination.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, perPage := paginationParams(c)

	users, total, err := h.adminService.ListUsers(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// CreateUser godoc
// POST /api/v1/admin/users
// Registers an account.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.adminService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrDuplicateEmail)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// UpdateUserStatus godoc
// PATCH /api/v1/admin/users/:id/status
// Activates or deactivates an account. Deactivating a student also kills
// any live session.
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateUserStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.adminService.SetUserStatus(c.Request.Context(), userID, *req.IsActive); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_active": *req.IsActive})
}

// ListIntegrityLogs godoc
// GET /api/v1/admin/integrity-logs
// Lists every recorded violation, newest first.
func (h *AdminHandler) ListIntegrityLogs(c *gin.Context) {
	page, perPage := paginationParams(c)

	violations, total, err := h.examService.ListViolations(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"violations": violations}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// ListStudentIntegrityLogs godoc
// GET /api/v1/admin/students/:id/integrity-logs
// Lists one student's violations, newest first.
func (h *AdminHandler) ListStudentIntegrityLogs(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, perPage := paginationParams(c)

	violations, total, err := h.examService.ListStudentViolations(c.Request.Context(), studentID, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"violations": violations}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

func paginationParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}
