package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type staffService interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.Staff, error)
	SuggestRole(designation string) models.StaffRole
	Create(ctx context.Context, actor string, req dto.StaffRequest) (*models.Staff, error)
	Update(ctx context.Context, id string, req dto.StaffRequest) (*models.Staff, error)
	Delete(ctx context.Context, id string) error
}

// StaffHandler exposes staff endpoints.
type StaffHandler struct {
	staff staffService
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(staff staffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List godoc
// @Summary List staff
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name, designation or phone"
// @Param role query string false "teacher or non_teacher"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	filter := models.StaffFilter{
		ListFilter: listFilter(c),
		Role:       models.StaffRole(c.Query("role")),
		Active:     boolQuery(c, "active"),
	}
	staff, pagination, hit, err := h.staff.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, staff, pagination, hit)
}

// SuggestRole godoc
// @Summary Suggest a staff role from a designation
// @Description A form convenience; the saved role is whatever the client submits.
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param designation query string true "Designation"
// @Success 200 {object} response.Envelope
// @Router /staff/suggest-role [get]
func (h *StaffHandler) SuggestRole(c *gin.Context) {
	role := h.staff.SuggestRole(c.Query("designation"))
	response.JSON(c, http.StatusOK, gin.H{"role": role}, nil)
}

// Get godoc
// @Summary Get staff member
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.staff.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Add staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.StaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.StaffRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.staff.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Staff ID"
// @Param payload body dto.StaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req dto.StaffRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.staff.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete godoc
// @Summary Deactivate staff member
// @Tags Staff
// @Security BearerAuth
// @Param id path string true "Staff ID"
// @Success 204
// @Router /staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	if err := h.staff.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
