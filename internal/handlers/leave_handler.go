package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"absensi/internal/models"
	"absensi/internal/services"
)

type LeaveHandler struct {
	service LeaveService
}

func NewLeaveHandler(service LeaveService) *LeaveHandler {
	return &LeaveHandler{service: service}
}

type applyLeaveRequest struct {
	StartDate string `json:"startDate" binding:"required" example:"2024-05-01"`
	EndDate   string `json:"endDate" binding:"required" example:"2024-05-03"`
	Reason    string `json:"reason" binding:"required"`
	Type      string `json:"type" example:"annual"`
}

type leaveStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// @Summary      Apply for leave
// @Tags         Leaves
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      applyLeaveRequest  true  "Leave"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /api/leaves/apply [post]
func (h *LeaveHandler) Apply(c *gin.Context) {
	var req applyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	leave, err := h.service.Apply(c.Request.Context(), services.ApplyLeaveInput{
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Type:      req.Type,
	})
	if err != nil {
		respondError(c, "leaves", "apply", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Leave request submitted", "leave": leave})
}

// @Summary      Caller's leaves
// @Tags         Leaves
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Leave
// @Router       /api/leaves/mine [get]
func (h *LeaveHandler) Mine(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	h.listFor(c, userID)
}

// @Summary      Leaves of a user
// @Tags         Leaves
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  int  true  "User ID"
// @Success      200  {array}  models.Leave
// @Router       /api/leaves/user/{userId} [get]
func (h *LeaveHandler) ByUser(c *gin.Context) {
	userID, ok := parseIntParam(c, "userId")
	if !ok {
		return
	}
	h.listFor(c, userID)
}

func (h *LeaveHandler) listFor(c *gin.Context, userID int) {
	leaves, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "leaves", "list", err)
		return
	}
	c.JSON(http.StatusOK, leaves)
}

// @Summary      All leaves (admin)
// @Tags         Leaves
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Leave
// @Router       /api/leaves/all [get]
func (h *LeaveHandler) All(c *gin.Context) {
	leaves, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "leaves", "all", err)
		return
	}
	c.JSON(http.StatusOK, leaves)
}

// @Summary      Approve or reject a leave (admin)
// @Tags         Leaves
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Leave ID"
// @Param        body  body      leaveStatusRequest  true  "Decision"
// @Success      200   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]string
// @Router       /api/leaves/{id}/status [put]
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leave ID"})
		return
	}
	var req leaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID, _ := getUserAndRole(c)
	status := models.LeaveStatus(req.Status)
	leave, err := h.service.Decide(c.Request.Context(), id, status, adminID)
	if err != nil {
		respondError(c, "leaves", "status", err)
		return
	}
	msg := "Leave request approved"
	if status == models.LeaveRejected {
		msg = "Leave request rejected"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "leave": leave})
}

// @Summary      Leave statistics of a user
// @Tags         Leaves
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  int  true  "User ID"
// @Success      200  {object}  models.LeaveStats
// @Router       /api/leaves/stats/{userId} [get]
func (h *LeaveHandler) Stats(c *gin.Context) {
	userID, ok := parseIntParam(c, "userId")
	if !ok {
		return
	}
	st, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "leaves", "stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
