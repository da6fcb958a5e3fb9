package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi/internal/models"
	"absensi/internal/services"
)

type SettingsHandler struct {
	service SettingsService
}

func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

type generalSettingsRequest struct {
	CompanyName  string               `json:"companyName"`
	WorkingHours *models.WorkingHours `json:"workingHours"`
}

type officeLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Radius    *float64 `json:"radius" binding:"required"`
	Address   string   `json:"address"`
}

type attendanceRulesRequest struct {
	MinWorkingHours *float64 `json:"minWorkingHours"`
	AllowRemote     *bool    `json:"allowRemote"`
}

// @Summary      All settings
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.Settings
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	st, err := h.service.Get(c.Request.Context())
	if err != nil {
		respondError(c, "settings", "get", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Update general settings (admin)
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generalSettingsRequest  true  "Settings"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/settings [put]
func (h *SettingsHandler) UpdateGeneral(c *gin.Context) {
	var req generalSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.service.UpdateGeneral(c.Request.Context(), services.GeneralSettingsInput{
		CompanyName:  req.CompanyName,
		WorkingHours: req.WorkingHours,
	})
	if err != nil {
		respondError(c, "settings", "update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "General settings updated",
		"settings": gin.H{
			"companyName":  st.CompanyName,
			"workingHours": st.WorkingHours,
			"updatedAt":    st.UpdatedAt,
		},
	})
}

// @Summary      Office location
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.OfficeLocation
// @Router       /api/settings/office-location [get]
func (h *SettingsHandler) OfficeLocation(c *gin.Context) {
	loc, err := h.service.OfficeLocation(c.Request.Context())
	if err != nil {
		respondError(c, "settings", "office-location", err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// @Summary      Update office location (admin)
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      officeLocationRequest  true  "Location"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/settings/office-location [put]
func (h *SettingsHandler) UpdateOfficeLocation(c *gin.Context) {
	var req officeLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc, err := h.service.UpdateOfficeLocation(c.Request.Context(), services.OfficeLocationInput(req))
	if err != nil {
		respondError(c, "settings", "office-location", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Office location updated", "officeLocation": loc})
}

// @Summary      Attendance hours
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.AttendanceHours
// @Router       /api/settings/attendance-hours [get]
func (h *SettingsHandler) AttendanceHours(c *gin.Context) {
	hours, err := h.service.AttendanceHours(c.Request.Context())
	if err != nil {
		respondError(c, "settings", "attendance-hours", err)
		return
	}
	c.JSON(http.StatusOK, hours)
}

// @Summary      Update attendance hours (admin)
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.AttendanceHours  true  "Hours"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/settings/attendance-hours [put]
func (h *SettingsHandler) UpdateAttendanceHours(c *gin.Context) {
	var req models.AttendanceHours
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hours, err := h.service.UpdateAttendanceHours(c.Request.Context(), req)
	if err != nil {
		respondError(c, "settings", "attendance-hours", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance hours updated", "attendanceHours": hours})
}

// @Summary      Update attendance rules (admin)
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      attendanceRulesRequest  true  "Rules"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/settings/attendance-rules [put]
func (h *SettingsHandler) UpdateAttendanceRules(c *gin.Context) {
	var req attendanceRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rules, err := h.service.UpdateAttendanceRules(c.Request.Context(), services.AttendanceRulesInput(req))
	if err != nil {
		respondError(c, "settings", "attendance-rules", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance rules updated", "attendanceRules": rules})
}

// @Summary      Employees with their working hours (admin)
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.EmployeeWorkingHours
// @Router       /api/settings/employee-working-hours [get]
func (h *SettingsHandler) EmployeeWorkingHours(c *gin.Context) {
	list, err := h.service.EmployeeWorkingHours(c.Request.Context())
	if err != nil {
		respondError(c, "settings", "employee-working-hours", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
