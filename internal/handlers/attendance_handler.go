package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"absensi/internal/authz"
	"absensi/internal/models"
	"absensi/internal/realtime"
	"absensi/internal/services"
)

type AttendanceHandler struct {
	service AttendanceService
	hub     *realtime.AttendanceHub
}

func NewAttendanceHandler(service AttendanceService, hub *realtime.AttendanceHub) *AttendanceHandler {
	return &AttendanceHandler{service: service, hub: hub}
}

type punchRequest struct {
	// только для админа: отметка за другого сотрудника
	UserID             int        `json:"userId"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	VerificationMethod string     `json:"verificationMethod" example:"face"`
	FaceImage          string     `json:"faceImage"`
	Timestamp          *time.Time `json:"timestamp"`
}

// toPunch resolves the subject of the punch and enforces who may use which
// method. It writes the error response itself.
func (h *AttendanceHandler) toPunch(c *gin.Context) (services.PunchRequest, bool) {
	var req punchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return services.PunchRequest{}, false
	}
	callerID, role := getUserAndRole(c)

	subject := callerID
	if req.UserID != 0 && req.UserID != callerID {
		if !authz.IsAdmin(role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot record attendance for another user"})
			return services.PunchRequest{}, false
		}
		subject = req.UserID
	}

	method := models.VerificationMethod(req.VerificationMethod)
	if method == "" {
		method = models.MethodLocation
		if req.FaceImage != "" {
			method = models.MethodFace
		}
	}
	if method == models.MethodManual && !authz.IsAdmin(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "manual attendance requires admin"})
		return services.PunchRequest{}, false
	}

	return services.PunchRequest{
		UserID:    subject,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Method:    method,
		FaceImage: req.FaceImage,
		Timestamp: req.Timestamp,
	}, true
}

// @Summary      Check in
// @Description  Records today's check-in after geofence and (for face) verification
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      punchRequest  true  "Punch"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      503   {object}  map[string]string
// @Router       /api/attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	req, ok := h.toPunch(c)
	if !ok {
		return
	}
	view, err := h.service.CheckIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, "attendance", "check-in", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Check-in successful",
		"verificationMethod": view.VerificationMethod,
		"confidence":         view.Confidence,
		"checkIn":            view,
	})
}

// @Summary      Check out
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      punchRequest  true  "Punch"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	req, ok := h.toPunch(c)
	if !ok {
		return
	}
	view, err := h.service.CheckOut(c.Request.Context(), req)
	if err != nil {
		respondError(c, "attendance", "check-out", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Check-out successful",
		"verificationMethod": view.VerificationMethod,
		"confidence":         view.Confidence,
		"checkOut":           view,
	})
}

// @Summary      Today's attendance
// @Tags         Attendance
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int  false  "User ID (defaults to caller)"
// @Success      200     {object}  models.TodayAttendance
// @Router       /api/attendance/today/{userId} [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	if c.Param("userId") != "" {
		id, ok := parseIntParam(c, "userId")
		if !ok {
			return
		}
		userID = id
	}
	out, err := h.service.GetToday(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "attendance", "today", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Attendance history of a user
// @Tags         Attendance
// @Produce      json
// @Security     BearerAuth
// @Param        userId     path   int     true   "User ID"
// @Param        startDate  query  string  false  "YYYY-MM-DD"
// @Param        endDate    query  string  false  "YYYY-MM-DD"
// @Success      200        {array}  models.AttendanceView
// @Router       /api/attendance/history/{userId} [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	userID, ok := parseIntParam(c, "userId")
	if !ok {
		return
	}
	out, err := h.service.History(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, "attendance", "history", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      All attendance records (admin)
// @Tags         Attendance
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query  string  false  "YYYY-MM-DD"
// @Param        endDate    query  string  false  "YYYY-MM-DD"
// @Success      200        {array}  models.AttendanceView
// @Router       /api/attendance/all [get]
func (h *AttendanceHandler) All(c *gin.Context) {
	out, err := h.service.All(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, "attendance", "all", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Attendance statistics of a user
// @Tags         Attendance
// @Produce      json
// @Security     BearerAuth
// @Param        userId     path   int     true   "User ID"
// @Param        startDate  query  string  false  "YYYY-MM-DD"
// @Param        endDate    query  string  false  "YYYY-MM-DD"
// @Success      200        {object}  models.AttendanceStats
// @Router       /api/attendance/stats/{userId} [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	userID, ok := parseIntParam(c, "userId")
	if !ok {
		return
	}
	out, err := h.service.Stats(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, "attendance", "stats", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Live upgrades to a websocket that streams attendance events.
func (h *AttendanceHandler) Live(c *gin.Context) {
	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.hub.Serve(conn)
}
