package models

import "time"

type VerificationMethod string

const (
	MethodFace     VerificationMethod = "face"
	MethodLocation VerificationMethod = "location"
	MethodManual   VerificationMethod = "manual"
)

func (m VerificationMethod) Valid() bool {
	switch m {
	case MethodFace, MethodLocation, MethodManual:
		return true
	}
	return false
}

// Punch is one half of a daily attendance record (check-in or check-out).
// FaceImage is accepted on write and never serialized. List reads leave it
// empty and set HasFaceImage instead.
type Punch struct {
	Timestamp          *time.Time         `json:"timestamp"`
	Latitude           *float64           `json:"latitude"`
	Longitude          *float64           `json:"longitude"`
	VerificationMethod VerificationMethod `json:"verificationMethod"`
	Confidence         *float64           `json:"confidence,omitempty"`
	FaceImage          []byte             `json:"-"`
	HasFaceImage       bool               `json:"-"`
}

func (p *Punch) IsSet() bool {
	return p != nil && p.Timestamp != nil
}

// AttendanceRecord is unique per (UserID, Date). Date is YYYY-MM-DD in the
// server's attendance time zone.
type AttendanceRecord struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"userId"`
	Date      string    `json:"date"`
	CheckIn   *Punch    `json:"checkIn"`
	CheckOut  *Punch    `json:"checkOut"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PunchView is the read-side shape of a Punch.
type PunchView struct {
	Timestamp          *time.Time         `json:"timestamp"`
	Latitude           *float64           `json:"latitude"`
	Longitude          *float64           `json:"longitude"`
	VerificationMethod VerificationMethod `json:"verificationMethod"`
	Confidence         *float64           `json:"confidence,omitempty"`
	HasFaceImage       bool               `json:"hasFaceImage"`
}

func NewPunchView(p *Punch) *PunchView {
	if p == nil {
		return nil
	}
	return &PunchView{
		Timestamp:          p.Timestamp,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		VerificationMethod: p.VerificationMethod,
		Confidence:         p.Confidence,
		HasFaceImage:       p.HasFaceImage || len(p.FaceImage) > 0,
	}
}

type TodayAttendance struct {
	CheckIn  *PunchView `json:"checkIn"`
	CheckOut *PunchView `json:"checkOut"`
	Date     string     `json:"date"`
	UserID   int        `json:"userId"`
}

type AttendanceView struct {
	ID           int64      `json:"id"`
	UserID       int        `json:"userId"`
	Date         string     `json:"date"`
	CheckIn      *PunchView `json:"checkIn"`
	CheckOut     *PunchView `json:"checkOut"`
	UserName     string     `json:"userName,omitempty"`
	UserEmail    string     `json:"userEmail,omitempty"`
	UserPosition string     `json:"userPosition,omitempty"`
}

// AttendanceWithUser is a record joined with the owner's display attributes.
type AttendanceWithUser struct {
	AttendanceRecord
	UserName     string
	UserEmail    string
	UserPosition string
}

func NewAttendanceView(r *AttendanceRecord) AttendanceView {
	return AttendanceView{
		ID:       r.ID,
		UserID:   r.UserID,
		Date:     r.Date,
		CheckIn:  NewPunchView(r.CheckIn),
		CheckOut: NewPunchView(r.CheckOut),
	}
}

type AttendanceStats struct {
	UserID           int     `json:"userId"`
	From             string  `json:"from,omitempty"`
	To               string  `json:"to,omitempty"`
	TotalDays        int     `json:"totalDays"`
	CompleteDays     int     `json:"completeDays"`
	IncompleteDays   int     `json:"incompleteDays"`
	LateDays         int     `json:"lateDays"`
	AverageWorkHours float64 `json:"averageWorkHours"`
}

// AttendanceEvent is pushed to live subscribers after a successful punch.
type AttendanceEvent struct {
	ID                 string             `json:"id"`
	Type               string             `json:"type"` // check_in / check_out
	UserID             int                `json:"userId"`
	Date               string             `json:"date"`
	Timestamp          time.Time          `json:"timestamp"`
	VerificationMethod VerificationMethod `json:"verificationMethod"`
}
