package models

import "time"

type WorkingHours struct {
	Start string `json:"start" binding:"required,clock"`
	End   string `json:"end" binding:"required,clock"`
}

type AttendanceRules struct {
	MaxCheckInTime  string  `json:"maxCheckInTime"`
	MinWorkingHours float64 `json:"minWorkingHours"`
	AllowRemote     bool    `json:"allowRemote"`
}

type OfficeLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	Address   string  `json:"address"`
}

// Settings is a singleton row.
type Settings struct {
	CompanyName     string          `json:"companyName"`
	WorkingHours    WorkingHours    `json:"workingHours"`
	AttendanceRules AttendanceRules `json:"attendanceRules"`
	OfficeLocation  OfficeLocation  `json:"officeLocation"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func DefaultSettings() Settings {
	return Settings{
		CompanyName:  "PT. Perusahaan Contoh",
		WorkingHours: WorkingHours{Start: "09:00", End: "17:00"},
		AttendanceRules: AttendanceRules{
			MaxCheckInTime:  "10:00",
			MinWorkingHours: 8,
			AllowRemote:     false,
		},
		OfficeLocation: OfficeLocation{
			Latitude:  -6.2088,
			Longitude: 106.8456,
			Radius:    100,
			Address:   "Jakarta, Indonesia",
		},
	}
}

type AttendanceHours struct {
	CheckIn  string `json:"checkIn" binding:"required,clock"`
	CheckOut string `json:"checkOut" binding:"required,clock"`
}

type EmployeeWorkingHours struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Position     string       `json:"position"`
	WorkingHours WorkingHours `json:"workingHours"`
}
