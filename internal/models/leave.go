package models

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveType string

const (
	LeaveAnnual     LeaveType = "annual"
	LeaveSick       LeaveType = "sick"
	LeavePermission LeaveType = "permission"
	LeaveOther      LeaveType = "other"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveAnnual, LeaveSick, LeavePermission, LeaveOther:
		return true
	}
	return false
}

type Leave struct {
	ID          int64       `json:"id"`
	UserID      int         `json:"userId"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	Reason      string      `json:"reason"`
	Type        LeaveType   `json:"type"`
	Status      LeaveStatus `json:"status"`
	AppliedAt   time.Time   `json:"appliedAt"`
	ProcessedAt *time.Time  `json:"processedAt"`
	ProcessedBy *int        `json:"processedBy"`

	// заполняются только в выборках с join
	UserName        string  `json:"userName,omitempty"`
	UserEmail       string  `json:"userEmail,omitempty"`
	UserPosition    string  `json:"userPosition,omitempty"`
	ProcessedByName *string `json:"processedByName,omitempty"`
}

type LeaveStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	ThisYear int `json:"thisYear"`
}
