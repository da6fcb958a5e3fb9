package services

import "absensi/internal/models"

// Допустимые переходы статусов заявки на отпуск.
// Решение принимается один раз: approved/rejected финальные.
var LeaveTransitions = map[models.LeaveStatus]map[models.LeaveStatus]bool{
	models.LeavePending:  {models.LeaveApproved: true, models.LeaveRejected: true},
	models.LeaveApproved: {},
	models.LeaveRejected: {},
}

func canTransition(current, to models.LeaveStatus, table map[models.LeaveStatus]map[models.LeaveStatus]bool) bool {
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}
