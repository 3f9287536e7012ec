// Package authz decides who may see or act on contracts and jobs.
// Every function is a pure predicate; callers turn false into a forbidden
// error themselves.
package authz

import (
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/models"
)

func CanAccessContract(callerID uuid.UUID, contract *models.Contract) bool {
	if contract == nil || callerID == uuid.Nil {
		return false
	}
	return callerID == contract.ClientID || callerID == contract.ContractorID
}

// CanAccessJob applies the contract rule through the job's parent contract.
// A contract that is not the job's parent never grants access.
func CanAccessJob(callerID uuid.UUID, job *models.Job, contract *models.Contract) bool {
	if job == nil || contract == nil || job.ContractID != contract.ID {
		return false
	}
	return CanAccessContract(callerID, contract)
}

func RequireRole(caller *models.Profile, role models.Role) bool {
	return caller != nil && caller.Role == role
}

func IsContractClient(callerID uuid.UUID, contract *models.Contract) bool {
	return contract != nil && callerID != uuid.Nil && callerID == contract.ClientID
}
