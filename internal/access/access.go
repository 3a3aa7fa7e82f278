// Package access holds the role checks shared by middleware and services.
// Checks only read the already resolved user and never touch storage.
package access

import "github.com/localnerve/tevor-api/internal/models"

// IsModuleAdmin reports whether user holds ADMIN for module m.
func IsModuleAdmin(user *models.User, m models.Module) bool {
	if user == nil {
		return false
	}
	return user.Roles.For(m) == models.RoleAdmin
}

// CanActOnJob reports whether user may mutate job: job admins always may,
// anyone else only when they are the recorded assignee.
func CanActOnJob(user *models.User, job *models.Job) bool {
	if user == nil || job == nil {
		return false
	}
	if IsModuleAdmin(user, models.ModuleJob) {
		return true
	}
	return job.Assignee != "" && job.Assignee == user.UserID
}
