package access

import "github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"

type Action string

const (
	// Self Management
	ActionViewOwnProfile Action = "profile.view_own"
	ActionEditOwnProfile Action = "profile.edit_own"

	// Asset Management
	ActionAssetManage Action = "asset.manage"
	ActionAssetBrowse Action = "asset.browse"

	// Request Lifecycle
	ActionRequestCreate  Action = "request.create"
	ActionRequestViewOwn Action = "request.view_own"
	ActionRequestCancel  Action = "request.cancel"
	ActionRequestReturn  Action = "request.return"
	ActionRequestViewAll Action = "request.view_all"
	ActionRequestReview  Action = "request.review"

	// Team Management
	ActionTeamManage  Action = "team.manage"
	ActionTeamViewOwn Action = "team.view_own"

	// Dashboards
	ActionStatsHR       Action = "stats.hr"
	ActionStatsEmployee Action = "stats.employee"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[user.Role][]Action{
	user.RoleHR: {
		ActionViewOwnProfile,
		ActionEditOwnProfile,
		ActionAssetManage,
		ActionAssetBrowse,
		ActionRequestViewAll,
		ActionRequestReview,
		ActionTeamManage,
		ActionTeamViewOwn,
		ActionStatsHR,
	},
	user.RoleEmployee: {
		ActionViewOwnProfile,
		ActionEditOwnProfile,
		ActionAssetBrowse,
		ActionRequestCreate,
		ActionRequestViewOwn,
		ActionRequestCancel,
		ActionRequestReturn,
		ActionTeamViewOwn,
		ActionStatsEmployee,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role user.Role, action Action) bool {
	for _, a := range RolePermissions[role] {
		if a == action {
			return true
		}
	}
	return false
}
