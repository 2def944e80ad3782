package shared

// Membership platform permissions.
const (
	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermRolesView = "roles.view"

	PermClubsView = "clubs.view"
	PermClubsEdit = "clubs.edit"

	PermPartiesView = "parties.view"
	PermPartiesEdit = "parties.edit"

	PermCompetitionsView = "competitions.view"
	PermCompetitionsEdit = "competitions.edit"

	PermPowerTeamsView = "powerteams.view"
	PermPowerTeamsEdit = "powerteams.edit"

	PermCategoriesView = "categories.view"
	PermCategoriesEdit = "categories.edit"
)

// CoreScopes lists every permission known to the platform.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermClubsView,
		PermClubsEdit,
		PermPartiesView,
		PermPartiesEdit,
		PermCompetitionsView,
		PermCompetitionsEdit,
		PermPowerTeamsView,
		PermPowerTeamsEdit,
		PermCategoriesView,
		PermCategoriesEdit,
	}
}

// ViewScopes lists the read-only subset of CoreScopes.
func ViewScopes() []string {
	return []string{
		PermRolesView,
		PermClubsView,
		PermPartiesView,
		PermCompetitionsView,
		PermPowerTeamsView,
		PermCategoriesView,
	}
}
