package session

// destinationFor is the single definition of the role-based routing rule:
// admins land on the admin dashboard, club managers on the manager
// dashboard, everyone else on returnTo when given, otherwise the member
// dashboard. Call sites must use this and never restate the rule.
func (c *Controller) destinationFor(role Role, returnTo string) string {
	switch role {
	case RoleAdmin:
		return c.cfg.AdminDestination
	case RoleClubManager:
		return c.cfg.ManagerDestination
	case RoleMember:
		fallthrough
	default:
		// Unknown roles route like members; the backend may introduce roles
		// ahead of this client.
		if returnTo != "" {
			return returnTo
		}
		return c.cfg.MemberDestination
	}
}
