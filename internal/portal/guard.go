package portal

// Allow reports whether the session may enter a route gated on role. An
// empty requiredRole only needs a login; otherwise the roles must match
// exactly. Admins get no implicit access to farmer routes.
func Allow(session *Session, requiredRole string) bool {
	if session == nil || !session.LoggedIn() {
		return false
	}
	if requiredRole == "" {
		return true
	}
	return session.Role() == requiredRole
}
