package domain

// Context keys set by the auth middleware.
const (
	RequesterIdCtxKey       = "ecko-requesterId"
	RequesterOrgCtxKey      = "ecko-requesterOrg"
	RequesterRoleCtxKey     = "ecko-requesterRole"
	RequesterVerifiedCtxKey = "ecko-requesterVerified"
)
