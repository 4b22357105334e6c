package blogapp

// Capability names an action that needs an authorization decision.
type Capability int

const (
	CapCreatePost Capability = iota
	CapEditPost
	CapDeletePost
	CapLike
	CapCreateComment
	CapEditComment
	CapDeleteComment
	CapEditUser
	CapDeleteUser
	CapManageUsers
	CapReadLogs
)

// capabilityRule says who may exercise a capability: any signed-in user,
// the resource owner, and/or admins.
type capabilityRule struct {
	anyUser bool
	owner   bool
	admin   bool
}

var capabilityRules = map[Capability]capabilityRule{
	CapCreatePost:    {anyUser: true},
	CapEditPost:      {owner: true},
	CapDeletePost:    {owner: true},
	CapLike:          {anyUser: true},
	CapCreateComment: {anyUser: true},
	CapEditComment:   {owner: true},
	CapDeleteComment: {owner: true, admin: true},
	CapEditUser:      {owner: true, admin: true},
	CapDeleteUser:    {admin: true},
	CapManageUsers:   {admin: true},
	CapReadLogs:      {admin: true},
}

// Authorize is the single capability check used by every mutating or
// privacy-sensitive operation. ownerID is the user id that owns the
// resource, or "" when the capability has no owner.
//
// It returns ErrUnauthenticated without a principal and ErrForbidden when
// the principal is neither a permitted owner nor a permitted admin.
func Authorize(p *Principal, c Capability, ownerID string) error {
	if p == nil || p.ID == "" {
		return ErrUnauthenticated
	}
	rule, ok := capabilityRules[c]
	if !ok {
		return ErrForbidden
	}
	switch {
	case rule.anyUser:
		return nil
	case rule.owner && ownerID != "" && p.ID == ownerID:
		return nil
	case rule.admin && p.Role == RoleAdmin:
		return nil
	}
	return ErrForbidden
}
