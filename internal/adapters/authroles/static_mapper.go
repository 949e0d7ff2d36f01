package authroles

import (
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups to an initial role by simple string
// membership. Admin wins over recruiter when an identity carries both;
// everyone else starts as a candidate.
type StaticRoleMapper struct {
	AdminGroup     string
	RecruiterGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.RecruiterGroup != "" && g == m.RecruiterGroup {
			return domainauth.RoleRecruiter
		}
	}
	return domainauth.RoleCandidate
}
