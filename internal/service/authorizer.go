package service

import "inventory-plus/internal/model"

// Authorizer is the single place capability checks are decided.
type Authorizer interface {
	Can(profile *model.UserProfile, capability model.Capability) bool
	Capabilities(profile *model.UserProfile) []model.Capability
}

type authorizer struct{}

func NewAuthorizer() Authorizer {
	return authorizer{}
}

// Can: admins hold every capability, everyone else holds what their flags grant.
// A missing profile holds nothing.
func (authorizer) Can(profile *model.UserProfile, capability model.Capability) bool {
	if profile == nil {
		return false
	}
	if profile.Role == model.RoleAdmin {
		return true
	}
	return profile.Permissions.Has(capability)
}

func (a authorizer) Capabilities(profile *model.UserProfile) []model.Capability {
	caps := make([]model.Capability, 0, len(model.AllCapabilities))
	for _, c := range model.AllCapabilities {
		if a.Can(profile, c) {
			caps = append(caps, c)
		}
	}
	return caps
}
