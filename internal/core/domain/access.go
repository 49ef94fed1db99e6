package domain

// CanChangeZone reports whether the principal may mutate the zone: either
// super-user or a member of the zone's admin group.
func CanChangeZone(p AuthPrincipal, zone Zone) bool {
	return p.IsSuper || p.IsGroupMember(zone.AdminGroupID)
}

// CanSeeZone reports whether the principal may read the zone: change
// authority, a shared zone, or any ACL rule that applies to the principal.
func CanSeeZone(p AuthPrincipal, zone Zone) bool {
	if CanChangeZone(p, zone) {
		return true
	}
	if zone.Shared {
		return true
	}
	for _, rule := range zone.ACL.Rules {
		if rule.AppliesTo(p) {
			return true
		}
	}
	return false
}
