package domain

import (
	"testing"
)

func TestCanChangeZone(t *testing.T) {
	zone := Zone{ID: "z1", Name: "ok.zone.", AdminGroupID: "admins"}

	tests := []struct {
		name string
		p    AuthPrincipal
		want bool
	}{
		{"admin group member", AuthPrincipal{UserID: "u1", GroupIDs: []string{"admins"}}, true},
		{"member of several groups", AuthPrincipal{UserID: "u1", GroupIDs: []string{"a", "admins", "b"}}, true},
		{"super user", AuthPrincipal{UserID: "root", IsSuper: true}, true},
		{"outsider", AuthPrincipal{UserID: "u2", GroupIDs: []string{"other"}}, false},
		{"no groups", AuthPrincipal{UserID: "u3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanChangeZone(tt.p, zone); got != tt.want {
				t.Errorf("CanChangeZone = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanSeeZone(t *testing.T) {
	userID := "reader"
	groupID := "readers"
	zone := Zone{
		ID:           "z1",
		AdminGroupID: "admins",
		ACL: ZoneACL{Rules: []ACLRule{
			{AccessLevel: AccessRead, UserID: &userID},
			{AccessLevel: AccessRead, GroupID: &groupID},
		}},
	}

	tests := []struct {
		name string
		p    AuthPrincipal
		zone Zone
		want bool
	}{
		{"change access implies read", AuthPrincipal{UserID: "u1", GroupIDs: []string{"admins"}}, zone, true},
		{"acl user reference", AuthPrincipal{UserID: "reader"}, zone, true},
		{"acl group reference", AuthPrincipal{UserID: "u2", GroupIDs: []string{"readers"}}, zone, true},
		{"unreferenced outsider", AuthPrincipal{UserID: "u3", GroupIDs: []string{"other"}}, zone, false},
		{"shared zone", AuthPrincipal{UserID: "u3"}, Zone{ID: "z2", AdminGroupID: "admins", Shared: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSeeZone(tt.p, tt.zone); got != tt.want {
				t.Errorf("CanSeeZone = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllUsersRuleGrantsRead(t *testing.T) {
	zone := Zone{
		ID:           "z1",
		AdminGroupID: "admins",
		ACL:          ZoneACL{Rules: []ACLRule{{AccessLevel: AccessRead}}},
	}
	anyone := AuthPrincipal{UserID: "whoever"}
	if !CanSeeZone(anyone, zone) {
		t.Error("rule with no user or group must apply to everyone")
	}
}
