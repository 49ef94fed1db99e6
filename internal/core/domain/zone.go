// Package domain contains the core business entities and rules for zonecontrol.
package domain

import (
	"time"
)

// ZoneStatus represents the lifecycle state of a managed zone.
type ZoneStatus string

const (
	// ZoneActive means the zone has been synced and is under management.
	ZoneActive ZoneStatus = "Active"
	// ZoneSyncing means a sync against the DNS backend is in flight.
	ZoneSyncing ZoneStatus = "Syncing"
	// ZoneDeleted means the zone was logically removed. Deleted zones are
	// never purged; their name becomes available for re-creation.
	ZoneDeleted ZoneStatus = "Deleted"
)

// ZoneChangeType classifies the intent carried by a ZoneChange.
type ZoneChangeType string

const (
	ChangeCreate ZoneChangeType = "Create"
	ChangeUpdate ZoneChangeType = "Update"
	ChangeDelete ZoneChangeType = "Delete"
	ChangeSync   ZoneChangeType = "Sync"
)

// ZoneChangeStatus tracks a change through the async pipeline. The
// orchestrator only ever writes Pending; the downstream applier advances it.
type ZoneChangeStatus string

const (
	ChangePending  ZoneChangeStatus = "Pending"
	ChangeComplete ZoneChangeStatus = "Complete"
	ChangeFailed   ZoneChangeStatus = "Failed"
	ChangeSynced   ZoneChangeStatus = "Synced"
)

// AccessLevel is the permission granted by an ACL rule.
type AccessLevel string

const (
	AccessNone   AccessLevel = "NoAccess"
	AccessRead   AccessLevel = "Read"
	AccessWrite  AccessLevel = "Write"
	AccessDelete AccessLevel = "Delete"
)

// ZoneConnection holds the TSIG credential and server address used to reach
// a zone's primary or transfer server.
type ZoneConnection struct {
	Name          string `json:"name"`
	KeyName       string `json:"keyName"`
	Key           string `json:"key"`
	PrimaryServer string `json:"primaryServer"`
}

// Equal reports whether two optional connections carry the same settings.
func (c *ZoneConnection) Equal(other *ZoneConnection) bool {
	if c == nil || other == nil {
		return c == other
	}
	return *c == *other
}

// ACLRule grants an access level to a user, a group, or (when neither is
// set) to all users, optionally restricted by a record-name mask and a
// record-type filter.
type ACLRule struct {
	AccessLevel AccessLevel `json:"accessLevel"`
	UserID      *string     `json:"userId,omitempty"`
	GroupID     *string     `json:"groupId,omitempty"`
	RecordMask  *string     `json:"recordMask,omitempty"`
	RecordTypes []string    `json:"recordTypes,omitempty"`
}

// Equal compares rules by full content. The record-type filter is compared
// as a set.
func (r ACLRule) Equal(other ACLRule) bool {
	if r.AccessLevel != other.AccessLevel {
		return false
	}
	if !strPtrEqual(r.UserID, other.UserID) ||
		!strPtrEqual(r.GroupID, other.GroupID) ||
		!strPtrEqual(r.RecordMask, other.RecordMask) {
		return false
	}
	if len(r.RecordTypes) != len(other.RecordTypes) {
		return false
	}
	seen := make(map[string]int, len(r.RecordTypes))
	for _, t := range r.RecordTypes {
		seen[t]++
	}
	for _, t := range other.RecordTypes {
		seen[t]--
		if seen[t] < 0 {
			return false
		}
	}
	return true
}

// AppliesTo reports whether the rule grants anything to the given principal.
// A rule with neither user nor group applies to everyone.
func (r ACLRule) AppliesTo(p AuthPrincipal) bool {
	if r.UserID == nil && r.GroupID == nil {
		return true
	}
	if r.UserID != nil && *r.UserID == p.UserID {
		return true
	}
	if r.GroupID != nil && p.IsGroupMember(*r.GroupID) {
		return true
	}
	return false
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ZoneACL is an unordered set of ACL rules, unique by full rule content.
type ZoneACL struct {
	Rules []ACLRule `json:"rules"`
}

// Contains reports whether an equal rule is already present.
func (a ZoneACL) Contains(rule ACLRule) bool {
	for _, r := range a.Rules {
		if r.Equal(rule) {
			return true
		}
	}
	return false
}

// AddRule returns a copy of the ACL with the rule added. Adding a rule that
// is already present is a no-op.
func (a ZoneACL) AddRule(rule ACLRule) ZoneACL {
	if a.Contains(rule) {
		return a.copy()
	}
	out := a.copy()
	out.Rules = append(out.Rules, rule)
	return out
}

// DeleteRule returns a copy of the ACL with every rule equal to the given
// one removed. Deleting an absent rule is a no-op.
func (a ZoneACL) DeleteRule(rule ACLRule) ZoneACL {
	out := ZoneACL{}
	for _, r := range a.Rules {
		if !r.Equal(rule) {
			out.Rules = append(out.Rules, r)
		}
	}
	return out
}

func (a ZoneACL) copy() ZoneACL {
	out := ZoneACL{}
	out.Rules = append(out.Rules, a.Rules...)
	return out
}

// Zone represents a DNS zone under management. The admin group holds
// default full-change authority; ACL rules extend access beyond it.
type Zone struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"` // e.g. example.com.
	Email              string          `json:"email"`
	Status             ZoneStatus      `json:"status"`
	Created            time.Time       `json:"created"`
	Updated            *time.Time      `json:"updated,omitempty"`
	Connection         *ZoneConnection `json:"connection,omitempty"`
	TransferConnection *ZoneConnection `json:"transferConnection,omitempty"`
	AdminGroupID       string          `json:"adminGroupId"`
	Shared             bool            `json:"shared"`
	ACL                ZoneACL         `json:"acl"`
}

// ZoneChange is the unit of durability for every zone mutation: an intent
// record carrying the zone snapshot as it will exist after the change. It is
// written once here and advanced only by the downstream applier.
type ZoneChange struct {
	ID            string           `json:"id"`
	Zone          Zone             `json:"zone"`
	UserID        string           `json:"userId"`
	ChangeType    ZoneChangeType   `json:"changeType"`
	Status        ZoneChangeStatus `json:"status"`
	Created       time.Time        `json:"created"`
	SystemMessage *string          `json:"systemMessage,omitempty"`
}

// ACLRuleInfo is the presentation form of a rule: the rule plus the resolved
// user or group name, or "All Users" for ownerless rules.
type ACLRuleInfo struct {
	Rule        ACLRule `json:"rule"`
	DisplayName *string `json:"displayName,omitempty"`
}

// ZoneACLInfo is the presentation form of a zone's ACL.
type ZoneACLInfo struct {
	Rules []ACLRuleInfo `json:"rules"`
}

// ZoneInfo combines a zone with its filtered ACL and resolved admin group
// name for read responses.
type ZoneInfo struct {
	Zone           Zone        `json:"zone"`
	ACLInfo        ZoneACLInfo `json:"aclInfo"`
	AdminGroupName string      `json:"adminGroupName"`
}

// ZoneSummaryInfo is a listing row: the zone plus its resolved group name.
type ZoneSummaryInfo struct {
	Zone           Zone   `json:"zone"`
	AdminGroupName string `json:"adminGroupName"`
}

// ListZonesResponse echoes the paging inputs alongside the page of results.
// NextID is set only when the page is full, signalling more may exist.
type ListZonesResponse struct {
	Zones      []ZoneSummaryInfo `json:"zones"`
	MaxItems   int               `json:"maxItems"`
	StartFrom  *int              `json:"startFrom,omitempty"`
	NameFilter *string           `json:"nameFilter,omitempty"`
	NextID     *int              `json:"nextId,omitempty"`
}

// ListZoneChangesResponse carries a page of a zone's change history,
// newest first.
type ListZoneChangesResponse struct {
	ZoneChanges []ZoneChange `json:"zoneChanges"`
	ZoneID      string       `json:"zoneId"`
}
