package services

import (
	"context"
	"fmt"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

const allUsersLabel = "All Users"

// filterACL maps a raw rule set to its presentation form. Referenced users
// and groups are resolved with one bulk query each; rules pointing at an ID
// that no longer exists are dropped, and ownerless rules are kept under the
// "All Users" label. Output keeps no particular rule order.
func (s *zoneService) filterACL(ctx context.Context, acl domain.ZoneACL) (domain.ZoneACLInfo, error) {
	var userIDs, groupIDs []string
	seenUsers := make(map[string]bool)
	seenGroups := make(map[string]bool)
	for _, rule := range acl.Rules {
		if rule.UserID != nil && !seenUsers[*rule.UserID] {
			seenUsers[*rule.UserID] = true
			userIDs = append(userIDs, *rule.UserID)
		}
		if rule.GroupID != nil && !seenGroups[*rule.GroupID] {
			seenGroups[*rule.GroupID] = true
			groupIDs = append(groupIDs, *rule.GroupID)
		}
	}

	userNames := make(map[string]string, len(userIDs))
	if len(userIDs) > 0 {
		users, err := s.users.GetUsers(ctx, userIDs, nil, 0)
		if err != nil {
			return domain.ZoneACLInfo{}, fmt.Errorf("resolving ACL users: %w", err)
		}
		for _, u := range users {
			userNames[u.ID] = u.UserName
		}
	}

	groupNames := make(map[string]string, len(groupIDs))
	if len(groupIDs) > 0 {
		groups, err := s.groups.GetGroups(ctx, groupIDs)
		if err != nil {
			return domain.ZoneACLInfo{}, fmt.Errorf("resolving ACL groups: %w", err)
		}
		for _, g := range groups {
			groupNames[g.ID] = g.Name
		}
	}

	info := domain.ZoneACLInfo{}
	for _, rule := range acl.Rules {
		var display string
		switch {
		case rule.UserID != nil:
			name, ok := userNames[*rule.UserID]
			if !ok {
				continue // dangling user reference
			}
			display = name
		case rule.GroupID != nil:
			name, ok := groupNames[*rule.GroupID]
			if !ok {
				continue // dangling group reference
			}
			display = name
		default:
			display = allUsersLabel
		}
		d := display
		info.Rules = append(info.Rules, domain.ACLRuleInfo{Rule: rule, DisplayName: &d})
	}
	return info, nil
}
