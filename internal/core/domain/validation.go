package domain

import (
	"fmt"
	"regexp"
)

// DefaultMaxACLRules bounds the number of ACL rules a single zone may carry.
const DefaultMaxACLRules = 1000

// ValidateACLRule checks the structural constraints of a single rule: the
// record mask, when present, must compile as a regular expression.
func ValidateACLRule(rule ACLRule) error {
	if reason := ruleError(rule); reason != "" {
		return &InvalidRequestError{Reasons: []string{reason}}
	}
	return nil
}

// ValidateZoneACL checks every rule in the ACL and the configured rule-count
// bound, collecting all offending rules into a single InvalidRequestError.
func ValidateZoneACL(acl ZoneACL, maxRules int) error {
	var reasons []string
	if maxRules > 0 && len(acl.Rules) > maxRules {
		reasons = append(reasons,
			fmt.Sprintf("zone has %d ACL rules; the maximum is %d", len(acl.Rules), maxRules))
	}
	for _, rule := range acl.Rules {
		if reason := ruleError(rule); reason != "" {
			reasons = append(reasons, reason)
		}
	}
	if len(reasons) > 0 {
		return &InvalidRequestError{Reasons: reasons}
	}
	return nil
}

func ruleError(rule ACLRule) string {
	if rule.RecordMask == nil {
		return ""
	}
	if _, err := regexp.Compile(*rule.RecordMask); err != nil {
		return fmt.Sprintf("record mask %q is not a valid regex: %v", *rule.RecordMask, err)
	}
	return ""
}
