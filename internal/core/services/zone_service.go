package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/zonecontrol/internal/core/domain"
	"github.com/poyrazK/zonecontrol/internal/core/ports"
)

// DefaultPageSize caps listing operations when the caller does not set one.
const DefaultPageSize = 100

const unknownGroupName = "Unknown group name"

// zoneService orchestrates zone mutations: it reads current state, runs
// validation and authorization, probes connectivity when needed, and turns
// the request into a durable Pending ZoneChange handed to the queue. It
// never writes the zone repository itself; the change record is the unit of
// durability and the downstream applier resolves ordering of concurrent
// changes.
type zoneService struct {
	zones       ports.ZoneRepository
	groups      ports.GroupRepository
	users       ports.UserRepository
	changes     ports.ZoneChangeRepository
	queue       ports.MessageQueue
	probe       ports.ConnectionValidator
	maxACLRules int
}

// NewZoneService wires the orchestrator. A maxACLRules of zero falls back
// to domain.DefaultMaxACLRules.
func NewZoneService(
	zones ports.ZoneRepository,
	groups ports.GroupRepository,
	users ports.UserRepository,
	changes ports.ZoneChangeRepository,
	queue ports.MessageQueue,
	probe ports.ConnectionValidator,
	maxACLRules int,
) ports.ZoneService {
	if maxACLRules <= 0 {
		maxACLRules = domain.DefaultMaxACLRules
	}
	return &zoneService{
		zones:       zones,
		groups:      groups,
		users:       users,
		changes:     changes,
		queue:       queue,
		probe:       probe,
		maxACLRules: maxACLRules,
	}
}

func (s *zoneService) ConnectZone(ctx context.Context, zone domain.Zone, p domain.AuthPrincipal) (*domain.ZoneChange, error) {
	existing, err := s.zones.GetZoneByName(ctx, zone.Name)
	if err != nil {
		return nil, fmt.Errorf("looking up zone %q: %w", zone.Name, err)
	}
	// A Deleted zone does not block re-creation of the name.
	if existing != nil && existing.Status != domain.ZoneDeleted {
		return nil, &domain.ZoneAlreadyExistsError{Name: zone.Name}
	}

	if zone.Shared && !p.IsSuper {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: "create shared zone " + zone.Name}
	}

	if err := domain.ValidateZoneACL(zone.ACL, s.maxACLRules); err != nil {
		return nil, err
	}

	group, err := s.groups.GetGroup(ctx, zone.AdminGroupID)
	if err != nil {
		return nil, fmt.Errorf("resolving admin group %q: %w", zone.AdminGroupID, err)
	}
	if group == nil {
		return nil, &domain.InvalidZoneAdminError{GroupID: zone.AdminGroupID}
	}

	if err := s.probe.ValidateZoneConnections(ctx, zone); err != nil {
		return nil, err
	}

	zone.ID = uuid.New().String()
	zone.Status = domain.ZoneSyncing
	zone.Created = time.Now()
	zone.Updated = nil

	return s.commit(ctx, s.newChange(zone, p.UserID, domain.ChangeCreate))
}

func (s *zoneService) UpdateZone(ctx context.Context, zone domain.Zone, p domain.AuthPrincipal) (*domain.ZoneChange, error) {
	stored, err := s.loadZone(ctx, zone.ID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeZone(p, *stored) {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: "update zone " + stored.Name}
	}

	if err := domain.ValidateZoneACL(zone.ACL, s.maxACLRules); err != nil {
		return nil, err
	}

	// Probe only when the connection settings actually changed.
	if !zone.Connection.Equal(stored.Connection) || !zone.TransferConnection.Equal(stored.TransferConnection) {
		if err := s.probe.ValidateZoneConnections(ctx, zone); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	zone.Status = stored.Status
	zone.Created = stored.Created
	zone.Updated = &now

	return s.commit(ctx, s.newChange(zone, p.UserID, domain.ChangeUpdate))
}

func (s *zoneService) DeleteZone(ctx context.Context, zoneID string, p domain.AuthPrincipal) (*domain.ZoneChange, error) {
	stored, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeZone(p, *stored) {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: "delete zone " + stored.Name}
	}

	now := time.Now()
	snapshot := *stored
	snapshot.Status = domain.ZoneDeleted
	snapshot.Updated = &now

	return s.commit(ctx, s.newChange(snapshot, p.UserID, domain.ChangeDelete))
}

func (s *zoneService) SyncZone(ctx context.Context, zoneID string, p domain.AuthPrincipal) (*domain.ZoneChange, error) {
	stored, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeZone(p, *stored) {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: "sync zone " + stored.Name}
	}

	now := time.Now()
	snapshot := *stored
	snapshot.Status = domain.ZoneSyncing
	snapshot.Updated = &now

	return s.commit(ctx, s.newChange(snapshot, p.UserID, domain.ChangeSync))
}

func (s *zoneService) GetZone(ctx context.Context, zoneID string, p domain.AuthPrincipal) (*domain.ZoneInfo, error) {
	stored, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if !domain.CanSeeZone(p, *stored) {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: "view zone " + stored.Name}
	}

	groupName := unknownGroupName
	if group, err := s.groups.GetGroup(ctx, stored.AdminGroupID); err != nil {
		return nil, fmt.Errorf("resolving admin group %q: %w", stored.AdminGroupID, err)
	} else if group != nil {
		groupName = group.Name
	}

	aclInfo, err := s.filterACL(ctx, stored.ACL)
	if err != nil {
		return nil, err
	}

	return &domain.ZoneInfo{
		Zone:           *stored,
		ACLInfo:        aclInfo,
		AdminGroupName: groupName,
	}, nil
}

func (s *zoneService) ListZones(ctx context.Context, p domain.AuthPrincipal, nameFilter *string, startFrom *int, maxItems int) (*domain.ListZonesResponse, error) {
	if maxItems <= 0 {
		maxItems = DefaultPageSize
	}
	offset := 0
	if startFrom != nil {
		offset = *startFrom
	}

	zones, err := s.zones.ListZones(ctx, p, nameFilter, offset, maxItems)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}

	// One bulk lookup for every distinct admin group in the page.
	var groupIDs []string
	seen := make(map[string]bool)
	for _, z := range zones {
		if !seen[z.AdminGroupID] {
			seen[z.AdminGroupID] = true
			groupIDs = append(groupIDs, z.AdminGroupID)
		}
	}
	names := make(map[string]string, len(groupIDs))
	if len(groupIDs) > 0 {
		groups, err := s.groups.GetGroups(ctx, groupIDs)
		if err != nil {
			return nil, fmt.Errorf("resolving admin groups: %w", err)
		}
		for _, g := range groups {
			names[g.ID] = g.Name
		}
	}

	summaries := make([]domain.ZoneSummaryInfo, 0, len(zones))
	for _, z := range zones {
		name, ok := names[z.AdminGroupID]
		if !ok {
			name = unknownGroupName
		}
		summaries = append(summaries, domain.ZoneSummaryInfo{Zone: z, AdminGroupName: name})
	}

	resp := &domain.ListZonesResponse{
		Zones:      summaries,
		MaxItems:   maxItems,
		StartFrom:  startFrom,
		NameFilter: nameFilter,
	}
	// A full page means more may exist.
	if len(zones) == maxItems {
		next := offset + len(zones)
		resp.NextID = &next
	}
	return resp, nil
}

func (s *zoneService) ListZoneChanges(ctx context.Context, zoneID string, p domain.AuthPrincipal, startFrom *int, maxItems int) (*domain.ListZoneChangesResponse, error) {
	stored, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if !domain.CanSeeZone(p, *stored) {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: "view changes for zone " + stored.Name}
	}

	if maxItems <= 0 {
		maxItems = DefaultPageSize
	}
	offset := 0
	if startFrom != nil {
		offset = *startFrom
	}

	changes, err := s.changes.ListZoneChanges(ctx, zoneID, offset, maxItems)
	if err != nil {
		return nil, fmt.Errorf("listing changes for zone %q: %w", zoneID, err)
	}
	return &domain.ListZoneChangesResponse{ZoneChanges: changes, ZoneID: zoneID}, nil
}

func (s *zoneService) AddACLRule(ctx context.Context, zoneID string, rule domain.ACLRule, p domain.AuthPrincipal) (*domain.ZoneChange, error) {
	return s.changeACL(ctx, zoneID, rule, p, "add ACL rule to zone ", domain.ZoneACL.AddRule)
}

func (s *zoneService) DeleteACLRule(ctx context.Context, zoneID string, rule domain.ACLRule, p domain.AuthPrincipal) (*domain.ZoneChange, error) {
	return s.changeACL(ctx, zoneID, rule, p, "delete ACL rule from zone ", domain.ZoneACL.DeleteRule)
}

// changeACL carries the shared load/authorize/validate path for single-rule
// mutations. Rule changes never re-probe the zone's connections.
func (s *zoneService) changeACL(ctx context.Context, zoneID string, rule domain.ACLRule, p domain.AuthPrincipal, action string, apply func(domain.ZoneACL, domain.ACLRule) domain.ZoneACL) (*domain.ZoneChange, error) {
	stored, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeZone(p, *stored) {
		return nil, &domain.NotAuthorizedError{UserID: p.UserID, Action: action + stored.Name}
	}
	if err := domain.ValidateACLRule(rule); err != nil {
		return nil, err
	}

	now := time.Now()
	snapshot := *stored
	snapshot.ACL = apply(stored.ACL, rule)
	snapshot.Updated = &now

	return s.commit(ctx, s.newChange(snapshot, p.UserID, domain.ChangeUpdate))
}

func (s *zoneService) HealthCheck(ctx context.Context) map[string]error {
	return map[string]error{
		"database": s.zones.Ping(ctx),
		"queue":    s.queue.Ping(ctx),
	}
}

func (s *zoneService) loadZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	stored, err := s.zones.GetZone(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("loading zone %q: %w", zoneID, err)
	}
	if stored == nil {
		return nil, &domain.ZoneNotFoundError{ID: zoneID}
	}
	return stored, nil
}

func (s *zoneService) newChange(zone domain.Zone, userID string, changeType domain.ZoneChangeType) domain.ZoneChange {
	return domain.ZoneChange{
		ID:         uuid.New().String(),
		Zone:       zone,
		UserID:     userID,
		ChangeType: changeType,
		Status:     domain.ChangePending,
		Created:    time.Now(),
	}
}

// commit makes the change durable and notifies the applier. Both failures
// are fatal for the request; nothing is retried here.
func (s *zoneService) commit(ctx context.Context, change domain.ZoneChange) (*domain.ZoneChange, error) {
	if err := s.changes.Save(ctx, change); err != nil {
		return nil, fmt.Errorf("saving change %q: %w", change.ID, err)
	}
	if err := s.queue.Send(ctx, change); err != nil {
		return nil, fmt.Errorf("enqueueing change %q: %w", change.ID, err)
	}
	return &change, nil
}
