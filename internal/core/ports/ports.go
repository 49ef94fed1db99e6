package ports

import (
	"context"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

// ZoneRepository reads zone state. Lookups that find nothing return
// (nil, nil); errors are infrastructure failures only.
type ZoneRepository interface {
	GetZone(ctx context.Context, id string) (*domain.Zone, error)
	GetZoneByName(ctx context.Context, name string) (*domain.Zone, error)
	// ListZones returns the zones visible to the principal, optionally
	// filtered by name substring, in repository order.
	ListZones(ctx context.Context, p domain.AuthPrincipal, nameFilter *string, startFrom, maxItems int) ([]domain.Zone, error)
	Ping(ctx context.Context) error
}

// GroupRepository resolves group references.
type GroupRepository interface {
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	// GetGroups resolves a set of IDs in one query; missing IDs are simply
	// absent from the result.
	GetGroups(ctx context.Context, ids []string) ([]domain.Group, error)
	GetGroupIDsForUser(ctx context.Context, userID string) ([]string, error)
	SaveGroup(ctx context.Context, group domain.Group) error
	AddGroupMember(ctx context.Context, groupID, userID string) error
}

// UserRepository resolves user references and authenticates access keys.
type UserRepository interface {
	// GetUsers resolves a set of IDs in one query, paginated by an optional
	// exclusive start ID.
	GetUsers(ctx context.Context, ids []string, startFrom *string, maxItems int) ([]domain.User, error)
	GetUserByKeyHash(ctx context.Context, keyHash string) (*domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error
}

// ZoneChangeRepository is the append-only log of zone change records.
type ZoneChangeRepository interface {
	Save(ctx context.Context, change domain.ZoneChange) error
	// ListZoneChanges returns a zone's changes newest first.
	ListZoneChanges(ctx context.Context, zoneID string, startFrom, maxItems int) ([]domain.ZoneChange, error)
}

// MessageQueue hands change records to the async applier. Send is
// fire-and-forget once the enqueue is acknowledged.
type MessageQueue interface {
	Send(ctx context.Context, change domain.ZoneChange) error
	Ping(ctx context.Context) error
}

// ConnectionValidator probes the live DNS backend named by a zone's
// connection and transfer connection. A probe failure surfaces as
// *domain.ConnectionFailedError.
type ConnectionValidator interface {
	ValidateZoneConnections(ctx context.Context, zone domain.Zone) error
}

// ZoneService is the zone change orchestration engine.
type ZoneService interface {
	ConnectZone(ctx context.Context, zone domain.Zone, p domain.AuthPrincipal) (*domain.ZoneChange, error)
	UpdateZone(ctx context.Context, zone domain.Zone, p domain.AuthPrincipal) (*domain.ZoneChange, error)
	DeleteZone(ctx context.Context, zoneID string, p domain.AuthPrincipal) (*domain.ZoneChange, error)
	SyncZone(ctx context.Context, zoneID string, p domain.AuthPrincipal) (*domain.ZoneChange, error)
	GetZone(ctx context.Context, zoneID string, p domain.AuthPrincipal) (*domain.ZoneInfo, error)
	ListZones(ctx context.Context, p domain.AuthPrincipal, nameFilter *string, startFrom *int, maxItems int) (*domain.ListZonesResponse, error)
	ListZoneChanges(ctx context.Context, zoneID string, p domain.AuthPrincipal, startFrom *int, maxItems int) (*domain.ListZoneChangesResponse, error)
	AddACLRule(ctx context.Context, zoneID string, rule domain.ACLRule, p domain.AuthPrincipal) (*domain.ZoneChange, error)
	DeleteACLRule(ctx context.Context, zoneID string, rule domain.ACLRule, p domain.AuthPrincipal) (*domain.ZoneChange, error)
	HealthCheck(ctx context.Context) map[string]error
}
