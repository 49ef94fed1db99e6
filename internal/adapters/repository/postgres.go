// Package repository implements the persistence ports on PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

// PostgresRepository implements the zone, group, user and zone-change
// repository ports on a shared *sql.DB.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

const zoneColumns = `id, name, email, status, created, updated, connection, transfer_connection, admin_group_id, shared, acl`

func (r *PostgresRepository) GetZone(ctx context.Context, id string) (*domain.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE id = $1`
	return r.scanZoneRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetZoneByName(ctx context.Context, name string) (*domain.Zone, error) {
	// RFC 1034: zone name comparisons are case-insensitive. A Deleted row may
	// share the name with one live row; the live row must win the lookup.
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE LOWER(name) = LOWER($1)
		ORDER BY (status <> 'Deleted') DESC LIMIT 1`
	return r.scanZoneRow(r.db.QueryRowContext(ctx, query, name))
}

// ListZones returns the non-deleted zones the principal may see, ordered by
// name. Visibility for non-super users: admin group membership, a shared
// flag, or an ACL rule referencing the user, one of their groups, or
// everyone. The group set is passed once as a text[] parameter.
func (r *PostgresRepository) ListZones(ctx context.Context, p domain.AuthPrincipal, nameFilter *string, startFrom, maxItems int) ([]domain.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE status <> 'Deleted'`
	args := []interface{}{}

	if !p.IsSuper {
		groups := p.GroupIDs
		if groups == nil {
			groups = []string{}
		}
		args = append(args, groups, p.UserID)
		query += ` AND (shared
			OR admin_group_id = ANY($1)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(acl->'rules') AS rule
				WHERE rule->>'userId' = $2
					OR rule->>'groupId' = ANY($1)
					OR (rule->>'userId' IS NULL AND rule->>'groupId' IS NULL)))`
	}

	if nameFilter != nil && *nameFilter != "" {
		args = append(args, "%"+*nameFilter+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	args = append(args, maxItems, startFrom)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, errQuery := r.db.QueryContext(ctx, query, args...)
	if errQuery != nil {
		return nil, errQuery
	}
	defer r.closeRows(rows)

	var zones []domain.Zone
	for rows.Next() {
		zone, errScan := r.scanZone(rows)
		if errScan != nil {
			return nil, errScan
		}
		zones = append(zones, *zone)
	}
	return zones, rows.Err()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresRepository) scanZoneRow(row *sql.Row) (*domain.Zone, error) {
	zone, err := r.scanZone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *PostgresRepository) scanZone(row rowScanner) (*domain.Zone, error) {
	var (
		z              domain.Zone
		updated        sql.NullTime
		connection     []byte
		transconn      []byte
		acl            []byte
	)
	if err := row.Scan(&z.ID, &z.Name, &z.Email, &z.Status, &z.Created, &updated,
		&connection, &transconn, &z.AdminGroupID, &z.Shared, &acl); err != nil {
		return nil, err
	}
	if updated.Valid {
		u := updated.Time
		z.Updated = &u
	}
	if len(connection) > 0 {
		z.Connection = &domain.ZoneConnection{}
		if err := json.Unmarshal(connection, z.Connection); err != nil {
			return nil, fmt.Errorf("decoding connection for zone %q: %w", z.ID, err)
		}
	}
	if len(transconn) > 0 {
		z.TransferConnection = &domain.ZoneConnection{}
		if err := json.Unmarshal(transconn, z.TransferConnection); err != nil {
			return nil, fmt.Errorf("decoding transfer connection for zone %q: %w", z.ID, err)
		}
	}
	if len(acl) > 0 {
		if err := json.Unmarshal(acl, &z.ACL); err != nil {
			return nil, fmt.Errorf("decoding acl for zone %q: %w", z.ID, err)
		}
	}
	return &z, nil
}

func (r *PostgresRepository) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.logger.Warn("failed to close rows", "error", err)
	}
}
