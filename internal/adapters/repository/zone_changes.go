package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

// Save appends a change record. The zone snapshot travels as JSONB; the
// indexed columns exist for listing and for the applier's status updates.
func (r *PostgresRepository) Save(ctx context.Context, change domain.ZoneChange) error {
	snapshot, err := json.Marshal(change.Zone)
	if err != nil {
		return fmt.Errorf("encoding zone snapshot for change %q: %w", change.ID, err)
	}

	query := `INSERT INTO zone_changes (id, zone_id, user_id, change_type, status, created, system_message, zone)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.ExecContext(ctx, query,
		change.ID, change.Zone.ID, change.UserID, string(change.ChangeType),
		string(change.Status), change.Created, change.SystemMessage, snapshot)
	return err
}

// ListZoneChanges returns a zone's change records newest first.
func (r *PostgresRepository) ListZoneChanges(ctx context.Context, zoneID string, startFrom, maxItems int) ([]domain.ZoneChange, error) {
	query := `SELECT id, zone_id, user_id, change_type, status, created, system_message, zone
	          FROM zone_changes WHERE zone_id = $1
	          ORDER BY created DESC LIMIT $2 OFFSET $3`

	rows, errQuery := r.db.QueryContext(ctx, query, zoneID, maxItems, startFrom)
	if errQuery != nil {
		return nil, errQuery
	}
	defer r.closeRows(rows)

	var changes []domain.ZoneChange
	for rows.Next() {
		var (
			c        domain.ZoneChange
			zid      string
			message  sql.NullString
			snapshot []byte
		)
		if errScan := rows.Scan(&c.ID, &zid, &c.UserID, &c.ChangeType, &c.Status, &c.Created, &message, &snapshot); errScan != nil {
			return nil, errScan
		}
		if message.Valid {
			m := message.String
			c.SystemMessage = &m
		}
		if err := json.Unmarshal(snapshot, &c.Zone); err != nil {
			return nil, fmt.Errorf("decoding zone snapshot for change %q: %w", c.ID, err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
