package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

func (r *PostgresRepository) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	query := `SELECT id, name, email, created FROM groups WHERE id = $1`
	var g domain.Group
	errRow := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Name, &g.Email, &g.Created)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	return &g, nil
}

// GetGroups resolves a set of IDs in one query. IDs without a group are
// simply absent from the result.
func (r *PostgresRepository) GetGroups(ctx context.Context, ids []string) ([]domain.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, email, created FROM groups WHERE id = ANY($1)`
	rows, errQuery := r.db.QueryContext(ctx, query, ids)
	if errQuery != nil {
		return nil, errQuery
	}
	defer r.closeRows(rows)

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if errScan := rows.Scan(&g.ID, &g.Name, &g.Email, &g.Created); errScan != nil {
			return nil, errScan
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *PostgresRepository) GetGroupIDsForUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT group_id FROM group_members WHERE user_id = $1`
	rows, errQuery := r.db.QueryContext(ctx, query, userID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer r.closeRows(rows)

	var ids []string
	for rows.Next() {
		var id string
		if errScan := rows.Scan(&id); errScan != nil {
			return nil, errScan
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	query := `INSERT INTO groups (id, name, email, created) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`
	_, err := r.db.ExecContext(ctx, query, group.ID, group.Name, group.Email, group.Created)
	return err
}

func (r *PostgresRepository) AddGroupMember(ctx context.Context, groupID, userID string) error {
	query := `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, groupID, userID)
	return err
}

// GetUsers resolves a set of user IDs in one query, paginated by an
// exclusive start ID. A maxItems of zero or less means no limit.
func (r *PostgresRepository) GetUsers(ctx context.Context, ids []string, startFrom *string, maxItems int) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, user_name, email, key_hash, key_prefix, is_super, active, created
	          FROM users WHERE id = ANY($1)`
	args := []interface{}{ids}

	if startFrom != nil {
		args = append(args, *startFrom)
		query += fmt.Sprintf(" AND id > $%d", len(args))
	}
	query += " ORDER BY id"
	if maxItems > 0 {
		args = append(args, maxItems)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, errQuery := r.db.QueryContext(ctx, query, args...)
	if errQuery != nil {
		return nil, errQuery
	}
	defer r.closeRows(rows)

	var users []domain.User
	for rows.Next() {
		user, errScan := scanUser(rows)
		if errScan != nil {
			return nil, errScan
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetUserByKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	query := `SELECT id, user_name, email, key_hash, key_prefix, is_super, active, created
	          FROM users WHERE key_hash = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, keyHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `INSERT INTO users (id, user_name, email, key_hash, key_prefix, is_super, active, created)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (id) DO UPDATE SET
	            user_name = EXCLUDED.user_name, email = EXCLUDED.email,
	            key_hash = EXCLUDED.key_hash, key_prefix = EXCLUDED.key_prefix,
	            is_super = EXCLUDED.is_super, active = EXCLUDED.active`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.KeyHash, user.KeyPrefix,
		user.IsSuper, user.Active, user.Created)
	return err
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u     domain.User
		email sql.NullString
	)
	if err := row.Scan(&u.ID, &u.UserName, &email, &u.KeyHash, &u.KeyPrefix, &u.IsSuper, &u.Active, &u.Created); err != nil {
		return nil, err
	}
	if email.Valid {
		e := email.String
		u.Email = &e
	}
	return &u, nil
}
