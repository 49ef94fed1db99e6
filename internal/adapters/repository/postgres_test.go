package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/zonecontrol/internal/core/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("zonecontrol_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("failed to open db: %s", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %s", err)
	}

	return db, func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
}

func insertZone(t *testing.T, db *sql.DB, z domain.Zone, acl string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO zones (id, name, email, status, created, admin_group_id, shared, acl)
	                   VALUES ($1, $2, $3, $4, now(), $5, $6, $7)`,
		z.ID, z.Name, z.Email, string(z.Status), z.AdminGroupID, z.Shared, acl)
	if err != nil {
		t.Fatalf("failed to insert zone %s: %s", z.Name, err)
	}
}

func TestPostgresRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewPostgresRepository(db, logger)
	ctx := context.Background()

	// Seed principals.
	now := time.Now()
	for _, g := range []domain.Group{
		{ID: "g-ops", Name: "ops", Email: "ops@example.com", Created: now},
		{ID: "g-dev", Name: "dev", Email: "dev@example.com", Created: now},
	} {
		if err := repo.SaveGroup(ctx, g); err != nil {
			t.Fatalf("SaveGroup failed: %s", err)
		}
	}
	if err := repo.SaveUser(ctx, domain.User{
		ID: "u-alice", UserName: "alice", KeyHash: "hash-alice", KeyPrefix: "zc_ali", Active: true, Created: now,
	}); err != nil {
		t.Fatalf("SaveUser failed: %s", err)
	}
	if err := repo.AddGroupMember(ctx, "g-ops", "u-alice"); err != nil {
		t.Fatalf("AddGroupMember failed: %s", err)
	}

	// Seed zones with differing visibility.
	insertZone(t, db, domain.Zone{ID: "z-ops", Name: "ops.zone.", Status: domain.ZoneActive, AdminGroupID: "g-ops"}, `{"rules":[]}`)
	insertZone(t, db, domain.Zone{ID: "z-dev", Name: "dev.zone.", Status: domain.ZoneActive, AdminGroupID: "g-dev"}, `{"rules":[]}`)
	insertZone(t, db, domain.Zone{ID: "z-shared", Name: "shared.zone.", Status: domain.ZoneActive, AdminGroupID: "g-dev", Shared: true}, `{"rules":[]}`)
	insertZone(t, db, domain.Zone{ID: "z-acl", Name: "acl.zone.", Status: domain.ZoneActive, AdminGroupID: "g-dev"},
		`{"rules":[{"accessLevel":"Read","userId":"u-alice"}]}`)
	insertZone(t, db, domain.Zone{ID: "z-gone", Name: "gone.zone.", Status: domain.ZoneDeleted, AdminGroupID: "g-ops"}, `{"rules":[]}`)

	t.Run("GetZoneByName", func(t *testing.T) {
		zone, err := repo.GetZoneByName(ctx, "OPS.ZONE.")
		if err != nil {
			t.Fatalf("GetZoneByName failed: %s", err)
		}
		if zone == nil || zone.ID != "z-ops" {
			t.Fatalf("unexpected zone: %+v", zone)
		}
	})

	t.Run("ListZones visibility", func(t *testing.T) {
		alice := domain.AuthPrincipal{UserID: "u-alice", GroupIDs: []string{"g-ops"}}
		zones, err := repo.ListZones(ctx, alice, nil, 0, 100)
		if err != nil {
			t.Fatalf("ListZones failed: %s", err)
		}
		got := make(map[string]bool)
		for _, z := range zones {
			got[z.ID] = true
		}
		for _, want := range []string{"z-ops", "z-shared", "z-acl"} {
			if !got[want] {
				t.Errorf("expected %s visible, got %v", want, got)
			}
		}
		if got["z-dev"] {
			t.Error("z-dev must not be visible to alice")
		}
		if got["z-gone"] {
			t.Error("deleted zones are never listed")
		}
	})

	t.Run("ListZones super sees everything live", func(t *testing.T) {
		root := domain.AuthPrincipal{UserID: "root", IsSuper: true}
		zones, err := repo.ListZones(ctx, root, nil, 0, 100)
		if err != nil {
			t.Fatalf("ListZones failed: %s", err)
		}
		if len(zones) != 4 {
			t.Errorf("expected 4 live zones, got %d", len(zones))
		}
	})

	t.Run("ListZones name filter and paging", func(t *testing.T) {
		root := domain.AuthPrincipal{UserID: "root", IsSuper: true}
		filter := "zone"
		page, err := repo.ListZones(ctx, root, &filter, 1, 2)
		if err != nil {
			t.Fatalf("ListZones failed: %s", err)
		}
		if len(page) != 2 {
			t.Errorf("expected page of 2, got %d", len(page))
		}
	})

	t.Run("zone change round trip", func(t *testing.T) {
		first := domain.ZoneChange{
			ID:         "c1",
			Zone:       domain.Zone{ID: "z-ops", Name: "ops.zone.", Status: domain.ZoneSyncing},
			UserID:     "u-alice",
			ChangeType: domain.ChangeCreate,
			Status:     domain.ChangePending,
			Created:    now.Add(-time.Hour),
		}
		second := first
		second.ID = "c2"
		second.ChangeType = domain.ChangeUpdate
		second.Created = now

		if err := repo.Save(ctx, first); err != nil {
			t.Fatalf("Save failed: %s", err)
		}
		if err := repo.Save(ctx, second); err != nil {
			t.Fatalf("Save failed: %s", err)
		}

		changes, err := repo.ListZoneChanges(ctx, "z-ops", 0, 100)
		if err != nil {
			t.Fatalf("ListZoneChanges failed: %s", err)
		}
		if len(changes) != 2 || changes[0].ID != "c2" || changes[1].ID != "c1" {
			t.Fatalf("expected newest first, got %+v", changes)
		}
		if changes[1].Zone.Name != "ops.zone." {
			t.Errorf("zone snapshot not preserved: %+v", changes[1].Zone)
		}
	})

	t.Run("bulk group resolution", func(t *testing.T) {
		groups, err := repo.GetGroups(ctx, []string{"g-ops", "g-dev", "g-missing"})
		if err != nil {
			t.Fatalf("GetGroups failed: %s", err)
		}
		if len(groups) != 2 {
			t.Errorf("expected 2 groups, got %+v", groups)
		}
	})

	t.Run("group membership", func(t *testing.T) {
		ids, err := repo.GetGroupIDsForUser(ctx, "u-alice")
		if err != nil {
			t.Fatalf("GetGroupIDsForUser failed: %s", err)
		}
		if len(ids) != 1 || ids[0] != "g-ops" {
			t.Errorf("unexpected memberships: %v", ids)
		}
	})

	t.Run("user lookup by key hash", func(t *testing.T) {
		user, err := repo.GetUserByKeyHash(ctx, "hash-alice")
		if err != nil {
			t.Fatalf("GetUserByKeyHash failed: %s", err)
		}
		if user == nil || user.UserName != "alice" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("GetZoneByName prefers the live namesake of a deleted zone", func(t *testing.T) {
		// gone.zone. was deleted above; recreating the name leaves two rows.
		insertZone(t, db, domain.Zone{ID: "z-reborn", Name: "gone.zone.", Status: domain.ZoneActive, AdminGroupID: "g-ops"}, `{"rules":[]}`)

		zone, err := repo.GetZoneByName(ctx, "gone.zone.")
		if err != nil {
			t.Fatalf("GetZoneByName failed: %s", err)
		}
		if zone == nil || zone.ID != "z-reborn" || zone.Status != domain.ZoneActive {
			t.Fatalf("expected the live row, got %+v", zone)
		}
	})

	t.Run("live name uniqueness index", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO zones (id, name, email, status, created, admin_group_id, shared, acl)
		                   VALUES ('z-dup', 'OPS.ZONE.', '', 'Active', now(), 'g-ops', false, '{"rules":[]}')`)
		if err == nil {
			t.Error("expected duplicate live name to violate the unique index")
		}
	})
}
