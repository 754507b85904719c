// Package testutil provides throwaway backends for tests.
package testutil

import (
	"strings"
	"testing"

	"dbmis/internal/app/ds"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens a migrated in-memory SQLite database private to the test.
// Shared cache keeps the schema visible to every pooled connection.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(ds.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Redis starts a miniredis server and returns a client connected to it.
func Redis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// SeedUser inserts a user; the password is hashed by the model hook.
func SeedUser(t *testing.T, db *gorm.DB, username, password, role string) *ds.User {
	t.Helper()
	u := &ds.User{
		Username: username,
		Password: password,
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Role:     role,
		Status:   ds.StatusActive,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// SeedBusiness inserts a small business catalogue and returns it for lookups by name.
func SeedBusiness(t *testing.T, db *gorm.DB) (map[string]*ds.BusinessCategory, map[string]*ds.BusinessService, map[string]*ds.Region) {
	t.Helper()
	cats := map[string]*ds.BusinessCategory{
		"Health":    {Name: "Health", Status: ds.StatusActive},
		"Transport": {Name: "Transport", Status: ds.StatusActive},
		"Archive":   {Name: "Archive", Status: ds.StatusInactive},
	}
	for _, name := range []string{"Transport", "Health", "Archive"} {
		if err := db.Create(cats[name]).Error; err != nil {
			t.Fatalf("seed business category: %v", err)
		}
	}

	services := map[string]*ds.BusinessService{
		"Vaccination": {Name: "Vaccination", CategoryID: cats["Health"].ID, Status: ds.StatusActive},
		"Checkups":    {Name: "Checkups", CategoryID: cats["Health"].ID, Status: ds.StatusInactive},
		"Bus passes":  {Name: "Bus passes", CategoryID: cats["Transport"].ID, Status: ds.StatusActive},
	}
	for _, name := range []string{"Vaccination", "Checkups", "Bus passes"} {
		if err := db.Omit("Category").Create(services[name]).Error; err != nil {
			t.Fatalf("seed business service: %v", err)
		}
	}

	regions := map[string]*ds.Region{
		"North":  {Name: "North", Code: "N", Status: ds.StatusActive},
		"South":  {Name: "South", Code: "S", Status: ds.StatusActive},
		"Closed": {Name: "Closed", Code: "X", Status: ds.StatusInactive},
	}
	for _, name := range []string{"South", "North", "Closed"} {
		if err := db.Create(regions[name]).Error; err != nil {
			t.Fatalf("seed region: %v", err)
		}
	}
	return cats, services, regions
}
