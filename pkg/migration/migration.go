// Package migration provides the database migration runner.
//
// Migrations register themselves from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260201000000_create_users_table", &CreateUsersTable{})
//	}
//
// Run from the CLI:
//
//	ordertrack migrate             // run all pending
//	ordertrack migrate:rollback    // rollback last batch
//	ordertrack migrate:status      // show applied/pending
package migration

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	// Up applies the migration.
	Up(db *gorm.DB) error
	// Down reverses the migration.
	Down(db *gorm.DB) error
}

// migrationRecord is the GORM model stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

type registeredMigration struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry []registeredMigration
)

// Register adds a migration to the global registry. Call from init().
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, registeredMigration{name: name, m: m})
}

// Runner executes migrations against one database handle.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

func (r *Runner) applied() (map[string]migrationRecord, int, error) {
	var records []migrationRecord
	if err := r.db.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	byName := make(map[string]migrationRecord, len(records))
	maxBatch := 0
	for _, rec := range records {
		byName[rec.Name] = rec
		if rec.Batch > maxBatch {
			maxBatch = rec.Batch
		}
	}
	return byName, maxBatch, nil
}

func sorted() []registeredMigration {
	regMu.Lock()
	current := make([]registeredMigration, len(registry))
	copy(current, registry)
	regMu.Unlock()

	sort.Slice(current, func(i, j int) bool { return current[i].name < current[j].name })
	return current
}

// Run applies every pending migration in name order as one batch.
// Already-applied migrations are skipped, so Run is idempotent.
func (r *Runner) Run() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure tracking table: %w", err)
	}

	done, maxBatch, err := r.applied()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}

	batch := maxBatch + 1
	ran := 0
	for _, reg := range sorted() {
		if _, ok := done[reg.name]; ok {
			continue
		}

		logger.Info("applying migration", "name", reg.name)
		if err := reg.m.Up(r.db); err != nil {
			return fmt.Errorf("migration %q: %w", reg.name, err)
		}
		if err := r.db.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration %q: record: %w", reg.name, err)
		}
		ran++
	}

	if ran == 0 {
		logger.Info("migrations up to date")
	}
	return nil
}

// Rollback reverses the most recent batch, newest migration first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure tracking table: %w", err)
	}

	done, maxBatch, err := r.applied()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}
	if maxBatch == 0 {
		logger.Info("nothing to rollback")
		return nil
	}

	regs := sorted()
	for i := len(regs) - 1; i >= 0; i-- {
		reg := regs[i]
		rec, ok := done[reg.name]
		if !ok || rec.Batch != maxBatch {
			continue
		}

		logger.Info("rolling back migration", "name", reg.name)
		if err := reg.m.Down(r.db); err != nil {
			return fmt.Errorf("rollback %q: %w", reg.name, err)
		}
		if err := r.db.Delete(&migrationRecord{}, "name = ?", reg.name).Error; err != nil {
			return fmt.Errorf("rollback %q: record: %w", reg.name, err)
		}
	}
	return nil
}

// Status prints each registered migration with its applied state.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return fmt.Errorf("migration: ensure tracking table: %w", err)
	}

	done, _, err := r.applied()
	if err != nil {
		return fmt.Errorf("migration: read applied: %w", err)
	}

	for _, reg := range sorted() {
		if rec, ok := done[reg.name]; ok {
			fmt.Printf("  [x] %s (batch %d, %s)\n", reg.name, rec.Batch, rec.RunAt.Format(time.RFC3339))
		} else {
			fmt.Printf("  [ ] %s\n", reg.name)
		}
	}
	return nil
}
