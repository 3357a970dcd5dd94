package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"district_platform/internals/allocator"
	assignmentModel "district_platform/internals/features/assignments/model"
	templateModel "district_platform/internals/features/forms/templates/model"
	userModel "district_platform/internals/features/users/user/model"
)

var DB *gorm.DB

// ConnectDB opens the store. Postgres is the production engine; DB_DRIVER=
// sqlite switches to the embedded engine for local runs (the platform has
// shipped on both).
func ConnectDB() {
	driver := getenv("DB_DRIVER", "postgres")

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := getenv("DB_PATH", "data.sqlite")
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		sslmode := getenv("DB_SSLMODE", "require")
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=district_platform",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
			sslmode,
		)
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // PgBouncer friendly
		}), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("DB connect failed: %v", err)
	}
	DB = db
	log.Printf("DB connected (driver=%s)", driver)
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate creates the entity tables and the counter table, then the
// indexes. Index creation failures are warned about, never fatal:
// pre-existing duplicate data must not take the service down.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&allocator.Counter{},
		&userModel.UserModel{},
		&templateModel.TemplateModel{},
		&templateModel.FieldModel{},
		&assignmentModel.AssignmentModel{},
		&assignmentModel.ValueEntryModel{},
	); err != nil {
		return err
	}
	EnsureIndexes(db)
	return nil
}

// EnsureIndexes enforces the uniqueness constraints the store relies on
// instead of read-then-write checks in application code.
func EnsureIndexes(db *gorm.DB) {
	safeCreateIndex(db, "users.username unique",
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_username ON users (username)`)
	safeCreateIndex(db, "templates.updated_at",
		`CREATE INDEX IF NOT EXISTS idx_templates_updated_at ON templates (updated_at)`)
	safeCreateIndex(db, "fields.template_id+order_index",
		`CREATE INDEX IF NOT EXISTS idx_fields_template_order ON fields (template_id, order_index)`)
	safeCreateIndex(db, "fields.template_id+field_key unique",
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fields_template_key ON fields (template_id, field_key)`)
	safeCreateIndex(db, "assignments template+duser unique",
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_assignments_template_duser ON assignments (template_id, district_user_id)`)
	safeCreateIndex(db, "assignments.duser+updated",
		`CREATE INDEX IF NOT EXISTS idx_assignments_duser_updated ON assignments (district_user_id, updated_at)`)
	safeCreateIndex(db, "values_kv assignment+field unique",
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_values_assignment_key ON values_kv (assignment_id, field_key)`)
}

func safeCreateIndex(db *gorm.DB, name, stmt string) {
	if err := db.Exec(stmt).Error; err != nil {
		log.Printf("index create failed (%s): %v", name, err)
	}
}

// IsUniqueViolation reports whether err is a unique-index violation, on
// either supported engine.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
