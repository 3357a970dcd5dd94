// Package allocator hands out the numeric surrogate ids for every entity
// collection. The persisted counter is treated as a cache of the invariant
// "counter >= max(id) in the collection" and is re-validated before every
// allocation, because the counter row has historically gone missing, drifted
// to a non-numeric value, or fallen behind manually edited data.
package allocator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity collection names. These double as table names and as the _counters
// primary keys.
const (
	EntityUsers       = "users"
	EntityTemplates   = "templates"
	EntityFields      = "fields"
	EntityAssignments = "assignments"
	EntityValues      = "values_kv"
)

type collection struct {
	table        string
	hasUpdatedAt bool
}

// collections whitelists the tables the allocator may touch; entity names
// arriving from callers are looked up here, never interpolated raw.
var collections = map[string]collection{
	EntityUsers:       {table: "users"},
	EntityTemplates:   {table: "templates", hasUpdatedAt: true},
	EntityFields:      {table: "fields"},
	EntityAssignments: {table: "assignments", hasUpdatedAt: true},
	EntityValues:      {table: "values_kv", hasUpdatedAt: true},
}

// Entities lists every managed collection, in repair order.
var Entities = []string{
	EntityUsers,
	EntityTemplates,
	EntityFields,
	EntityAssignments,
	EntityValues,
}

// Counter is one persisted counter record. Value is TEXT on purpose: the
// failure mode this component exists for is type drift in the persisted
// record, so the schema must be able to hold the garbage we repair.
type Counter struct {
	ID    string `gorm:"column:id;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

func (Counter) TableName() string { return "_counters" }

type Allocator struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Allocator {
	return &Allocator{DB: db}
}

// parseNumeric accepts integer and float renderings of a counter value and
// floors floats, mirroring how loosely earlier versions of this data were
// written. Anything else is not a number.
func parseNumeric(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(math.Floor(f)), true
	}
	return 0, false
}

// maxExistingID computes the highest valid id present in the collection.
// Rows with a NULL or non-positive id are ignored; they are repair
// candidates, not evidence.
func (a *Allocator) maxExistingID(ctx context.Context, entity string) (int64, error) {
	col, ok := collections[entity]
	if !ok {
		return 0, fmt.Errorf("allocator: unknown entity %q", entity)
	}

	var max sql.NullInt64
	err := a.DB.WithContext(ctx).
		Raw(fmt.Sprintf(`SELECT MAX(id) FROM %s WHERE id IS NOT NULL AND id > 0`, col.table)).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

// HealthCheck ensures the persisted counter for entity exists, is numeric,
// and is >= max(id) in that collection. Idempotent; safe (and intended) to
// run before every allocation.
func (a *Allocator) HealthCheck(ctx context.Context, entity string) error {
	if _, ok := collections[entity]; !ok {
		return fmt.Errorf("allocator: unknown entity %q", entity)
	}

	maxID, err := a.maxExistingID(ctx, entity)
	if err != nil {
		return err
	}

	db := a.DB.WithContext(ctx)

	var c Counter
	err = db.Where("id = ?", entity).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Seed atomically: two cold allocators may race here, and the loser
		// must adopt the winner's row instead of erroring out of Next.
		seed := Counter{ID: entity, Value: strconv.FormatInt(maxID, 10)}
		if cerr := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; cerr != nil {
			return cerr
		}
		err = db.Where("id = ?", entity).First(&c).Error
	}
	if err != nil {
		return err
	}

	num, numeric := parseNumeric(c.Value)
	if !numeric {
		return db.Model(&Counter{}).Where("id = ?", entity).
			Update("value", strconv.FormatInt(maxID, 10)).Error
	}

	fixed := num
	if maxID > fixed {
		fixed = maxID
	}
	canonical := strconv.FormatInt(fixed, 10)
	if c.Value != canonical {
		return db.Model(&Counter{}).Where("id = ?", entity).
			Update("value", canonical).Error
	}
	return nil
}

// increment performs the single atomic increment-and-read. The CAST round
// trip keeps the stored value canonical text; on engines that refuse to cast
// a corrupted value the statement errors, which callers treat the same as a
// non-numeric result.
func (a *Allocator) increment(ctx context.Context, entity string) (int64, bool) {
	var out sql.NullString
	err := a.DB.WithContext(ctx).
		Raw(`UPDATE _counters SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT) WHERE id = ? RETURNING value`, entity).
		Scan(&out).Error
	if err != nil || !out.Valid {
		return 0, false
	}
	n, numeric := parseNumeric(out.String)
	if !numeric || n <= 0 {
		return 0, false
	}
	return n, true
}

// Next allocates the next id for entity. The counter is health-checked
// first; if the atomic increment still yields a non-numeric result the
// heal-and-increment sequence is retried exactly once, then the allocation
// fails hard: entity creation must abort rather than write a bad id.
func (a *Allocator) Next(ctx context.Context, entity string) (int64, error) {
	if err := a.HealthCheck(ctx, entity); err != nil {
		return 0, err
	}
	if id, ok := a.increment(ctx, entity); ok {
		return id, nil
	}

	// last attempt: repair and retry
	if err := a.HealthCheck(ctx, entity); err != nil {
		return 0, err
	}
	if id, ok := a.increment(ctx, entity); ok {
		return id, nil
	}

	return 0, fmt.Errorf("counter %q is corrupted and could not be repaired", entity)
}

// RepairCollection re-keys every row of entity whose id is missing,
// non-positive, or a duplicate of an earlier row. Rows are visited in doc_id
// order so repeated runs pick the same winners. Only id (and updated_at,
// where the table carries one) is touched.
func (a *Allocator) RepairCollection(ctx context.Context, entity string) (int, error) {
	col, ok := collections[entity]
	if !ok {
		return 0, fmt.Errorf("allocator: unknown entity %q", entity)
	}

	type row struct {
		DocID string        `gorm:"column:doc_id"`
		ID    sql.NullInt64 `gorm:"column:id"`
	}
	var rows []row
	err := a.DB.WithContext(ctx).
		Raw(fmt.Sprintf(`SELECT doc_id, id FROM %s ORDER BY doc_id`, col.table)).
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	seen := make(map[int64]bool, len(rows))
	var bad []string
	for _, r := range rows {
		if r.ID.Valid && r.ID.Int64 > 0 && !seen[r.ID.Int64] {
			seen[r.ID.Int64] = true
		} else {
			bad = append(bad, r.DocID)
		}
	}
	if len(bad) == 0 {
		return 0, nil
	}

	ts := time.Now().UTC()
	for _, docID := range bad {
		newID, err := a.Next(ctx, entity)
		if err != nil {
			return 0, err
		}
		var uerr error
		if col.hasUpdatedAt {
			uerr = a.DB.WithContext(ctx).
				Exec(fmt.Sprintf(`UPDATE %s SET id = ?, updated_at = ? WHERE doc_id = ?`, col.table), newID, ts, docID).Error
		} else {
			uerr = a.DB.WithContext(ctx).
				Exec(fmt.Sprintf(`UPDATE %s SET id = ? WHERE doc_id = ?`, col.table), newID, docID).Error
		}
		if uerr != nil {
			return 0, uerr
		}
	}
	return len(bad), nil
}

// RepairAll is the startup pass: health-check every counter, then re-key
// every orphaned or duplicated id across all collections.
func (a *Allocator) RepairAll(ctx context.Context) error {
	for _, entity := range Entities {
		if err := a.HealthCheck(ctx, entity); err != nil {
			return err
		}
	}
	for _, entity := range Entities {
		n, err := a.RepairCollection(ctx, entity)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("allocator: repaired %d %s id(s)", n, entity)
		}
	}
	return nil
}
