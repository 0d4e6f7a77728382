package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/allthingslinux/tux/tux/database/models"
)

const defaultBatchSize = 1000

// Migrator imports the previous bot's MongoDB data into Postgres. Collections
// are walked with a cursor and inserted in batches; rows that fail to decode
// or convert are counted and skipped rather than aborting the run.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int
	collNames map[string]string
	stats     MigrationStats
}

func NewMigrator(pgDB *bun.DB) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		batchSize: defaultBatchSize,
		collNames: map[string]string{
			"cases":    "cases",
			"levels":   "levels",
			"afk":      "afk",
			"snippets": "snippets",
		},
		stats: MigrationStats{Tables: make(map[string]*TableStats)},
	}
}

// Connect dials the legacy MongoDB. Call Close when done.
func (m *Migrator) Connect(ctx context.Context, uri, dbName string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to legacy database: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping legacy database: %w", err)
	}
	m.mongoDB = client.Database(dbName)
	return nil
}

func (m *Migrator) Close(ctx context.Context) error {
	if m.mongoDB == nil {
		return nil
	}
	return m.mongoDB.Client().Disconnect(ctx)
}

// SetBatchSize overrides the insert batch size.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollectionName overrides a legacy collection name.
func (m *Migrator) SetCollectionName(kind, name string) {
	if kind != "" && name != "" {
		m.collNames[kind] = name
	}
}

func (m *Migrator) Stats() MigrationStats {
	return m.stats
}

// MigrateAll runs every import step in order.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	if m.mongoDB == nil {
		return fmt.Errorf("legacy database not configured; call Connect first")
	}

	m.stats.StartTime = time.Now()

	steps := []struct {
		name    string
		migrate func(context.Context) error
	}{
		{"cases", m.MigrateCases},
		{"levels", m.MigrateLevels},
		{"afk", m.MigrateAFK},
		{"snippets", m.MigrateSnippets},
	}

	for _, step := range steps {
		logProgress(fmt.Sprintf("Starting migration step: %s", step.name))
		if err := step.migrate(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		logProgress(fmt.Sprintf("Completed migration step: %s", step.name))
	}

	m.stats.EndTime = time.Now()
	m.logFinalStats()
	return nil
}

func (m *Migrator) MigrateCases(ctx context.Context) error {
	return migrateCollection(ctx, m, "cases", convertCase, func(ctx context.Context, batch []*models.Case) error {
		_, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (guild_id, case_number) DO NOTHING").
			Exec(ctx)
		return err
	})
}

func (m *Migrator) MigrateLevels(ctx context.Context) error {
	return migrateCollection(ctx, m, "levels", convertLevel, func(ctx context.Context, batch []*models.LevelsRecord) error {
		_, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (member_id, guild_id) DO NOTHING").
			Exec(ctx)
		return err
	})
}

func (m *Migrator) MigrateAFK(ctx context.Context) error {
	return migrateCollection(ctx, m, "afk", convertAFK, func(ctx context.Context, batch []*models.AFKEntry) error {
		_, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (member_id, guild_id) DO NOTHING").
			Exec(ctx)
		return err
	})
}

func (m *Migrator) MigrateSnippets(ctx context.Context) error {
	return migrateCollection(ctx, m, "snippets", convertSnippet, func(ctx context.Context, batch []*models.Snippet) error {
		_, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (guild_id, name) DO NOTHING").
			Exec(ctx)
		return err
	})
}

// migrateCollection walks one legacy collection, converting and batch
// inserting as it goes.
func migrateCollection[L any, M any](
	ctx context.Context,
	m *Migrator,
	kind string,
	convert func(L) (M, bool),
	insert func(context.Context, []M) error,
) error {
	stats := m.stats.table(kind)
	col := m.mongoDB.Collection(m.collNames[kind])

	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		logProgress(fmt.Sprintf("%s collection not found; skipping", kind))
		return nil
	}
	defer cur.Close(ctx)

	var batch []M
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := insert(ctx, batch); err != nil {
			stats.Errors += len(batch)
			return fmt.Errorf("failed to insert %s batch: %w", kind, err)
		}
		stats.Successful += len(batch)
		batch = batch[:0]
		return nil
	}

	for cur.Next(ctx) {
		stats.Processed++
		var legacy L
		if err := cur.Decode(&legacy); err != nil {
			stats.Skipped++
			continue
		}
		converted, ok := convert(legacy)
		if !ok {
			stats.Skipped++
			continue
		}
		batch = append(batch, converted)
		if len(batch) >= m.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	return flush()
}

func (m *Migrator) logFinalStats() {
	duration := m.stats.EndTime.Sub(m.stats.StartTime)
	slog.Info("Migration completed", "duration", duration)
	for tableName, stats := range m.stats.Tables {
		slog.Info("Table migration stats",
			"table", tableName,
			"processed", stats.Processed,
			"successful", stats.Successful,
			"skipped", stats.Skipped,
			"errors", stats.Errors)
	}
}

func logProgress(message string) {
	slog.Info(message, "service", "Tux Migration")
}
