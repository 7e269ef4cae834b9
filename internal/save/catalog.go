package save

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func unmarshalSidecar(raw []byte, out *MetaSidecar) error {
	return json.Unmarshal(raw, out)
}

// Catalog is a derived SQLite index over the save directory's
// `.meta.json` sidecars — a fast-listing secondary index, never the
// source of truth. The `.aet`/`.meta.json` files on Storage remain
// authoritative; Catalog can always be rebuilt from them via Reindex.
type Catalog struct {
	conn *sqlx.DB
}

// OpenCatalog opens or creates a SQLite catalog database at path (use
// ":memory:" for tests, matching the pack's own sqlx/modernc.org/sqlite
// wiring conventions).
func OpenCatalog(path string) (*Catalog, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c := &Catalog{conn: conn}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return c, nil
}

// Close closes the catalog's database connection.
func (c *Catalog) Close() error { return c.conn.Close() }

func (c *Catalog) migrate() error {
	_, err := c.conn.Exec(`
	CREATE TABLE IF NOT EXISTS saves (
		name TEXT PRIMARY KEY,
		save_id INTEGER NOT NULL,
		version INTEGER NOT NULL,
		is_incremental INTEGER NOT NULL DEFAULT 0,
		entity_count INTEGER NOT NULL DEFAULT 0,
		event_count INTEGER NOT NULL DEFAULT 0,
		world_age TEXT,
		seed TEXT,
		created_at TEXT,
		description TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_saves_created_at ON saves(created_at);
	`)
	return err
}

// saveRow mirrors the saves table for sqlx's struct-scan convenience.
type saveRow struct {
	Name          string `db:"name"`
	SaveID        int32  `db:"save_id"`
	Version       int    `db:"version"`
	IsIncremental bool   `db:"is_incremental"`
	EntityCount   int    `db:"entity_count"`
	EventCount    int    `db:"event_count"`
	WorldAge      string `db:"world_age"`
	Seed          string `db:"seed"`
	CreatedAt     string `db:"created_at"`
	Description   string `db:"description"`
}

// Entry is the public, storage-agnostic view of one cataloged save.
type Entry struct {
	Name          string
	SaveID        int32
	Version       int
	IsIncremental bool
	EntityCount   int
	EventCount    int
	WorldAge      string
	Seed          string
	CreatedAt     string
	Description   string
}

// Index records (or re-records) one save's sidecar metadata, keyed by
// name. Call this after every successful SaveFull/SaveIncremental.
func (c *Catalog) Index(name string, sidecar MetaSidecar) error {
	meta := sidecar.Metadata
	_, err := c.conn.Exec(`
	INSERT INTO saves (name, save_id, version, is_incremental, entity_count, event_count, world_age, seed, created_at, description)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		save_id=excluded.save_id, version=excluded.version, is_incremental=excluded.is_incremental,
		entity_count=excluded.entity_count, event_count=excluded.event_count, world_age=excluded.world_age,
		seed=excluded.seed, created_at=excluded.created_at, description=excluded.description
	`,
		name, int32(sidecar.ID), sidecar.Version, meta["isIncremental"] == "true",
		atoiOrZero(meta["entityCount"]), atoiOrZero(meta["eventCount"]),
		meta["worldAge"], meta["seed"], meta["createdAt"], meta["description"])
	return err
}

// Remove drops name from the catalog. Idempotent.
func (c *Catalog) Remove(name string) error {
	_, err := c.conn.Exec(`DELETE FROM saves WHERE name = ?`, name)
	return err
}

// List returns every cataloged entry, most recently created first.
func (c *Catalog) List() ([]Entry, error) {
	var rows []saveRow
	if err := c.conn.Select(&rows, `SELECT * FROM saves ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry(r)
	}
	return out, nil
}

// Reindex rebuilds the catalog from scratch by reading every
// `.meta.json` sidecar currently present on storage — the recovery path
// if the catalog ever diverges from (or is lost relative to) the
// authoritative save directory.
func (c *Catalog) Reindex(storage Storage) error {
	if _, err := c.conn.Exec(`DELETE FROM saves`); err != nil {
		return err
	}
	names, err := storage.ListFiles(metaSuffix)
	if err != nil {
		return err
	}
	for _, fileName := range names {
		raw, err := storage.ReadFile(fileName)
		if err != nil {
			continue
		}
		var sidecar MetaSidecar
		if err := unmarshalSidecar(raw, &sidecar); err != nil {
			continue
		}
		baseName := fileName[:len(fileName)-len(metaSuffix)]
		if err := c.Index(baseName, sidecar); err != nil {
			return err
		}
	}
	return nil
}

func atoiOrZero(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
