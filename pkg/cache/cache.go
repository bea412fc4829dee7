// Package cache stores assembled search responses in SQLite so repeated
// searches within the TTL skip the scraping pipeline.
package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	"pricescout/pkg/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Cache struct {
	db  *sql.DB
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

func New(dbPath string, ttl time.Duration, log *zap.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS searches (
			flash_pid TEXT NOT NULL PRIMARY KEY,
			data TEXT NOT NULL,
			searched_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, ttl: ttl, log: log, now: time.Now}, nil
}

// Get returns the cached response for flashPID if it is younger than the TTL.
func (c *Cache) Get(flashPID string) (*models.SearchResponse, bool) {
	var data string
	var searchedAt time.Time

	err := c.db.QueryRow(
		`SELECT data, searched_at FROM searches WHERE flash_pid = ?`,
		flashPID,
	).Scan(&data, &searchedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Warn("cache lookup failed", zap.String("flash_pid", flashPID), zap.Error(err))
		}
		return nil, false
	}

	if c.now().Sub(searchedAt) > c.ttl {
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.log.Warn("cache entry unreadable", zap.String("flash_pid", flashPID), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

// Set stores resp under its product's flash pid.
func (c *Cache) Set(resp *models.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.log.Warn("cache marshal failed", zap.String("flash_pid", resp.Product.FlashPID), zap.Error(err))
		return
	}

	_, err = c.db.Exec(
		`INSERT INTO searches (flash_pid, data, searched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(flash_pid)
		 DO UPDATE SET data = excluded.data, searched_at = excluded.searched_at`,
		resp.Product.FlashPID, string(data), c.now().UTC(),
	)
	if err != nil {
		c.log.Warn("cache store failed", zap.String("flash_pid", resp.Product.FlashPID), zap.Error(err))
	}
}

func (c *Cache) Close() error {
	return c.db.Close()
}
