package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a card record does not exist.
var ErrNotFound = errors.New("card not found")

// CardRecord describes one generated card.
type CardRecord struct {
	ID         string `json:"id"`
	Payload    string `json:"payload"`
	Skin       string `json:"skin"`
	OutputPath string `json:"output_path"`
	Preview    bool   `json:"preview"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Checksum   string `json:"checksum"`
	CreatedAt  int64  `json:"created_at"`
}

// CardStore manages SQLite storage for the card history.
type CardStore struct {
	db *sql.DB
}

const createCardsTable = `
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    skin TEXT NOT NULL DEFAULT '',
    output_path TEXT NOT NULL DEFAULT '',
    preview INTEGER NOT NULL DEFAULT 0,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    checksum TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_cards_created_at ON cards(created_at);
CREATE INDEX IF NOT EXISTS idx_cards_checksum ON cards(checksum);
`

// NewCardStore opens (or creates) the SQLite database at dbPath and
// initialises the schema.
func NewCardStore(dbPath string) (*CardStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range []string{createCardsTable, createIndexes} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return &CardStore{db: db}, nil
}

// SaveCard inserts a card record, replacing any record with the same ID.
func (s *CardStore) SaveCard(c *CardRecord) error {
	const query = `
		INSERT OR REPLACE INTO cards
			(id, payload, skin, output_path, preview, width, height, checksum, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		c.ID,
		c.Payload,
		c.Skin,
		c.OutputPath,
		boolToInt(c.Preview),
		c.Width,
		c.Height,
		c.Checksum,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

// GetCard returns the record with the given ID.
func (s *CardStore) GetCard(id string) (*CardRecord, error) {
	const query = `
		SELECT id, payload, skin, output_path, preview, width, height, checksum, created_at
		FROM cards
		WHERE id = ?
	`

	rows, err := s.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &cards[0], nil
}

// ListCards returns card records newest first. Use limit and offset for
// pagination.
func (s *CardStore) ListCards(limit, offset int) ([]CardRecord, error) {
	const query = `
		SELECT id, payload, skin, output_path, preview, width, height, checksum, created_at
		FROM cards
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// CountCards returns the number of stored records.
func (s *CardStore) CountCards() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *CardStore) Close() error {
	return s.db.Close()
}

// --- helpers ----------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanCards(rows *sql.Rows) ([]CardRecord, error) {
	var cards []CardRecord
	for rows.Next() {
		var c CardRecord
		var preview int
		if err := rows.Scan(
			&c.ID, &c.Payload, &c.Skin, &c.OutputPath, &preview,
			&c.Width, &c.Height, &c.Checksum, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		c.Preview = preview != 0
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}
	return cards, nil
}
