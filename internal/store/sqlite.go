package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/vilniuscoffee/coffee-finder/internal/db"
	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: conn}, nil
}

// JSON columns are TEXT and timestamps are RFC 3339 TEXT.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS coffee_places (
	id                         TEXT PRIMARY KEY,
	slug                       TEXT NOT NULL UNIQUE,
	name                       TEXT NOT NULL,
	address                    TEXT NOT NULL DEFAULT '',
	location                   TEXT NOT NULL,
	rating                     REAL,
	user_ratings_total         INTEGER,
	ring29_rating              REAL,
	ring29_user_ratings_total  INTEGER,
	photos                     TEXT NOT NULL DEFAULT '[]',
	reviews                    TEXT NOT NULL DEFAULT '[]',
	website                    TEXT,
	international_phone_number TEXT,
	price_level                INTEGER,
	opening_hours              TEXT,
	google_maps_url            TEXT,
	business_status            TEXT,
	editorial_summary          TEXT,
	place_types                TEXT,
	place_features             TEXT,
	ai_summary                 TEXT,
	ai_rating                  TEXT,
	trending_score_web         REAL,
	trending_score_social      REAL,
	data_last_scraped_at       TEXT,
	created_at                 TEXT NOT NULL,
	last_updated               TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_coffee_places_rating ON coffee_places(rating);

CREATE TABLE IF NOT EXISTS place_photos (
	id            TEXT PRIMARY KEY,
	place_id      TEXT NOT NULL,
	storage_path  TEXT NOT NULL,
	public_url    TEXT NOT NULL,
	display_order INTEGER NOT NULL,
	width         INTEGER NOT NULL DEFAULT 0,
	height        INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_place_photos_place_id ON place_photos(place_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetPlace(ctx context.Context, id string) (*model.Place, error) {
	return s.getPlaceWhere(ctx, "id", id)
}

func (s *SQLiteStore) GetPlaceBySlug(ctx context.Context, slug string) (*model.Place, error) {
	return s.getPlaceWhere(ctx, "slug", slug)
}

func (s *SQLiteStore) getPlaceWhere(ctx context.Context, column, value string) (*model.Place, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+placeSelectList+` FROM coffee_places WHERE `+column+` = ?`,
		value,
	)
	p, err := scanSQLitePlace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get place by %s %s", column, value)
	}
	return p, nil
}

func (s *SQLiteStore) ListPlaces(ctx context.Context, opts ListOptions) ([]model.Place, error) {
	opts = opts.normalize()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+placeSelectList+` FROM coffee_places
		 ORDER BY rating DESC NULLS LAST, id ASC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list places")
	}
	defer rows.Close()

	places := []model.Place{}
	for rows.Next() {
		p, err := scanSQLitePlace(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan place")
		}
		places = append(places, *p)
	}
	return places, eris.Wrap(rows.Err(), "sqlite: list places iterate")
}

func (s *SQLiteStore) UpsertPlace(ctx context.Context, p *model.Place) error {
	query, err := db.UpsertSQL(upsertPlaceConfig(db.QuestionPlaceholder))
	if err != nil {
		return eris.Wrap(err, "sqlite: build place upsert")
	}
	args, err := placeArgs(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, sqliteArgs(args)...)
	return eris.Wrapf(err, "sqlite: upsert place %s", p.ID)
}

func (s *SQLiteStore) SlugOwner(ctx context.Context, slug string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM coffee_places WHERE slug = ?`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, eris.Wrapf(err, "sqlite: slug owner %s", slug)
	}
	return id, true, nil
}

func (s *SQLiteStore) UpdateAISummary(ctx context.Context, id string, summary []byte, rating string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coffee_places SET ai_summary = ?, ai_rating = ?, last_updated = ? WHERE id = ?`,
		string(summary), rating, formatTime(at), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update ai summary %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s", id)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) LogPhoto(ctx context.Context, entry model.PhotoLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO place_photos (id, place_id, storage_path, public_url, display_order, width, height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.PlaceID, entry.StoragePath, entry.PublicURL,
		entry.DisplayOrder, entry.Width, entry.Height, formatTime(entry.CreatedAt),
	)
	return eris.Wrapf(err, "sqlite: log photo %s", entry.StoragePath)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePlace(row rowScanner) (*model.Place, error) {
	var r placeRow
	if err := row.Scan(r.dest(true)...); err != nil {
		return nil, err
	}
	if err := r.parseTextTimes(); err != nil {
		return nil, err
	}
	return r.place()
}

// sqliteArgs rewrites Postgres-friendly args: JSON bytes become TEXT and
// timestamps become RFC 3339 strings.
func sqliteArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case []byte:
			if v == nil {
				out[i] = nil
			} else {
				out[i] = string(v)
			}
		case time.Time:
			out[i] = formatTime(v)
		case *time.Time:
			if v == nil {
				out[i] = nil
			} else {
				out[i] = formatTime(*v)
			}
		default:
			out[i] = a
		}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
