package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/vilniuscoffee/coffee-finder/internal/db"
	"github.com/vilniuscoffee/coffee-finder/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// place_photos has no foreign key: photos are logged while a place is being
// reconciled, before its row exists.
const postgresMigration = `
CREATE TABLE IF NOT EXISTS coffee_places (
	id                         TEXT PRIMARY KEY,
	slug                       TEXT NOT NULL UNIQUE,
	name                       TEXT NOT NULL,
	address                    TEXT NOT NULL DEFAULT '',
	location                   JSONB NOT NULL,
	rating                     DOUBLE PRECISION,
	user_ratings_total         INTEGER,
	ring29_rating              DOUBLE PRECISION,
	ring29_user_ratings_total  INTEGER,
	photos                     JSONB NOT NULL DEFAULT '[]'::jsonb,
	reviews                    JSONB NOT NULL DEFAULT '[]'::jsonb,
	website                    TEXT,
	international_phone_number TEXT,
	price_level                INTEGER,
	opening_hours              JSONB,
	google_maps_url            TEXT,
	business_status            TEXT,
	editorial_summary          JSONB,
	place_types                JSONB,
	place_features             JSONB,
	ai_summary                 JSONB,
	ai_rating                  TEXT,
	trending_score_web         DOUBLE PRECISION,
	trending_score_social      DOUBLE PRECISION,
	data_last_scraped_at       TIMESTAMPTZ,
	created_at                 TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_coffee_places_rating ON coffee_places(rating DESC NULLS LAST);

CREATE TABLE IF NOT EXISTS place_photos (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place_id      TEXT NOT NULL,
	storage_path  TEXT NOT NULL,
	public_url    TEXT NOT NULL,
	display_order INTEGER NOT NULL,
	width         INTEGER NOT NULL DEFAULT 0,
	height        INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_place_photos_place_id ON place_photos(place_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetPlace(ctx context.Context, id string) (*model.Place, error) {
	return s.getPlaceWhere(ctx, "id", id)
}

func (s *PostgresStore) GetPlaceBySlug(ctx context.Context, slug string) (*model.Place, error) {
	return s.getPlaceWhere(ctx, "slug", slug)
}

func (s *PostgresStore) getPlaceWhere(ctx context.Context, column, value string) (*model.Place, error) {
	var r placeRow
	err := s.pool.QueryRow(ctx,
		`SELECT `+placeSelectList+` FROM coffee_places WHERE `+column+` = $1`,
		value,
	).Scan(r.dest(false)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get place by %s %s", column, value)
	}
	return r.place()
}

func (s *PostgresStore) ListPlaces(ctx context.Context, opts ListOptions) ([]model.Place, error) {
	opts = opts.normalize()

	rows, err := s.pool.Query(ctx,
		`SELECT `+placeSelectList+` FROM coffee_places
		 ORDER BY rating DESC NULLS LAST, id ASC
		 LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list places")
	}
	defer rows.Close()

	places := []model.Place{}
	for rows.Next() {
		var r placeRow
		if err := rows.Scan(r.dest(false)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan place")
		}
		p, err := r.place()
		if err != nil {
			return nil, err
		}
		places = append(places, *p)
	}
	return places, eris.Wrap(rows.Err(), "postgres: list places iterate")
}

func (s *PostgresStore) UpsertPlace(ctx context.Context, p *model.Place) error {
	query, err := db.UpsertSQL(upsertPlaceConfig(db.DollarPlaceholder))
	if err != nil {
		return eris.Wrap(err, "postgres: build place upsert")
	}
	args, err := placeArgs(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return eris.Wrapf(err, "postgres: upsert place %s", p.ID)
}

func (s *PostgresStore) SlugOwner(ctx context.Context, slug string) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM coffee_places WHERE slug = $1`,
		slug,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, eris.Wrapf(err, "postgres: slug owner %s", slug)
	}
	return id, true, nil
}

func (s *PostgresStore) UpdateAISummary(ctx context.Context, id string, summary []byte, rating string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE coffee_places SET ai_summary = $1, ai_rating = $2, last_updated = $3 WHERE id = $4`,
		summary, rating, at.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update ai summary %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) LogPhoto(ctx context.Context, entry model.PhotoLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO place_photos (id, place_id, storage_path, public_url, display_order, width, height, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.PlaceID, entry.StoragePath, entry.PublicURL,
		entry.DisplayOrder, entry.Width, entry.Height, entry.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: log photo %s", entry.StoragePath)
}
