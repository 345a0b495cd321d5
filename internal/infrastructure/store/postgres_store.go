package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cart_lines (
	user_id    TEXT NOT NULL,
	list       TEXT NOT NULL,
	key        TEXT NOT NULL,
	data       JSONB NOT NULL,
	added_at   TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, list, key)
);
CREATE TABLE IF NOT EXISTS cart_recently_viewed (
	user_id     TEXT PRIMARY KEY,
	product_ids JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS cart_promos (
	user_id    TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	discount   INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`

// ConnectPostgres opens a pooled connection and verifies it.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// PostgresCartStore implements CartStore on PostgreSQL.
type PostgresCartStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db, now: time.Now}
}

// Migrate creates the cart tables if they are missing.
func (s *PostgresCartStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, postgresSchema)
	return errors.Wrap(err, "migrate cart tables")
}

func (s *PostgresCartStore) GetItems(ctx context.Context, userID string, list List) ([]LineItem, error) {
	if !list.Valid() {
		return nil, ErrUnknownList
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM cart_lines
		WHERE user_id = $1 AND list = $2
		ORDER BY added_at, key
	`, userID, string(list))
	if err != nil {
		return nil, errors.Wrapf(err, "query %s items", list)
	}
	defer rows.Close()

	items := []LineItem{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		var item LineItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, errors.Wrap(err, "decode cart line")
		}
		items = append(items, item)
	}
	return items, errors.Wrap(rows.Err(), "iterate cart lines")
}

func (s *PostgresCartStore) PutItem(ctx context.Context, userID string, list List, item LineItem) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	return errors.Wrap(putItem(ctx, s.db, userID, list, item, s.now()), "put cart line")
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putItem(ctx context.Context, db execer, userID string, list List, item LineItem, now time.Time) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO cart_lines (user_id, list, key, data, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, list, key) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, userID, string(list), item.Key, data, item.AddedAt, now)
	return err
}

func (s *PostgresCartStore) DeleteItem(ctx context.Context, userID string, list List, key string) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = $1 AND list = $2 AND key = $3
	`, userID, string(list), key)
	return errors.Wrap(err, "delete cart line")
}

func (s *PostgresCartStore) ClearCart(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin clear")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = $1 AND list = $2
	`, userID, string(ListCart)); err != nil {
		return errors.Wrap(err, "clear: delete cart lines")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_promos WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "clear: delete applied promo")
	}
	return errors.Wrap(tx.Commit(), "commit clear")
}

func (s *PostgresCartStore) MoveItem(ctx context.Context, userID string, from, to List, item LineItem) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownList
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin move")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = $1 AND list = $2 AND key = $3
	`, userID, string(from), item.Key); err != nil {
		return errors.Wrap(err, "move: delete source line")
	}
	if err := putItem(ctx, tx, userID, to, item, s.now()); err != nil {
		return errors.Wrap(err, "move: insert target line")
	}
	return errors.Wrap(tx.Commit(), "commit move")
}

func (s *PostgresCartStore) GetRecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT product_ids FROM cart_recently_viewed WHERE user_id = $1
	`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query recently viewed")
	}
	ids := []string{}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, errors.Wrap(err, "decode recently viewed")
	}
	return ids, nil
}

func (s *PostgresCartStore) SetRecentlyViewed(ctx context.Context, userID string, productIDs []string) error {
	data, err := json.Marshal(productIDs)
	if err != nil {
		return errors.Wrap(err, "encode recently viewed")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cart_recently_viewed (user_id, product_ids, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			product_ids = EXCLUDED.product_ids,
			updated_at = EXCLUDED.updated_at
	`, userID, data, s.now())
	return errors.Wrap(err, "set recently viewed")
}

func (s *PostgresCartStore) GetAppliedPromo(ctx context.Context, userID string) (*AppliedPromo, error) {
	var p AppliedPromo
	err := s.db.QueryRowContext(ctx, `
		SELECT code, discount FROM cart_promos WHERE user_id = $1
	`, userID).Scan(&p.Code, &p.Discount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query applied promo")
	}
	return &p, nil
}

func (s *PostgresCartStore) SetAppliedPromo(ctx context.Context, userID string, promo *AppliedPromo) error {
	if promo == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM cart_promos WHERE user_id = $1`, userID)
		return errors.Wrap(err, "clear applied promo")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_promos (user_id, code, discount, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			code = EXCLUDED.code,
			discount = EXCLUDED.discount,
			updated_at = EXCLUDED.updated_at
	`, userID, promo.Code, promo.Discount, s.now())
	return errors.Wrap(err, "set applied promo")
}

func (s *PostgresCartStore) Close() error {
	return s.db.Close()
}
