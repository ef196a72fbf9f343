package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtroode/account-client/internal/model"
)

// Ensure CookieRepository implements the model.CookieStore interface.
var _ model.CookieStore = (*CookieRepository)(nil)

// CookieRepository persists cookies in sqlite.
type CookieRepository struct {
	db *Connection
}

// NewCookieRepository creates new CookieRepository instance.
func NewCookieRepository(db *Connection) *CookieRepository {
	return &CookieRepository{db: db}
}

// Load returns every stored cookie.
func (r *CookieRepository) Load(ctx context.Context) ([]model.StoredCookie, error) {
	const query = `
        SELECT host, path, name, value, expires_at, secure, http_only
        FROM cookies
        ORDER BY host, path, name
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []model.StoredCookie
	for rows.Next() {
		var (
			c       model.StoredCookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Host, &c.Path, &c.Name, &c.Value, &expires, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires.Valid {
			t := expires.Time
			c.Expires = &t
		}
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookies: %w", err)
	}

	return cookies, nil
}

// Save inserts or replaces a cookie.
func (r *CookieRepository) Save(ctx context.Context, cookie model.StoredCookie) error {
	const query = `
        INSERT INTO cookies (host, path, name, value, expires_at, secure, http_only, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (host, path, name) DO UPDATE SET
            value = excluded.value,
            expires_at = excluded.expires_at,
            secure = excluded.secure,
            http_only = excluded.http_only,
            updated_at = CURRENT_TIMESTAMP
    `

	var expires sql.NullTime
	if cookie.Expires != nil {
		expires = sql.NullTime{Time: cookie.Expires.UTC(), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query,
		cookie.Host,
		cookie.Path,
		cookie.Name,
		cookie.Value,
		expires,
		cookie.Secure,
		cookie.HTTPOnly,
	); err != nil {
		return fmt.Errorf("failed to save cookie: %w", err)
	}
	return nil
}

// Delete removes a cookie. Missing rows are not an error.
func (r *CookieRepository) Delete(ctx context.Context, host, path, name string) error {
	const query = `
        DELETE FROM cookies
        WHERE host = ? AND path = ? AND name = ?
    `
	if _, err := r.db.ExecContext(ctx, query, host, path, name); err != nil {
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}
