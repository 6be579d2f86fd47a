package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, filePath string) (*SQLite, error) {
	// foreign keys must be on for category deletes to cascade into
	// files and post messages on every pooled connection
	db, err := sql.Open("sqlite3", "file:"+filePath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database: %w", err)
	}

	client := &SQLite{
		db: db,
	}

	err = client.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing sqlite3 database: %w", err)
	}

	return client, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

// --- categories ---

func (c *SQLite) CreateCategory(ctx context.Context, name string, createdBy int64) (string, error) {
	categoryID := uuid.NewString()[:8]

	_, err := c.db.ExecContext(
		ctx,
		"INSERT INTO categories (id, name, created_by) VALUES (?, ?, ?)",
		categoryID, name, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("category %q: %w", name, e.ErrDuplicate)
		}

		return "", fmt.Errorf("inserting category: %w", err)
	}

	return categoryID, nil
}

func (c *SQLite) GetCategory(ctx context.Context, categoryID string) (*e.Category, error) {
	var cat e.Category
	var createdAt string

	err := c.db.QueryRowContext(
		ctx,
		"SELECT id, name, created_by, created_at FROM categories WHERE id = ?",
		categoryID,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedBy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", categoryID, e.ErrNotFound)
		}

		return nil, fmt.Errorf("selecting category: %w", err)
	}

	cat.CreatedAt, _ = time.Parse(time.DateTime, createdAt)

	return &cat, nil
}

func (c *SQLite) ListCategories(ctx context.Context) ([]e.Category, error) {
	rows, err := c.db.QueryContext(
		ctx,
		"SELECT id, name, created_by FROM categories ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("selecting categories: %w", err)
	}
	defer rows.Close()

	var cats []e.Category
	for rows.Next() {
		var cat e.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, cat)
	}

	return cats, rows.Err()
}

func (c *SQLite) DeleteCategory(ctx context.Context, categoryID string) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", categoryID)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting affected rows: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("category %q: %w", categoryID, e.ErrNotFound)
	}

	return nil
}

// --- files ---

// AddFiles persists an upload batch in attachment order and returns how
// many rows were actually inserted. Duplicate file references are
// silently skipped, they do not fail the batch.
func (c *SQLite) AddFiles(ctx context.Context, categoryID string, files []e.FileRecord) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, f := range files {
		result, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO files (category_id, file_id, file_name, file_size, file_type, caption)
				VALUES (?, ?, ?, ?, ?, ?)`,
			categoryID, f.FileID, f.Name, f.Size, string(f.Kind), f.Caption,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting file %q: %w", f.FileID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("getting affected rows: %w", err)
		}

		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return inserted, nil
}

// ListFiles returns a category's files in insertion order.
func (c *SQLite) ListFiles(ctx context.Context, categoryID string) ([]e.FileRecord, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT category_id, file_id, file_name, file_size, file_type, caption
			FROM files WHERE category_id = ? ORDER BY id`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting files: %w", err)
	}
	defer rows.Close()

	var files []e.FileRecord
	for rows.Next() {
		var f e.FileRecord
		var kind string
		if err := rows.Scan(&f.CategoryID, &f.FileID, &f.Name, &f.Size, &kind, &f.Caption); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		f.Kind = e.FileKind(kind)
		files = append(files, f)
	}

	return files, rows.Err()
}

func (c *SQLite) CountFiles(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := c.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM files WHERE category_id = ?",
		categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting files: %w", err)
	}

	return count, nil
}

// --- channels ---

func (c *SQLite) AddChannel(ctx context.Context, ch e.Channel) error {
	_, err := c.db.ExecContext(
		ctx,
		"INSERT INTO channels (channel_id, channel_name, invite_link) VALUES (?, ?, ?)",
		ch.ChannelID, ch.Name, ch.InviteLink,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("channel %q: %w", ch.ChannelID, e.ErrDuplicate)
		}

		return fmt.Errorf("inserting channel: %w", err)
	}

	return nil
}

func (c *SQLite) ListChannels(ctx context.Context) ([]e.Channel, error) {
	rows, err := c.db.QueryContext(
		ctx,
		"SELECT channel_id, channel_name, invite_link FROM channels ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("selecting channels: %w", err)
	}
	defer rows.Close()

	var channels []e.Channel
	for rows.Next() {
		var ch e.Channel
		if err := rows.Scan(&ch.ChannelID, &ch.Name, &ch.InviteLink); err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}

	return channels, rows.Err()
}

func (c *SQLite) DeleteChannel(ctx context.Context, channelID string) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM channels WHERE channel_id = ?", channelID)
	if err != nil {
		return fmt.Errorf("deleting channel: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting affected rows: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("channel %q: %w", channelID, e.ErrNotFound)
	}

	return nil
}

// --- auto-delete timer ---

func (c *SQLite) SetTimer(ctx context.Context, t e.TimerSetting) error {
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO auto_delete_settings (id, is_active, delete_after_seconds, post_delete_message)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE
			    SET is_active = excluded.is_active,
			        delete_after_seconds = excluded.delete_after_seconds,
			        post_delete_message = excluded.post_delete_message`,
		t.IsActive, int(t.DeleteAfter.Seconds()), t.PostDeleteText,
	)
	if err != nil {
		return fmt.Errorf("upserting timer setting: %w", err)
	}

	return nil
}

func (c *SQLite) GetTimer(ctx context.Context) (e.TimerSetting, error) {
	var t e.TimerSetting
	var seconds int

	err := c.db.QueryRowContext(
		ctx,
		"SELECT is_active, delete_after_seconds, post_delete_message FROM auto_delete_settings WHERE id = 1",
	).Scan(&t.IsActive, &seconds, &t.PostDeleteText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e.TimerSetting{}, nil
		}

		return e.TimerSetting{}, fmt.Errorf("selecting timer setting: %w", err)
	}

	t.DeleteAfter = time.Duration(seconds) * time.Second

	return t, nil
}

// --- post messages ---

func (c *SQLite) SetPostMessage(ctx context.Context, pm e.PostMessage) error {
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO post_messages (category_id, kind, content, caption, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(category_id) DO UPDATE
			    SET kind = excluded.kind,
			        content = excluded.content,
			        caption = excluded.caption,
			        updated_at = CURRENT_TIMESTAMP`,
		pm.CategoryID, string(pm.Kind), pm.Content, pm.Caption,
	)
	if err != nil {
		return fmt.Errorf("upserting post message: %w", err)
	}

	return nil
}

func (c *SQLite) GetPostMessage(ctx context.Context, categoryID string) (*e.PostMessage, error) {
	var pm e.PostMessage
	var kind string

	err := c.db.QueryRowContext(
		ctx,
		"SELECT category_id, kind, content, caption FROM post_messages WHERE category_id = ?",
		categoryID,
	).Scan(&pm.CategoryID, &kind, &pm.Content, &pm.Caption)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post message for %q: %w", categoryID, e.ErrNotFound)
		}

		return nil, fmt.Errorf("selecting post message: %w", err)
	}

	pm.Kind = e.PostKind(kind)

	return &pm, nil
}

func (c *SQLite) DeletePostMessage(ctx context.Context, categoryID string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM post_messages WHERE category_id = ?", categoryID)
	if err != nil {
		return fmt.Errorf("deleting post message: %w", err)
	}

	return nil
}

// --- admins ---

// UpsertAdmin inserts an admin or refreshes an existing row. The super
// flag can only be raised this way, never lowered, so seeding on every
// startup cannot demote anyone and a plain promote cannot strip super.
func (c *SQLite) UpsertAdmin(ctx context.Context, a e.AdminUser) error {
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO admins (user_id, is_super, added_by)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE
			    SET is_super = admins.is_super OR excluded.is_super`,
		a.UserID, a.IsSuper, a.AddedBy,
	)
	if err != nil {
		return fmt.Errorf("upserting admin: %w", err)
	}

	return nil
}

func (c *SQLite) GetAdmin(ctx context.Context, userID int64) (*e.AdminUser, error) {
	var a e.AdminUser
	var addedBy sql.NullInt64

	err := c.db.QueryRowContext(
		ctx,
		"SELECT user_id, is_super, added_by FROM admins WHERE user_id = ?",
		userID,
	).Scan(&a.UserID, &a.IsSuper, &addedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %d: %w", userID, e.ErrNotFound)
		}

		return nil, fmt.Errorf("selecting admin: %w", err)
	}

	a.AddedBy = addedBy.Int64

	return &a, nil
}

// DeleteAdmin removes a non-super admin. Super admins are silently left
// in place.
func (c *SQLite) DeleteAdmin(ctx context.Context, userID int64) error {
	_, err := c.db.ExecContext(
		ctx,
		"DELETE FROM admins WHERE user_id = ? AND is_super = 0",
		userID,
	)
	if err != nil {
		return fmt.Errorf("deleting admin: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

//go:embed init.sql
var initQuery string

func (c *SQLite) init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, initQuery)
	return err
}
