package storage

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// timeLayout has fixed width so stored timestamps order as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Digest returns the hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsSorted reports whether path was recorded as sorted with this content
// digest under this configuration fingerprint.
func (db *DB) IsSorted(ctx context.Context, path, digest, fingerprint string) (bool, error) {
	var storedDigest, storedFingerprint string
	err := db.conn.QueryRowContext(ctx,
		"SELECT digest, fingerprint FROM sorted_files WHERE path = ?", path,
	).Scan(&storedDigest, &storedFingerprint)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query sorted_files: %w", err)
	}

	return storedDigest == digest && storedFingerprint == fingerprint, nil
}

// MarkSorted records path as sorted, replacing any previous record.
func (db *DB) MarkSorted(ctx context.Context, path, digest, fingerprint string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sorted_files (path, digest, fingerprint, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			digest = excluded.digest,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at
	`, path, digest, fingerprint, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to record sorted file: %w", err)
	}
	return nil
}

// Forget drops the record for path, if any.
func (db *DB) Forget(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM sorted_files WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to forget sorted file: %w", err)
	}
	return nil
}

// Prune drops records not updated since before and returns how many went.
func (db *DB) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM sorted_files WHERE updated_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sorted files: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		db.logger.Debug("Pruned cache", "removed", n)
	}
	return n, nil
}

// Count returns the number of recorded files.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sorted_files").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
