package repository

import (
	"context"
	"database/sql"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// NotificationRepo is the append-only per-recipient message ledger.
// Entries are only ever created inside a state-transition unit of work;
// the read flag flips to true when the recipient views their feed and
// never resets.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Add appends one entry for the given recipient.
func (r *NotificationRepo) Add(ctx context.Context, rec model.Recipient, message string) error {
	var userID, shelterID sql.NullInt64
	if rec.UserID != 0 {
		userID = sql.NullInt64{Int64: int64(rec.UserID), Valid: true}
	} else {
		shelterID = sql.NullInt64{Int64: int64(rec.ShelterID), Valid: true}
	}
	_, err := q(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO notifications (message, user_id, shelter_id) VALUES (?,?,?)",
		message, userID, shelterID)
	return err
}

// ListFor returns the recipient's notifications newest first.
func (r *NotificationRepo) ListFor(ctx context.Context, rec model.Recipient) ([]model.Notification, error) {
	where, id := recipientFilter(rec)
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		`SELECT id, message, is_read, user_id, shelter_id, created_at
		 FROM notifications WHERE `+where+` ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var userID, shelterID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Message, &n.Read, &userID, &shelterID, &n.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := uint64(userID.Int64)
			n.UserID = &v
		}
		if shelterID.Valid {
			v := uint64(shelterID.Int64)
			n.ShelterID = &v
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkAllRead flips every unread entry for the recipient to read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, rec model.Recipient) error {
	where, id := recipientFilter(rec)
	_, err := q(ctx, r.DB).ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE "+where+" AND is_read=0", id)
	return err
}

// CountUnread returns the recipient's unread count for dashboards.
func (r *NotificationRepo) CountUnread(ctx context.Context, rec model.Recipient) (int, error) {
	where, id := recipientFilter(rec)
	var n int
	err := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE "+where+" AND is_read=0", id).Scan(&n)
	return n, err
}

func recipientFilter(rec model.Recipient) (string, uint64) {
	if rec.UserID != 0 {
		return "user_id=?", rec.UserID
	}
	return "shelter_id=?", rec.ShelterID
}
