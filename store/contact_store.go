package store

import (
	"context"
	"database/sql"
	"fmt"

	"portfolio/api/models"
)

type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) CreateContact(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contacts (id, name, email, message, timestamp, ip_address, user_agent, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Message, c.Timestamp, c.IPAddress, c.UserAgent, c.Read)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// ListContacts returns contacts newest first.
func (s *ContactStore) ListContacts(ctx context.Context, skip, limit int, unreadOnly bool) ([]models.Contact, error) {
	query := `
		SELECT id, name, email, message, timestamp, ip_address, user_agent, read
		FROM contacts
		WHERE ($1 = FALSE OR read = FALSE)
		ORDER BY timestamp DESC
		OFFSET $2
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, unreadOnly, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &c.Timestamp, &c.IPAddress, &c.UserAgent, &c.Read); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

// MarkRead flags a contact as read and reports how many rows changed.
// Marking an already-read contact changes nothing.
func (s *ContactStore) MarkRead(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE contacts SET read = TRUE WHERE id = $1 AND read = FALSE`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to mark contact %s read: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
