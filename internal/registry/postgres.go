package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/todmy/doc-reconciler/pkg/models"
)

// PostgresSource reads the detection engine's output tables. It is
// read-only: workspace state is never written back, only the in-memory
// registry changes during a session.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource creates a source over the given database handle
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load reads all conflicts with their mentions, ordered by detection time
// so registry order matches the engine's output order.
func (s *PostgresSource) Load(ctx context.Context) ([]models.Conflict, error) {
	conflicts, order, err := s.loadConflicts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadMentions(ctx, conflicts); err != nil {
		return nil, err
	}

	out := make([]models.Conflict, 0, len(order))
	for _, id := range order {
		out = append(out, *conflicts[id])
	}
	return out, nil
}

func (s *PostgresSource) loadConflicts(ctx context.Context) (map[string]*models.Conflict, []string, error) {
	query := `
		SELECT id, type, title, description, recommendation, detected_at
		FROM conflicts
		ORDER BY detected_at, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query conflicts: %w", err)
	}
	defer rows.Close()

	conflicts := make(map[string]*models.Conflict)
	var order []string
	for rows.Next() {
		var c models.Conflict
		var recommendation sql.NullString
		if err := rows.Scan(&c.ID, &c.Type, &c.Title, &c.Description, &recommendation, &c.DetectedAt); err != nil {
			return nil, nil, fmt.Errorf("scan conflict: %w", err)
		}
		c.Recommendation = recommendation.String
		c.Status = models.StatusOpen
		conflicts[c.ID] = &c
		order = append(order, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate conflicts: %w", err)
	}
	return conflicts, order, nil
}

func (s *PostgresSource) loadMentions(ctx context.Context, conflicts map[string]*models.Conflict) error {
	query := `
		SELECT id, conflict_id, document_id, document_name, page, section, text, date, source_type
		FROM mentions
		ORDER BY conflict_id, position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Mention
		var conflictID string
		var date, sourceType sql.NullString
		if err := rows.Scan(&m.ID, &conflictID, &m.DocumentID, &m.DocumentName, &m.Page, &m.Section, &m.Text, &date, &sourceType); err != nil {
			return fmt.Errorf("scan mention: %w", err)
		}
		m.Date = date.String
		m.SourceType = sourceType.String
		if c := conflicts[conflictID]; c != nil {
			c.Mentions = append(c.Mentions, m)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate mentions: %w", err)
	}
	return nil
}
