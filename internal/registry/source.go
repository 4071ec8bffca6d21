package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/todmy/doc-reconciler/pkg/models"
)

// Source supplies the batch snapshot of detected conflicts that seeds a
// review session. The detection engine itself is an external collaborator;
// a source only reads its output.
type Source interface {
	Load(ctx context.Context) ([]models.Conflict, error)
}

// FixtureSource reads conflicts from a JSON file, the mock-loader path
// used in development and demos.
type FixtureSource struct {
	Path string
}

// NewFixtureSource creates a fixture source for the given file path
func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{Path: path}
}

// Load reads and decodes the fixture file. Conflicts and mentions missing
// an id get one minted so fixtures can stay terse.
func (s *FixtureSource) Load(ctx context.Context) ([]models.Conflict, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var conflicts []models.Conflict
	if err := json.Unmarshal(data, &conflicts); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	for i := range conflicts {
		if conflicts[i].ID == "" {
			conflicts[i].ID = uuid.New().String()
		}
		if conflicts[i].DetectedAt.IsZero() {
			conflicts[i].DetectedAt = time.Now()
		}
		for j := range conflicts[i].Mentions {
			if conflicts[i].Mentions[j].ID == "" {
				conflicts[i].Mentions[j].ID = uuid.New().String()
			}
		}
	}
	return conflicts, nil
}
