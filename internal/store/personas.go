package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MikeSquared-Agency/colive/internal/persona"
)

// Lookup reads persona records from the personas table. The profile column
// holds the same JSON object as one entry of avatars.json.
func (s *Store) Lookup(ctx context.Context, names []string) (map[string]persona.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, profile
		FROM personas
		WHERE name = ANY($1)`,
		names,
	)
	if err != nil {
		return nil, fmt.Errorf("query personas: %w", err)
	}
	defer rows.Close()

	found := make(map[string]persona.Record, len(names))
	for rows.Next() {
		var name string
		var profile []byte
		if err := rows.Scan(&name, &profile); err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		var rec persona.Record
		if err := json.Unmarshal(profile, &rec); err != nil {
			return nil, fmt.Errorf("decode persona %s: %w", name, err)
		}
		if rec.Name == "" {
			rec.Name = name
		}
		found[name] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate personas: %w", err)
	}

	var missing []string
	for _, name := range names {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &persona.MissingPersonaError{Names: missing}
	}
	return found, nil
}

var _ persona.Store = (*Store)(nil)
