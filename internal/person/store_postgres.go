package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "gazette/pkg/domain"
	"gazette/pkg/platform/sentinel"
)

// Postgres reads person records from the registry's table. The table is
// owned and migrated by the person registry; only the columns read here
// are part of this engine's contract.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByID(ctx context.Context, personID id.PersonID) (*Person, error) {
	var p Person
	var pid uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, created_at FROM persons WHERE id = $1`,
		uuid.UUID(personID)).Scan(&pid, &p.FullName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}
	p.ID = id.PersonID(pid)
	return &p, nil
}

func (s *Postgres) NamesByIDs(ctx context.Context, ids []id.PersonID) (map[id.PersonID]string, error) {
	if len(ids) == 0 {
		return map[id.PersonID]string{}, nil
	}

	raw := make([]uuid.UUID, len(ids))
	for i, pid := range ids {
		raw[i] = uuid.UUID(pid)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name FROM persons WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("resolve person names: %w", err)
	}
	defer rows.Close()

	out := make(map[id.PersonID]string, len(ids))
	for rows.Next() {
		var pid uuid.UUID
		var name string
		if err := rows.Scan(&pid, &name); err != nil {
			return nil, fmt.Errorf("scan person name: %w", err)
		}
		out[id.PersonID(pid)] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person names: %w", err)
	}
	return out, nil
}
