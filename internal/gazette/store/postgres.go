package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gazette/internal/gazette/models"
	id "gazette/pkg/domain"
	"gazette/pkg/platform/sentinel"
	"gazette/pkg/platform/tx"
	"gazette/pkg/requestcontext"
)

// Schema is the table layout this store expects. Migrations are run by the
// surrounding deployment, not by the engine; tests apply this directly.
const Schema = `
CREATE TABLE IF NOT EXISTS gazette_records (
    id                 UUID PRIMARY KEY,
    linkage_key        TEXT NOT NULL,
    name_role          TEXT NOT NULL,
    name_value         TEXT NOT NULL,
    issue_number       TEXT NOT NULL,
    issue_date         TIMESTAMPTZ,
    issue_page         INTEGER,
    item_number        TEXT NOT NULL,
    source_item_number TEXT NOT NULL DEFAULT '',
    notice_type        TEXT NOT NULL,
    source_document    TEXT NOT NULL,
    linked_person_id   UUID,
    verification_state TEXT NOT NULL DEFAULT 'unverified',
    verification_note  TEXT NOT NULL DEFAULT '',
    verified_at        TIMESTAMPTZ,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS gazette_records_master_key
    ON gazette_records (linkage_key) WHERE name_role = 'master';
CREATE INDEX IF NOT EXISTS gazette_records_issue_idx
    ON gazette_records (issue_number, notice_type);
CREATE INDEX IF NOT EXISTS gazette_records_item_idx
    ON gazette_records (issue_number, item_number);
CREATE INDEX IF NOT EXISTS gazette_records_family_idx
    ON gazette_records (linkage_key);
`

const recordColumns = `id, linkage_key, name_role, name_value, issue_number, issue_date,
	issue_page, item_number, source_item_number, notice_type, source_document,
	linked_person_id, verification_state, verification_note, verified_at,
	created_at, updated_at`

// Postgres persists gazette records in PostgreSQL via database/sql.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the context transaction when the service opened one, the pool
// otherwise.
func (s *Postgres) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// CreateFamily writes every member row in one transaction. The partial
// unique index on master rows turns a linkage-key collision into a 23505,
// surfaced as sentinel.ErrAlreadyUsed.
func (s *Postgres) CreateFamily(ctx context.Context, family *models.IdentityFamily) error {
	if err := family.Validate(); err != nil {
		return err
	}

	run := func(q querier) error {
		for _, r := range family.All() {
			if err := insertRecord(ctx, q, r); err != nil {
				return err
			}
		}
		return nil
	}

	if t, ok := tx.From(ctx); ok {
		return translateUnique(run(t))
	}

	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin family write: %w", err)
	}
	if err := run(t); err != nil {
		_ = t.Rollback()
		return translateUnique(err)
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit family write: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, q querier, r *models.GazetteRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO gazette_records (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		uuid.UUID(r.ID), string(r.LinkageKey), string(r.NameRole), r.NameValue,
		r.IssueNumber, nullTime(r.IssueDate), nullInt(r.IssuePage),
		r.ItemNumber, r.SourceItemNumber, string(r.NoticeType), r.SourceDocument,
		nullPersonID(r.LinkedPersonID), string(r.VerificationState),
		r.VerificationNote, nullTime(r.VerifiedAt), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert gazette record: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, recordID id.RecordID) (*models.GazetteRecord, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM gazette_records WHERE id = $1`, uuid.UUID(recordID))
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find gazette record: %w", err)
	}
	return r, nil
}

func (s *Postgres) FindFamily(ctx context.Context, key id.LinkageKey) ([]*models.GazetteRecord, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+recordColumns+` FROM gazette_records
		WHERE linkage_key = $1
		ORDER BY name_role != 'master', created_at`, string(key))
	if err != nil {
		return nil, fmt.Errorf("find family: %w", err)
	}
	defer rows.Close()

	out, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Postgres) List(ctx context.Context, f Filter) ([]*models.GazetteRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM gazette_records WHERE 1=1`
	args := make([]any, 0, 4)
	add := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(clause, len(args))
	}
	if f.IssueNumber != "" {
		add(" AND issue_number = $%d", f.IssueNumber)
	}
	if f.NoticeType != "" {
		add(" AND notice_type = $%d", string(f.NoticeType))
	}
	if f.ItemNumber != "" {
		add(" AND item_number = $%d", f.ItemNumber)
	}
	if f.LinkedPersonID != nil {
		add(" AND linked_person_id = $%d", uuid.UUID(*f.LinkedPersonID))
	}
	query += " ORDER BY created_at"

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gazette records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Postgres) UpdateFamilyShared(ctx context.Context, key id.LinkageKey, shared models.SharedAttributes) error {
	now := requestcontext.Now(ctx)

	run := func(q querier) error {
		res, err := q.ExecContext(ctx, `
			UPDATE gazette_records SET
				issue_number    = CASE WHEN $2 <> '' THEN $2 ELSE issue_number END,
				source_document = CASE WHEN $3 <> '' THEN $3 ELSE source_document END,
				name_value      = CASE WHEN $4 <> '' AND name_role = 'master' THEN $4 ELSE name_value END,
				updated_at      = $5
			WHERE linkage_key = $1`,
			string(key), shared.IssueNumber, shared.SourceDocument, shared.CurrentName, now)
		if err != nil {
			return fmt.Errorf("propagate shared attributes: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("propagate shared attributes: %w", err)
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		return nil
	}

	if t, ok := tx.From(ctx); ok {
		return run(t)
	}
	// A single UPDATE statement is atomic on its own; no explicit
	// transaction needed when the service did not open one.
	return run(s.db)
}

func (s *Postgres) Update(ctx context.Context, r *models.GazetteRecord) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE gazette_records SET
			name_value = $2, issue_number = $3, issue_date = $4, issue_page = $5,
			item_number = $6, source_item_number = $7, notice_type = $8,
			source_document = $9, linked_person_id = $10,
			verification_state = $11, verification_note = $12, verified_at = $13,
			updated_at = $14
		WHERE id = $1`,
		uuid.UUID(r.ID), r.NameValue, r.IssueNumber, nullTime(r.IssueDate),
		nullInt(r.IssuePage), r.ItemNumber, r.SourceItemNumber,
		string(r.NoticeType), r.SourceDocument, nullPersonID(r.LinkedPersonID),
		string(r.VerificationState), r.VerificationNote, nullTime(r.VerifiedAt),
		r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update gazette record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update gazette record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// translateUnique maps the Postgres unique violation onto the store
// sentinel for linkage-key collisions.
func translateUnique(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrAlreadyUsed
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.GazetteRecord, error) {
	var (
		r              models.GazetteRecord
		recID          uuid.UUID
		linkageKey     string
		nameRole       string
		noticeType     string
		state          string
		issueDate      sql.NullTime
		issuePage      sql.NullInt64
		linkedPersonID uuid.NullUUID
		verifiedAt     sql.NullTime
	)
	err := row.Scan(&recID, &linkageKey, &nameRole, &r.NameValue, &r.IssueNumber,
		&issueDate, &issuePage, &r.ItemNumber, &r.SourceItemNumber, &noticeType,
		&r.SourceDocument, &linkedPersonID, &state, &r.VerificationNote,
		&verifiedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.ID = id.RecordID(recID)
	r.LinkageKey = id.LinkageKey(linkageKey)
	r.NameRole = models.NameRole(nameRole)
	r.NoticeType = models.NoticeType(noticeType)
	r.VerificationState = models.VerificationState(state)
	if issueDate.Valid {
		t := issueDate.Time
		r.IssueDate = &t
	}
	if issuePage.Valid {
		p := int(issuePage.Int64)
		r.IssuePage = &p
	}
	if linkedPersonID.Valid {
		pid := id.PersonID(linkedPersonID.UUID)
		r.LinkedPersonID = &pid
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		r.VerifiedAt = &t
	}
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*models.GazetteRecord, error) {
	out := make([]*models.GazetteRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gazette record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gazette records: %w", err)
	}
	return out, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullPersonID(pid *id.PersonID) uuid.NullUUID {
	if pid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*pid), Valid: true}
}
