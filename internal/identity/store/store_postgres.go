package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"usersearch/internal/identity/models"
	id "usersearch/pkg/domain"
)

//go:embed schema.sql
var schema string

// columns maps identity fields onto identities table columns.
var columns = map[models.Field]string{
	models.FieldUID:            "uid",
	models.FieldUsername:       "username",
	models.FieldUserslug:       "userslug",
	models.FieldFullname:       "fullname",
	models.FieldNickname:       "nickname",
	models.FieldPicture:        "picture",
	models.FieldStatus:         "status",
	models.FieldLastOnline:     "lastonline::text",
	models.FieldJoinDate:       "joindate::text",
	models.FieldPostCount:      "postcount::text",
	models.FieldReputation:     "reputation::text",
	models.FieldFlags:          "flags::text",
	models.FieldEmailConfirmed: "CASE WHEN email_confirmed THEN '1' ELSE '0' END",
}

// Postgres reads identities from the identities table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the identity tables if they are missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate identity schema: %w", err)
	}
	return nil
}

// Put upserts an identity row.
func (s *Postgres) Put(ctx context.Context, identity *models.Identity) error {
	if identity == nil || !identity.UID.Valid() {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (uid, username, userslug, fullname, nickname, picture, status,
			lastonline, joindate, postcount, reputation, flags, email_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (uid) DO UPDATE SET
			username = EXCLUDED.username, userslug = EXCLUDED.userslug,
			fullname = EXCLUDED.fullname, nickname = EXCLUDED.nickname,
			picture = EXCLUDED.picture, status = EXCLUDED.status,
			lastonline = EXCLUDED.lastonline, joindate = EXCLUDED.joindate,
			postcount = EXCLUDED.postcount, reputation = EXCLUDED.reputation,
			flags = EXCLUDED.flags, email_confirmed = EXCLUDED.email_confirmed`,
		identity.UID.String(), identity.Username, identity.Userslug, identity.Fullname,
		identity.Nickname, identity.Picture, identity.Status, identity.LastOnline,
		identity.JoinDate, identity.PostCount, identity.Reputation, identity.Flags,
		identity.EmailConfirmed,
	)
	if err != nil {
		return fmt.Errorf("put identity %s: %w", identity.UID, err)
	}
	return nil
}

// PutHandle maps a remote handle (user@host) to an actor id.
func (s *Postgres) PutHandle(ctx context.Context, handle string, uid id.UID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identity_handles (handle, uid) VALUES ($1, $2)
		ON CONFLICT (handle) DO UPDATE SET uid = EXCLUDED.uid`,
		strings.ToLower(handle), uid.String())
	if err != nil {
		return fmt.Errorf("put handle %s: %w", handle, err)
	}
	return nil
}

// Block records that uid blocks target at the given time (ms).
func (s *Postgres) Block(ctx context.Context, uid, target id.UID, at int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identity_blocks (uid, blocked_uid, blocked_at) VALUES ($1, $2, $3)
		ON CONFLICT (uid, blocked_uid) DO UPDATE SET blocked_at = EXCLUDED.blocked_at`,
		uid.String(), target.String(), at)
	if err != nil {
		return fmt.Errorf("block %s: %w", target, err)
	}
	return nil
}

func (s *Postgres) FullRecords(ctx context.Context, uids []id.UID) ([]*models.Identity, error) {
	partials, err := s.PartialRecords(ctx, uids, models.AllFields)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Identity, len(uids))
	for i, p := range partials {
		if p == nil {
			continue
		}
		fields := make(map[string]string, len(p.Fields))
		for f, v := range p.Fields {
			fields[string(f)] = v
		}
		out[i] = models.FromFields(p.UID, fields)
	}
	return out, nil
}

func (s *Postgres) PartialRecords(ctx context.Context, uids []id.UID, fields []models.Field) ([]*models.Partial, error) {
	out := make([]*models.Partial, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	selected := []models.Field{models.FieldUID}
	exprs := []string{columns[models.FieldUID]}
	for _, f := range fields {
		col, ok := columns[f]
		if !ok || f == models.FieldUID {
			continue
		}
		selected = append(selected, f)
		exprs = append(exprs, col)
	}

	// #nosec G202 -- column expressions come from the fixed columns table
	query := "SELECT " + strings.Join(exprs, ", ") + " FROM identities WHERE uid = ANY($1)"
	rows, err := s.db.QueryContext(ctx, query, pq.Array(id.UIDStrings(uids)))
	if err != nil {
		return nil, fmt.Errorf("read identities: %w", err)
	}
	defer rows.Close()

	found := make(map[id.UID]*models.Partial, len(uids))
	for rows.Next() {
		values := make([]string, len(selected))
		dest := make([]any, len(selected))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		p := &models.Partial{UID: id.UID(values[0]), Fields: make(map[models.Field]string, len(selected))}
		for i, f := range selected {
			p.Fields[f] = values[i]
		}
		found[p.UID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read identities: %w", err)
	}

	for i, uid := range uids {
		out[i] = found[uid]
	}
	return out, nil
}

// BlockedUIDs returns the ids uid has blocked, most recent first.
func (s *Postgres) BlockedUIDs(ctx context.Context, uid id.UID) ([]id.UID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT blocked_uid FROM identity_blocks WHERE uid = $1 ORDER BY blocked_at DESC`, uid.String())
	if err != nil {
		return nil, fmt.Errorf("read block list: %w", err)
	}
	defer rows.Close()

	var out []id.UID
	for rows.Next() {
		var blocked string
		if err := rows.Scan(&blocked); err != nil {
			return nil, fmt.Errorf("scan block list: %w", err)
		}
		out = append(out, id.UID(blocked))
	}
	return out, rows.Err()
}

func (s *Postgres) UIDBySlug(ctx context.Context, slug string) (id.UID, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return "", ErrNotFound
	}

	query := `SELECT uid FROM identities WHERE lower(userslug) = $1 LIMIT 1`
	if isHandle(key) {
		query = `SELECT uid FROM identity_handles WHERE handle = $1`
	}

	var uid string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup slug: %w", err)
	}
	return id.UID(uid), nil
}
