package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, username, email, password_hash, rol_id, activo, eliminado, totp_habilitado, created_at`

func (s *PGStore) FindActiveUser(ctx context.Context, identifier string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from usuarios
		 where (username = $1 or email = $1) and activo and not eliminado`, identifier)
	return scanUser(row)
}

func (s *PGStore) FindUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from usuarios where id = $1`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.Active, &u.Deleted, &u.TOTPEnabled, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) RolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select p.nombre from permisos p
		 join rol_permisos rp on rp.permiso_id = p.id
		 where rp.rol_id = $1 and p.activo
		 order by p.nombre`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PGStore) UserBranches(ctx context.Context, userID int64) ([]Branch, error) {
	rows, err := s.db.QueryContext(ctx,
		`select b.id, b.nombre, coalesce(b.codigo, '') from sucursales b
		 join usuario_sucursal ub on ub.sucursal_id = b.id
		 where ub.usuario_id = $1
		 order by b.nombre`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Code); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *PGStore) FailedAttempts(ctx context.Context, userID int64, window time.Duration) (int, time.Time, error) {
	cutoff := time.Now().UTC().Add(-window)
	row := s.db.QueryRowContext(ctx,
		`select count(*), coalesce(max(created_at), to_timestamp(0))
		 from intentos_acceso
		 where usuario_id = $1 and resultado = $2 and created_at > $3`,
		userID, OutcomeFailure, cutoff)
	var (
		count int
		last  time.Time
	)
	if err := row.Scan(&count, &last); err != nil {
		return 0, time.Time{}, err
	}
	return count, last, nil
}

func (s *PGStore) RecordAttempt(ctx context.Context, attempt *AccessAttempt) error {
	if attempt.ID == "" {
		attempt.ID = ids.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(attempt.Metadata)
	if err != nil {
		return fmt.Errorf("marshal attempt metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`insert into intentos_acceso(id, usuario_id, resultado, ip_origen, metadata, created_at)
		 values($1,$2,$3,$4,$5,$6)`,
		attempt.ID, attempt.UserID, attempt.Outcome, attempt.OriginIP, meta, attempt.CreatedAt,
	)
	return err
}
