package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements identity persistence over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Errors are mapped to identity sentinel kinds where appropriate.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the identity store (default "gravity").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "gravity",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// CreateUser creates a new user and its credentials transactionally.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return CreateUserResult{}, err
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" {
		return CreateUserResult{}, pgInvalid(op, "name is required")
	}
	if email == "" {
		return CreateUserResult{}, pgInvalid(op, "email is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		return CreateUserResult{}, pgInvalid(op, "password is required")
	}
	role := in.Role
	if role == "" {
		role = RoleStudent
	}
	if !role.Valid() {
		return CreateUserResult{}, pgInvalid(op, "unknown role")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	emailNorm := NormalizeEmail(email)

	pwHash, err := HashPassword(in.Password)
	if err != nil {
		return CreateUserResult{}, pgInvalid(op, err.Error())
	}

	userID, err := NewULID(now)
	if err != nil {
		return CreateUserResult{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return CreateUserResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	users := pgIdent(s.schema, "users")
	creds := pgIdent(s.schema, "user_credentials")

	_, err = tx.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, name, email, email_norm, role, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6)`,
		userID,
		name,
		email,
		emailNorm,
		string(role),
		now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return CreateUserResult{}, ConflictError{Op: op, Field: field}
		}
		return CreateUserResult{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+creds+` (user_id, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		userID, pwHash, now,
	)
	if err != nil {
		// If FK fails here, it indicates programming/schema inconsistency.
		return CreateUserResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return CreateUserResult{}, err
	}

	out := User{
		ID:        userID,
		Name:      name,
		Email:     email,
		EmailNorm: emailNorm,
		Role:      role,
		CreatedAt: now,
	}

	return CreateUserResult{User: out}, nil
}

// GetUserAuthByEmail loads a user and its password hash by normalized email.
func (s *PostgresStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	if s == nil || s.pool == nil {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	emailNorm := NormalizeEmail(email)
	if emailNorm == "" {
		return UserAuth{}, pgInvalid(op, "email is required")
	}

	users := pgIdent(s.schema, "users")
	creds := pgIdent(s.schema, "user_credentials")

	var (
		out  UserAuth
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT u.id, u.name, u.email, u.email_norm, u.role, u.created_at, c.password_hash
		   FROM `+users+` u
		   JOIN `+creds+` c ON c.user_id = u.id
		  WHERE u.email_norm = $1`,
		emailNorm,
	).Scan(
		&out.User.ID,
		&out.User.Name,
		&out.User.Email,
		&out.User.EmailNorm,
		&role,
		&out.User.CreatedAt,
		&out.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
		}
		return UserAuth{}, err
	}
	out.User.Role = Role(role)

	return out, nil
}

// GetUserByID returns the user by id.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, pgInvalid(op, "missing user id")
	}

	users := pgIdent(s.schema, "users")

	var (
		out  User
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, email_norm, role, created_at
		   FROM `+users+`
		  WHERE id = $1`,
		id,
	).Scan(&out.ID, &out.Name, &out.Email, &out.EmailNorm, &role, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	out.Role = Role(role)

	return out, nil
}

// UpdateUser changes name and/or email; nil fields are left untouched.
func (s *PostgresStore) UpdateUser(ctx context.Context, in UpdateUserInput) (User, error) {
	const op = "identity.UpdateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		return User{}, pgInvalid(op, "missing user id")
	}

	var (
		name  *string
		email *string
	)
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return User{}, pgInvalid(op, "name must not be blank")
		}
		name = &v
	}
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		if v == "" {
			return User{}, pgInvalid(op, "email must not be blank")
		}
		email = &v
	}
	if name == nil && email == nil {
		return s.GetUserByID(ctx, id)
	}

	var emailNorm *string
	if email != nil {
		n := NormalizeEmail(*email)
		emailNorm = &n
	}

	users := pgIdent(s.schema, "users")

	var (
		out  User
		role string
	)
	err := s.pool.QueryRow(ctx,
		`UPDATE `+users+`
		    SET name       = COALESCE($2, name),
		        email      = COALESCE($3, email),
		        email_norm = COALESCE($4, email_norm)
		  WHERE id = $1
		RETURNING id, name, email, email_norm, role, created_at`,
		id, name, email, emailNorm,
	).Scan(&out.ID, &out.Name, &out.Email, &out.EmailNorm, &role, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}
	out.Role = Role(role)

	return out, nil
}

// DeleteUser removes the user row; credentials go with it via FK cascade.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	const op = "identity.DeleteUser"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return pgInvalid(op, "missing user id")
	}

	users := pgIdent(s.schema, "users")

	tag, err := s.pool.Exec(ctx, `DELETE FROM `+users+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

// pgInvalid standardizes invalid input errors.
func pgInvalid(op, msg string) error {
	return OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch c {
	case "uq_users_email_norm":
		return "email", true
	default:
		if strings.Contains(c, "email") {
			return "email", true
		}
		return "unique", true
	}
}
