package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeStill/aligner/pkg/repository"
)

// System defines account management, login, and token authentication.
type System interface {
	Handler() *Handler

	Register(ctx context.Context, cmd RegisterCommand, caller *User) (*User, error)
	Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*User, error)

	Find(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id int64) error
	SetRole(ctx context.Context, id int64, role Role) (*User, error)
	SetActive(ctx context.Context, id int64, active bool) (*User, error)

	Bootstrap(ctx context.Context, email, password string) error
}

const userColumns = "id, username, email, role, is_active, created_at"

type repo struct {
	db         *sql.DB
	tokens     *Tokens
	bcryptCost int
	logger     *slog.Logger
}

// New creates an auth repository implementing System.
func New(db *sql.DB, tokens *Tokens, bcryptCost int, logger *slog.Logger) System {
	return &repo{
		db:         db,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger.With("system", "auth"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand, caller *User) (*User, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.TrimSpace(cmd.Email)
	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		return nil, ErrMissingFields
	}

	role := RoleAnalyst
	if caller.IsAdmin() && cmd.Role != "" {
		if !cmd.Role.Valid() {
			return nil, ErrInvalidRole
		}
		role = cmd.Role
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), r.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	q := `INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := repository.QueryOne(ctx, r.db, q, []any{cmd.Username, cmd.Email, string(hash), string(role)}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user registered", "id", u.ID, "username", u.Username, "role", u.Role)
	return &u, nil
}

func (r *repo) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if strings.TrimSpace(cmd.Username) == "" || cmd.Password == "" {
		return nil, ErrMissingCredentials
	}

	q := `SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE username = $1 OR email = $1
		ORDER BY id
		LIMIT 1`

	var (
		u    User
		hash string
	)
	err := r.db.QueryRowContext(ctx, q, strings.TrimSpace(cmd.Username)).Scan(
		&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &hash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(cmd.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactive
	}

	token, expires, err := r.tokens.Issue(u)
	if err != nil {
		return nil, err
	}

	r.logger.Info("user logged in", "id", u.ID, "username", u.Username)
	return &LoginResult{Token: token, ExpiresAt: expires, User: u}, nil
}

func (r *repo) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := r.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	u, err := r.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d no longer exists", ErrInvalidToken, id)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrInactive)
	}
	return u, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) List(ctx context.Context) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	users, err := repository.QueryMany(ctx, r.db, q, nil, scanUser)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	if id == ProtectedUserID {
		return ErrProtectedUser
	}

	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM users WHERE id = $1", id)
	if repository.IsForeignKeyViolation(err) {
		return ErrUserInUse
	}
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user deleted", "id", id)
	return nil
}

func (r *repo) SetRole(ctx context.Context, id int64, role Role) (*User, error) {
	if id == ProtectedUserID {
		return nil, ErrProtectedUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	q := `UPDATE users SET role = $2 WHERE id = $1 RETURNING ` + userColumns

	u, err := repository.QueryOne(ctx, r.db, q, []any{id, string(role)}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user role changed", "id", id, "role", role)
	return &u, nil
}

func (r *repo) SetActive(ctx context.Context, id int64, active bool) (*User, error) {
	if id == ProtectedUserID {
		return nil, ErrProtectedUser
	}

	q := `UPDATE users SET is_active = $2 WHERE id = $1 RETURNING ` + userColumns

	u, err := repository.QueryOne(ctx, r.db, q, []any{id, active}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user status changed", "id", id, "is_active", active)
	return &u, nil
}

// Bootstrap creates the protected admin when missing and restores its role
// and active flag otherwise. An existing admin keeps its password.
func (r *repo) Bootstrap(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		var inserted bool
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (id, username, email, password_hash, role, is_active)
			VALUES ($1, 'admin', $2, $3, 'admin', TRUE)
			ON CONFLICT (id) DO UPDATE SET role = 'admin', is_active = TRUE
			RETURNING (xmax = 0)`,
			ProtectedUserID, email, string(hash),
		).Scan(&inserted)
		if err != nil {
			return false, err
		}

		_, err = tx.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))`,
		)
		return inserted, err
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	if created {
		r.logger.Info("bootstrap admin created", "id", ProtectedUserID, "username", "admin", "email", email)
	}
	return nil
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}
