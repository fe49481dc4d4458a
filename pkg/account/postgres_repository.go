package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresRepository creates a new PostgreSQL account repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

const accountColumns = `id, username, email, password_hash, is_verified,
	verify_token, verify_token_expiry, reset_token, reset_token_expiry, created_at, updated_at`

const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, a Account) (Account, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	a.Email = NormalizeEmail(a.Email)

	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+accountColumns,
		a.ID, a.Username, a.Email, a.PasswordHash, a.IsVerified,
		a.VerifyToken, a.VerifyTokenExpiry, a.ResetToken, a.ResetTokenExpiry, a.CreatedAt,
	)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return Account{}, ErrEmailTaken
		}
		return Account{}, mapPgError(err)
	}
	return created, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return r.one(row)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, NormalizeEmail(email))
	return r.one(row)
}

func (r *PostgresRepository) FindByVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE verify_token = $1 AND verify_token_expiry > $2`,
		token, now.UTC())
	return r.one(row)
}

func (r *PostgresRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE reset_token = $1 AND reset_token_expiry > $2`,
		token, now.UTC())
	return r.one(row)
}

// Update applies every field of u in a single statement.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, u AccountUpdate) (Account, error) {
	setVerify, verifyToken, verifyExpiry := tokenColumns(u.VerifyToken, u.ClearVerifyToken)
	setReset, resetToken, resetExpiry := tokenColumns(u.ResetToken, u.ClearResetToken)

	row := r.db.QueryRow(ctx, `
		UPDATE accounts SET
			username = COALESCE($2::text, username),
			password_hash = COALESCE($3::text, password_hash),
			is_verified = is_verified OR $4::boolean,
			verify_token = CASE WHEN $5::boolean THEN $6::text ELSE verify_token END,
			verify_token_expiry = CASE WHEN $5::boolean THEN $7::timestamptz ELSE verify_token_expiry END,
			reset_token = CASE WHEN $8::boolean THEN $9::text ELSE reset_token END,
			reset_token_expiry = CASE WHEN $8::boolean THEN $10::timestamptz ELSE reset_token_expiry END,
			updated_at = $11
		WHERE id = $1
		RETURNING `+accountColumns,
		id, u.Username, u.PasswordHash, u.MarkVerified,
		setVerify, verifyToken, verifyExpiry,
		setReset, resetToken, resetExpiry,
		r.now().UTC(),
	)
	return r.one(row)
}

func (r *PostgresRepository) ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE accounts SET
			is_verified = TRUE,
			verify_token = NULL,
			verify_token_expiry = NULL,
			updated_at = $2
		WHERE verify_token = $1 AND verify_token_expiry > $2
		RETURNING `+accountColumns,
		token, now.UTC())
	return r.one(row)
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE accounts SET
			password_hash = $2,
			reset_token = NULL,
			reset_token_expiry = NULL,
			updated_at = $3
		WHERE reset_token = $1 AND reset_token_expiry > $3
		RETURNING `+accountColumns,
		token, passwordHash, now.UTC())
	return r.one(row)
}

func (r *PostgresRepository) one(row pgx.Row) (Account, error) {
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, mapPgError(err)
	}
	return a, nil
}

func tokenColumns(set *TokenUpdate, clear bool) (bool, *string, *time.Time) {
	if set != nil {
		tok, exp := set.Token, set.ExpiresAt.UTC()
		return true, &tok, &exp
	}
	return clear, nil, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsVerified,
		&a.VerifyToken, &a.VerifyTokenExpiry, &a.ResetToken, &a.ResetTokenExpiry,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Account{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	return idmerrors.StoreUnavailable(err)
}
