package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/kgrierson/stronghold/internal/database"
	"github.com/kgrierson/stronghold/internal/models"
)

const accountColumns = `id, username, email, password_hash, access_level, is_active,
	failed_login_attempts, lockout_end, lockout_reason, security_stamp,
	last_login_at, created_at, updated_at, version`

type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner interface for scanning account rows (single row or rows iteration)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAccountRow handles nullable fields and populates an Account from a database row
func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var lockoutEnd, lastLoginAt *time.Time
	var lockoutReason, securityStamp *string

	err := scanner.Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.AccessLevel, &account.IsActive,
		&account.FailedLoginAttempts, &lockoutEnd, &lockoutReason, &securityStamp,
		&lastLoginAt, &account.CreatedAt, &account.UpdatedAt, &account.Version,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	account.LockoutEnd = lockoutEnd
	account.LockoutReason = lockoutReason
	account.SecurityStamp = securityStamp
	account.LastLoginAt = lastLoginAt

	return &account, nil
}

// GetByUsername finds an account by case-insensitive username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(username) = LOWER($1)`

	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, username))
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.AccessLevel == 0 {
		account.AccessLevel = models.AccessLevelBasic
	}

	query := `
		INSERT INTO accounts (username, email, password_hash, access_level, is_active,
			failed_login_attempts, lockout_end, lockout_reason, security_stamp,
			last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + accountColumns

	created, err := scanAccountRow(r.db.Pool.QueryRow(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.AccessLevel,
		account.IsActive, account.FailedLoginAttempts, account.LockoutEnd,
		account.LockoutReason, account.SecurityStamp, account.LastLoginAt,
		account.CreatedAt, account.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Save writes the account's mutable state back with a compare-and-swap on the
// version column. Two concurrent failed-attempt increments against the same
// account cannot both win: the loser gets ErrConflict instead of silently
// dropping an update.
func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()

	query := `
		UPDATE accounts
		SET email = $1, password_hash = $2, access_level = $3, is_active = $4,
			failed_login_attempts = $5, lockout_end = $6, lockout_reason = $7,
			security_stamp = $8, last_login_at = $9, updated_at = $10,
			version = version + 1
		WHERE id = $11 AND version = $12
	`

	result, err := r.db.Pool.Exec(ctx, query,
		account.Email, account.PasswordHash, account.AccessLevel, account.IsActive,
		account.FailedLoginAttempts, account.LockoutEnd, account.LockoutReason,
		account.SecurityStamp, account.LastLoginAt, account.UpdatedAt,
		account.ID, account.Version,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or someone else updated it first.
		if _, err := r.GetByID(ctx, account.ID); err != nil {
			return err
		}
		return models.ErrConflict
	}

	account.Version++
	return nil
}

// Exists reports whether any account has been created. Used by the seeding
// collaborator to decide whether to bootstrap an administrator.
func (r *AccountRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for accounts: %w", err)
	}
	return exists, nil
}
