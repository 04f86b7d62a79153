package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/bodhivana/storefront/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, email, password_hash, role, two_factor_enabled,
	otp_hash, otp_expires_at, otp_attempts, otp_locked_until, last_otp_issued_at,
	created_at, updated_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u             domain.User
		otpHash       sql.NullString
		otpExpires    sql.NullTime
		otpLocked     sql.NullTime
		lastOTPIssued sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.TwoFactorEnabled,
		&otpHash, &otpExpires, &u.OTPAttempts, &otpLocked, &lastOTPIssued,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.OTPHash = mapNullStringPtr(otpHash)
	u.OTPExpiresAt = mapNullTimePtr(otpExpires)
	u.OTPLockedUntil = mapNullTimePtr(otpLocked)
	u.LastOTPIssuedAt = mapNullTimePtr(lastOTPIssued)

	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, role, two_factor_enabled,
			otp_hash, otp_expires_at, otp_attempts, otp_locked_until, last_otp_issued_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.TwoFactorEnabled,
		mapOptionalString(u.OTPHash), mapOptionalTime(u.OTPExpiresAt), u.OTPAttempts,
		mapOptionalTime(u.OTPLockedUntil), mapOptionalTime(u.LastOTPIssuedAt),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) SetTwoFactor(ctx context.Context, userID string, enabled bool) error {
	// Disabling also wipes any pending challenge so stale codes can't linger.
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET two_factor_enabled = ?,
		    otp_hash = CASE WHEN ? THEN otp_hash ELSE NULL END,
		    otp_expires_at = CASE WHEN ? THEN otp_expires_at ELSE NULL END,
		    otp_attempts = CASE WHEN ? THEN otp_attempts ELSE 0 END,
		    otp_locked_until = CASE WHEN ? THEN otp_locked_until ELSE NULL END,
		    updated_at = ?
		WHERE id = ?`,
		enabled, enabled, enabled, enabled, enabled, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) SetOTPChallenge(
	ctx context.Context,
	userID string,
	otpHash string,
	expiresAt, issuedAt time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_hash = ?,
		    otp_expires_at = ?,
		    otp_attempts = 0,
		    otp_locked_until = NULL,
		    last_otp_issued_at = ?,
		    updated_at = ?
		WHERE id = ?`,
		otpHash, expiresAt, issuedAt, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) RegisterFailedOTPAttempt(
	ctx context.Context,
	userID string,
	lockThreshold int,
	lockUntil time.Time,
) (int, error) {
	// Single statement so concurrent verifiers can't both read the same
	// counter and each bump it past the threshold without locking.
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET otp_attempts = otp_attempts + 1,
		    otp_locked_until = CASE
		        WHEN otp_attempts + 1 >= ? THEN ?
		        ELSE NULL
		    END,
		    updated_at = ?
		WHERE id = ?
		RETURNING otp_attempts`,
		lockThreshold, lockUntil, time.Now().UTC(), userID,
	)

	var attempts int
	if err := row.Scan(&attempts); err != nil {
		return 0, mapNotFound(err)
	}
	return attempts, nil
}

func (r *usersRepo) ClearOTPState(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_hash = NULL,
		    otp_expires_at = NULL,
		    otp_attempts = 0,
		    otp_locked_until = NULL,
		    updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) ClearExpiredOTPChallenges(ctx context.Context, cutoff time.Time) (int64, error) {
	// Only OTP state is touched; two_factor_enabled and credentials stay as
	// they are.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_hash = NULL,
		    otp_expires_at = NULL,
		    otp_attempts = 0,
		    otp_locked_until = NULL,
		    updated_at = ?
		WHERE otp_hash IS NOT NULL
		  AND otp_expires_at < ?`,
		time.Now().UTC(), cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
