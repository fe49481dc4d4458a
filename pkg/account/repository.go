package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the credential record store.
//
// Token lookups only return accounts whose token of that kind matches AND
// whose expiry is strictly after now. The Consume* operations perform that
// match and the authorized mutation in one atomic step, so a token can be
// consumed at most once even under concurrent requests.
type Repository interface {
	Create(ctx context.Context, a Account) (Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByVerifyToken(ctx context.Context, token string, now time.Time) (Account, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (Account, error)
	Update(ctx context.Context, id uuid.UUID, u AccountUpdate) (Account, error)

	// ConsumeVerifyToken marks the matching account verified and clears its
	// verification token.
	ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (Account, error)

	// ConsumeResetToken replaces the matching account's password hash and
	// clears its reset token.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (Account, error)
}
