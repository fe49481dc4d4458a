package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// accountDocument is the BSON shape of an Account. The id is stored as its
// string form so documents stay readable in the shell.
type accountDocument struct {
	ID                string     `bson:"_id"`
	Username          string     `bson:"username"`
	Email             string     `bson:"email"`
	PasswordHash      string     `bson:"password_hash"`
	IsVerified        bool       `bson:"is_verified"`
	VerifyToken       *string    `bson:"verify_token,omitempty"`
	VerifyTokenExpiry *time.Time `bson:"verify_token_expiry,omitempty"`
	ResetToken        *string    `bson:"reset_token,omitempty"`
	ResetTokenExpiry  *time.Time `bson:"reset_token_expiry,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at"`
}

func toDocument(a Account) accountDocument {
	return accountDocument{
		ID:                a.ID.String(),
		Username:          a.Username,
		Email:             a.Email,
		PasswordHash:      a.PasswordHash,
		IsVerified:        a.IsVerified,
		VerifyToken:       a.VerifyToken,
		VerifyTokenExpiry: a.VerifyTokenExpiry,
		ResetToken:        a.ResetToken,
		ResetTokenExpiry:  a.ResetTokenExpiry,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func (d accountDocument) account() (Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Account{}, fmt.Errorf("invalid account id %q: %w", d.ID, err)
	}
	a := Account{
		ID:                id,
		Username:          d.Username,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		IsVerified:        d.IsVerified,
		VerifyToken:       d.VerifyToken,
		VerifyTokenExpiry: d.VerifyTokenExpiry,
		ResetToken:        d.ResetToken,
		ResetTokenExpiry:  d.ResetTokenExpiry,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	if a.VerifyTokenExpiry != nil {
		exp := a.VerifyTokenExpiry.UTC()
		a.VerifyTokenExpiry = &exp
	}
	if a.ResetTokenExpiry != nil {
		exp := a.ResetTokenExpiry.UTC()
		a.ResetTokenExpiry = &exp
	}
	return a, nil
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoRepository wraps coll. Call EnsureIndexes once at startup.
func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// EnsureIndexes creates the unique email index and sparse unique indexes
// on the two token fields.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "verify_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return idmerrors.StoreUnavailable(err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, a Account) (Account, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	}
	a.UpdatedAt = a.CreatedAt
	a.Email = NormalizeEmail(a.Email)

	if _, err := r.coll.InsertOne(ctx, toDocument(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Account{}, ErrEmailTaken
		}
		return Account{}, idmerrors.StoreUnavailable(err)
	}
	return a, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (r *MongoRepository) FindByVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	return r.findOne(ctx, liveTokenFilter("verify_token", token, now))
}

func (r *MongoRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	return r.findOne(ctx, liveTokenFilter("reset_token", token, now))
}

func (r *MongoRepository) Update(ctx context.Context, id uuid.UUID, u AccountUpdate) (Account, error) {
	set := bson.M{"updated_at": r.now().UTC()}
	unset := bson.M{}

	if u.Username != nil {
		set["username"] = *u.Username
	}
	if u.PasswordHash != nil {
		set["password_hash"] = *u.PasswordHash
	}
	if u.MarkVerified {
		set["is_verified"] = true
	}
	switch {
	case u.VerifyToken != nil:
		set["verify_token"] = u.VerifyToken.Token
		set["verify_token_expiry"] = u.VerifyToken.ExpiresAt.UTC()
	case u.ClearVerifyToken:
		unset["verify_token"] = ""
		unset["verify_token_expiry"] = ""
	}
	switch {
	case u.ResetToken != nil:
		set["reset_token"] = u.ResetToken.Token
		set["reset_token_expiry"] = u.ResetToken.ExpiresAt.UTC()
	case u.ClearResetToken:
		unset["reset_token"] = ""
		unset["reset_token_expiry"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id.String()}, update)
}

func (r *MongoRepository) ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": now.UTC()},
		"$unset": bson.M{"verify_token": "", "verify_token_expiry": ""},
	}
	return r.findOneAndUpdate(ctx, liveTokenFilter("verify_token", token, now), update)
}

func (r *MongoRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (Account, error) {
	if token == "" {
		return Account{}, ErrAccountNotFound
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": now.UTC()},
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
	}
	return r.findOneAndUpdate(ctx, liveTokenFilter("reset_token", token, now), update)
}

func liveTokenFilter(field, token string, now time.Time) bson.M {
	return bson.M{
		field:             token,
		field + "_expiry": bson.M{"$gt": now.UTC()},
	}
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return Account{}, mapMongoError(err)
	}
	return doc.account()
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (Account, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return Account{}, mapMongoError(err)
	}
	return doc.account()
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrAccountNotFound
	}
	return idmerrors.StoreUnavailable(err)
}
