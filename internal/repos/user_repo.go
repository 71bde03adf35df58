package repos

import (
	"context"
	"strings"

	"marketplace/internal/domain"
)

type UserRepo struct{ db DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{db: db} }

var userCols = strings.Join(userFields, ", ")

func (r *UserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Upsert records a user seen through the identity provider. Identity fields
// only fill blanks on an existing row, so profile edits survive later logins.
func (r *UserRepo) Upsert(ctx context.Context, u domain.User) (*domain.User, error) {
	now := stamp()
	var out domain.User
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO users(id, email, first_name, last_name, profile_image_url, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  email             = CASE WHEN users.email = '' THEN excluded.email ELSE users.email END,
		  first_name        = CASE WHEN users.first_name = '' THEN excluded.first_name ELSE users.first_name END,
		  last_name         = CASE WHEN users.last_name = '' THEN excluded.last_name ELSE users.last_name END,
		  profile_image_url = CASE WHEN users.profile_image_url = '' THEN excluded.profile_image_url ELSE users.profile_image_url END,
		  updated_at        = excluded.updated_at
		RETURNING `+userCols,
		u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, now, now)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies the non-nil fields of patch.
func (r *UserRepo) Update(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	var set setList
	set.addString("email", patch.Email)
	set.addString("first_name", patch.FirstName)
	set.addString("last_name", patch.LastName)
	set.addString("username", patch.Username)
	set.addString("bio", patch.Bio)
	set.addString("address", patch.Address)
	set.addString("city", patch.City)
	set.addString("state", patch.State)
	set.addString("zip_code", patch.ZipCode)
	set.add("updated_at", stamp())

	var u domain.User
	args := append(set.args, id)
	if err := r.db.GetContext(ctx, &u, `UPDATE users SET `+set.String()+` WHERE id = ? RETURNING `+userCols, args...); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
