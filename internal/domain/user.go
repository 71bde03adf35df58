package domain

type User struct {
	ID              string `db:"id" json:"id"`
	Email           string `db:"email" json:"email"`
	FirstName       string `db:"first_name" json:"firstName"`
	LastName        string `db:"last_name" json:"lastName"`
	Username        string `db:"username" json:"username"`
	Bio             string `db:"bio" json:"bio"`
	ProfileImageURL string `db:"profile_image_url" json:"profileImageUrl"`
	Address         string `db:"address" json:"address"`
	City            string `db:"city" json:"city"`
	State           string `db:"state" json:"state"`
	ZipCode         string `db:"zip_code" json:"zipCode"`
	CreatedAt       string `db:"created_at" json:"createdAt"`
	UpdatedAt       string `db:"updated_at" json:"updatedAt"`
}

// ProfilePatch carries the user-editable profile fields. Nil means unchanged.
type ProfilePatch struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"firstName" validate:"omitempty,max=80"`
	LastName  *string `json:"lastName" validate:"omitempty,max=80"`
	Username  *string `json:"username" validate:"omitempty,max=40"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Address   *string `json:"address" validate:"omitempty,max=200"`
	City      *string `json:"city" validate:"omitempty,max=80"`
	State     *string `json:"state" validate:"omitempty,max=80"`
	ZipCode   *string `json:"zipCode" validate:"omitempty,max=20"`
}
