package domain

// User models a registered account. ID is the externally visible identifier
// and is never the storage primary key.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Created      int64  `json:"created"`
	Admin        bool   `json:"-"`
}

// Profile is the public projection of a User.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created int64  `json:"created"`
}

// Profile strips credentials and privilege flags from u.
func (u *User) Profile() Profile {
	return Profile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Created: u.Created,
	}
}
