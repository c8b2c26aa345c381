package domain

import "time"

// User описывает учетную запись пользователя
type User struct {
	ID             string // uuid
	Email          string
	Username       *string
	Name           *string
	ProfilePicture *string
	PasswordHash   *string // nil у пользователей, вошедших только через Google
	GoogleID       *string
	IsAdmin        bool
	Settings       map[string]any
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func NewUser(email string, username, name, picture, passwordHash *string) *User {
	return &User{
		Email:          email,
		Username:       username,
		Name:           name,
		ProfilePicture: picture,
		PasswordHash:   passwordHash,
	}
}

// HasPassword сообщает, может ли пользователь войти по паролю.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserPatch — частичное обновление профиля. nil означает «не менять».
type UserPatch struct {
	Username       *string
	Name           *string
	ProfilePicture *string
}

// Empty сообщает, что в патче нет ни одного поля.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Name == nil && p.ProfilePicture == nil
}

// GoogleProfile — данные пользователя, полученные от Google userinfo.
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}
