package users

import (
	"context"
	"errors"
)

var ErrNoUser = errors.New("no user with given params found")

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Update holds the fields of a partial update. Nil fields are left untouched.
type Update struct {
	Username  *string
	FirstName *string
	LastName  *string
}

func (u Update) Empty() bool {
	return u.Username == nil && u.FirstName == nil && u.LastName == nil
}

type Userer interface {
	GetAllUsers(context.Context) ([]*User, error)
	GetUserByID(context.Context, string) (*User, error)
	GetUserByUsername(context.Context, string) (*User, error)
	CreateUser(context.Context, *User) (*User, error)
	UpdateUser(context.Context, string, Update) (*User, error)
	DeleteUser(context.Context, string) (*User, error)
}
