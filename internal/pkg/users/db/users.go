package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kateshostak/taskman/internal/pkg/store"
	usersrepo "github.com/kateshostak/taskman/internal/pkg/users"
)

const userColumns = "id, username, first_name, last_name"

type UsersRepo struct {
	users *store.DB
}

var _ usersrepo.Userer = (*UsersRepo)(nil)

func NewUserer(db *store.DB) *UsersRepo {
	return &UsersRepo{
		users: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*usersrepo.User, error) {
	var user usersrepo.User
	if err := row.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usersrepo.ErrNoUser
		}

		return nil, err
	}

	return &user, nil
}

func (u *UsersRepo) GetAllUsers(ctx context.Context) ([]*usersrepo.User, error) {
	rows, err := u.users.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("cant query users: %w", err)
	}
	defer rows.Close()

	res := make([]*usersrepo.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("cant scan user: %w", err)
		}
		res = append(res, user)
	}

	return res, rows.Err()
}

func (u *UsersRepo) GetUserByID(ctx context.Context, id string) (*usersrepo.User, error) {
	return u.getUserBy(ctx, "id", id)
}

func (u *UsersRepo) GetUserByUsername(ctx context.Context, username string) (*usersrepo.User, error) {
	return u.getUserBy(ctx, "username", username)
}

func (u *UsersRepo) getUserBy(ctx context.Context, column, value string) (*usersrepo.User, error) {
	query := u.users.Rebind("SELECT " + userColumns + " FROM users WHERE " + column + " = ?")

	user, err := scanUser(u.users.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, usersrepo.ErrNoUser) {
			return nil, err
		}

		return nil, fmt.Errorf("cant get user by %v: %w", column, err)
	}

	return user, nil
}

func (u *UsersRepo) CreateUser(ctx context.Context, user *usersrepo.User) (*usersrepo.User, error) {
	query := u.users.Rebind("INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?) RETURNING " + userColumns)

	created, err := scanUser(u.users.QueryRowContext(ctx, query, uuid.NewString(), user.Username, user.FirstName, user.LastName))
	if err != nil {
		return nil, fmt.Errorf("cant insert user: %w", err)
	}

	return created, nil
}

func (u *UsersRepo) UpdateUser(ctx context.Context, id string, update usersrepo.Update) (*usersrepo.User, error) {
	if update.Empty() {
		return u.GetUserByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)

	if update.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *update.Username)
	}

	if update.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *update.FirstName)
	}

	if update.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *update.LastName)
	}

	query := u.users.Rebind("UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ? RETURNING " + userColumns)

	user, err := scanUser(u.users.QueryRowContext(ctx, query, append(args, id)...))
	if err != nil {
		if errors.Is(err, usersrepo.ErrNoUser) {
			return nil, err
		}

		return nil, fmt.Errorf("cant update user %v: %w", id, err)
	}

	return user, nil
}

func (u *UsersRepo) DeleteUser(ctx context.Context, id string) (*usersrepo.User, error) {
	query := u.users.Rebind("DELETE FROM users WHERE id = ? RETURNING " + userColumns)

	user, err := scanUser(u.users.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, usersrepo.ErrNoUser) {
			return nil, err
		}

		return nil, fmt.Errorf("cant delete user %v: %w", id, err)
	}

	return user, nil
}
