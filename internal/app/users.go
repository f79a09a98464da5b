package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kateshostak/taskman/internal/pkg/apperror"
	usersrepo "github.com/kateshostak/taskman/internal/pkg/users"
)

type userJSON struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func userNotFound(id string) error {
	return apperror.New(fmt.Sprintf("User with id: %v does not exist!", id), http.StatusNotFound)
}

func (t *Taskman) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := t.users.GetAllUsers(r.Context())
	if err != nil {
		return fmt.Errorf("cant get users: %w", err)
	}

	return t.writeData(w, r, users)
}

func (t *Taskman) GetUser(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	user, err := t.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNoUser) {
			return userNotFound(id)
		}
		return fmt.Errorf("cant get user %v: %w", id, err)
	}

	return t.writeData(w, r, user)
}

func (t *Taskman) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req userJSON
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	switch {
	case !provided(req.Username):
		return apperror.New("Username required, but it is not provided!", http.StatusBadRequest)
	case !provided(req.FirstName):
		return apperror.New("First name required, but it is not provided!", http.StatusBadRequest)
	case !provided(req.LastName):
		return apperror.New("Last name required, but it is not provided!", http.StatusBadRequest)
	}

	_, err := t.users.GetUserByUsername(r.Context(), *req.Username)
	if err == nil {
		return apperror.New(fmt.Sprintf("User with username: %v, already exist", *req.Username), http.StatusBadRequest)
	}
	if !errors.Is(err, usersrepo.ErrNoUser) {
		return fmt.Errorf("cant get user by username %v: %w", *req.Username, err)
	}

	user, err := t.users.CreateUser(r.Context(), &usersrepo.User{
		Username:  *req.Username,
		FirstName: *req.FirstName,
		LastName:  *req.LastName,
	})
	if err != nil {
		return fmt.Errorf("cant create user: %w", err)
	}

	return t.writeData(w, r, user)
}

func (t *Taskman) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	var req userJSON
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if _, err := t.users.GetUserByID(r.Context(), id); err != nil {
		if errors.Is(err, usersrepo.ErrNoUser) {
			return userNotFound(id)
		}
		return fmt.Errorf("cant get user %v: %w", id, err)
	}

	var update usersrepo.Update
	if provided(req.Username) {
		update.Username = req.Username
	}
	if provided(req.FirstName) {
		update.FirstName = req.FirstName
	}
	if provided(req.LastName) {
		update.LastName = req.LastName
	}

	user, err := t.users.UpdateUser(r.Context(), id, update)
	if err != nil {
		return fmt.Errorf("cant update user %v: %w", id, err)
	}

	return t.writeData(w, r, user)
}

func (t *Taskman) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	if _, err := t.users.GetUserByID(r.Context(), id); err != nil {
		if errors.Is(err, usersrepo.ErrNoUser) {
			return userNotFound(id)
		}
		return fmt.Errorf("cant get user %v: %w", id, err)
	}

	user, err := t.users.DeleteUser(r.Context(), id)
	if err != nil {
		return fmt.Errorf("cant delete user %v: %w", id, err)
	}

	return t.writeData(w, r, user)
}
