package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/movierec/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMoviesLoaded MsgKind = iota
	MsgUsersLoaded
	MsgFolloweesLoaded
)

type moviesLoaded struct {
	movies []*models.Movie
	err    error
}

type usersLoaded struct {
	users []*models.User
	err   error
}

type followeesLoaded struct {
	user      *models.User
	followees []*models.User
	err       error
}

// moviesLoadedMsg is the constructor for [MsgMoviesLoaded]
func moviesLoadedMsg(movies []*models.Movie, err error) Msg {
	return Msg{kind: MsgMoviesLoaded, data: moviesLoaded{movies, err}}
}

// usersLoadedMsg is the constructor for [MsgUsersLoaded]
func usersLoadedMsg(users []*models.User, err error) Msg {
	return Msg{kind: MsgUsersLoaded, data: usersLoaded{users, err}}
}

// followeesLoadedMsg is the constructor for [MsgFolloweesLoaded]
func followeesLoadedMsg(user *models.User, followees []*models.User, err error) Msg {
	return Msg{kind: MsgFolloweesLoaded, data: followeesLoaded{user, followees, err}}
}
