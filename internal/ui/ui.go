package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/movierec/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MovieListView ViewState = iota
	UserListView
	MovieDetailView
	FolloweesView
)

// MovieSource lists stored movies, implemented by repositories.MovieRepository.
type MovieSource interface {
	List(ctx context.Context, limit, offset int) ([]*models.Movie, error)
}

// UserSource lists users and their followees, implemented by repositories.UserRepository.
type UserSource interface {
	List(ctx context.Context) ([]*models.User, error)
	Follows(ctx context.Context, userID int64) ([]*models.User, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	movies        MovieSource
	users         UserSource
	width         int
	height        int
	movieList     list.Model
	userList      list.Model
	followeeList  list.Model
	selectedMovie *models.Movie
	selectedUser  *models.User
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, movies MovieSource, users UserSource) *Model {
	return &Model{
		ctx:          ctx,
		view:         MovieListView,
		movies:       movies,
		users:        users,
		movieList:    newList("Movies", nil),
		userList:     newList("Users", nil),
		followeeList: newList("Follows", nil),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init loads movies and users.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadMovies(), m.loadUsers())
}

// View returns the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case MovieListView:
		return m.renderList(m.movieList, m.keys.tab, m.keys.enter, m.keys.filter, m.keys.quit)
	case UserListView:
		return m.renderList(m.userList, m.keys.tab, m.keys.enter, m.keys.filter, m.keys.quit)
	case MovieDetailView:
		return m.renderMovie()
	case FolloweesView:
		return m.renderList(m.followeeList, m.keys.back, m.keys.quit)
	default:
		return ""
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.movieList, &m.userList, &m.followeeList} {
			l.SetSize(msg.Width-4, msg.Height-4)
		}
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		switch m.view {
		case MovieListView, UserListView:
			return m.handleListKeys(msg)
		case MovieDetailView:
			return m.handleDetailKeys(msg)
		case FolloweesView:
			return m.handleFolloweeKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateActive(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMoviesLoaded:
		data := msg.data.(moviesLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.movies))
		for i, mv := range data.movies {
			items[i] = movieItem{movie: mv}
		}
		return m, m.movieList.SetItems(items)

	case MsgUsersLoaded:
		data := msg.data.(usersLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.users))
		for i, u := range data.users {
			items[i] = userItem{user: u}
		}
		return m, m.userList.SetItems(items)

	case MsgFolloweesLoaded:
		data := msg.data.(followeesLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.followees))
		for i, u := range data.followees {
			items[i] = userItem{user: u}
		}
		m.selectedUser = data.user
		m.followeeList.Title = fmt.Sprintf("%s follows", data.user.DisplayName())
		m.view = FolloweesView
		return m, m.followeeList.SetItems(items)
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active := m.activeList()
	if active.FilterState() == list.Filtering {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		if m.view == MovieListView {
			m.view = UserListView
		} else {
			m.view = MovieListView
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		switch item := active.SelectedItem().(type) {
		case movieItem:
			m.selectedMovie = item.movie
			m.view = MovieDetailView
			return m, nil
		case userItem:
			return m, m.loadFollowees(item.user)
		}
		return m, nil
	}

	return m.updateActive(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = MovieListView
		m.selectedMovie = nil
	}
	return m, nil
}

func (m *Model) handleFolloweeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = UserListView
		m.selectedUser = nil
		return m, nil
	}
	return m.updateActive(msg)
}

// activeList returns the list shown by the current view, or nil for the detail view.
func (m *Model) activeList() *list.Model {
	switch m.view {
	case MovieListView:
		return &m.movieList
	case UserListView:
		return &m.userList
	case FolloweesView:
		return &m.followeeList
	default:
		return nil
	}
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	active := m.activeList()
	if active == nil {
		return m, nil
	}

	var cmd tea.Cmd
	*active, cmd = active.Update(msg)
	return m, cmd
}

func (m *Model) loadMovies() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.movies.List(m.ctx, 0, 0)
		return moviesLoadedMsg(movies, err)
	}
}

func (m *Model) loadUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := m.users.List(m.ctx)
		return usersLoadedMsg(users, err)
	}
}

func (m *Model) loadFollowees(user *models.User) tea.Cmd {
	return func() tea.Msg {
		followees, err := m.users.Follows(m.ctx, user.ID)
		return followeesLoadedMsg(user, followees, err)
	}
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderMovie() string {
	mv := m.selectedMovie
	if mv == nil {
		return ""
	}

	var score string
	if mv.IMDBScore != nil {
		score = styles.score(*mv.IMDBScore).Render(fmt.Sprintf("%.1f", *mv.IMDBScore))
	}

	rows := [][2]string{
		{"Director", mv.DirectorName},
		{"Cast", strings.Join(mv.Actors(), ", ")},
		{"Genres", strings.ReplaceAll(mv.Genres, "|", ", ")},
		{"Year", mv.TitleYear},
		{"Duration", optional(mv.Duration, "%d min")},
		{"Language", mv.Language},
		{"Country", mv.Country},
		{"Rating", mv.ContentRating},
		{"IMDB score", score},
		{"Facebook likes", optional(mv.FacebookLikes, "%d")},
		{"IMDB", mv.IMDBLink},
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(mv.Title))
	b.WriteString("\n")
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = styles.missing.Render("n/a")
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(row[0]), value)
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}

func optional[T int16 | int64](v *T, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}
