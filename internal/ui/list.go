package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/movierec/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = userItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie *models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.movie.TitleYear != "" {
		return fmt.Sprintf("%s (%s)", i.movie.Title, i.movie.TitleYear)
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	parts := make([]string, 0, 3)
	if i.movie.DirectorName != "" {
		parts = append(parts, i.movie.DirectorName)
	}
	if i.movie.Genres != "" {
		parts = append(parts, strings.ReplaceAll(i.movie.Genres, "|", ", "))
	}
	if i.movie.IMDBScore != nil {
		parts = append(parts, fmt.Sprintf("★ %.1f", *i.movie.IMDBScore))
	}
	return strings.Join(parts, " • ")
}

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user *models.User
}

func (i userItem) FilterValue() string { return i.user.Username + " " + i.user.Name }
func (i userItem) Title() string       { return i.user.DisplayName() }
func (i userItem) Description() string {
	return fmt.Sprintf("@%s • %s • follows %d", i.user.Username, i.user.Email, len(i.user.Follows))
}
