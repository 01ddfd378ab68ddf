package models

import (
	"fmt"
	"strconv"
)

// Movie is one row of the IMDB 5000 movie dataset.
//
// Numeric columns are pointers because the dataset leaves cells empty; nil is stored as NULL.
type Movie struct {
	ID            int64    `json:"id"`
	Title         string   `json:"movie_title" validate:"required,max=255"`
	Duration      *int16   `json:"duration,omitempty"`
	DirectorName  string   `json:"director_name,omitempty" validate:"max=255"`
	Actor1Name    string   `json:"actor_1_name,omitempty" validate:"max=255"`
	Actor2Name    string   `json:"actor_2_name,omitempty" validate:"max=255"`
	Actor3Name    string   `json:"actor_3_name,omitempty" validate:"max=255"`
	Genres        string   `json:"genres,omitempty" validate:"max=255"`
	IMDBLink      string   `json:"movie_imdb_link,omitempty" validate:"max=255"`
	Language      string   `json:"language,omitempty" validate:"max=63"`
	Country       string   `json:"country,omitempty" validate:"max=63"`
	ContentRating string   `json:"content_rating,omitempty" validate:"max=15"`
	TitleYear     string   `json:"title_year,omitempty" validate:"max=4"`
	IMDBScore     *float64 `json:"imdb_score,omitempty"`
	FacebookLikes *int64   `json:"movie_facebook_likes,omitempty"`
}

// Validate checks the movie's column constraints.
func (m *Movie) Validate() error {
	return validateStruct(m)
}

func (m *Movie) String() string {
	return fmt.Sprintf(
		"Movie[id=%d, movie_title=%s, duration=%s, director_name=%s, actor_1_name=%s, actor_2_name=%s, "+
			"actor_3_name=%s, genres=%s, movie_imdb_link=%s, language=%s, country=%s, content_rating=%s, "+
			"title_year=%s, imdb_score=%s, movie_facebook_likes=%s]",
		m.ID, m.Title, formatOptional(m.Duration), m.DirectorName, m.Actor1Name, m.Actor2Name,
		m.Actor3Name, m.Genres, m.IMDBLink, m.Language, m.Country, m.ContentRating,
		m.TitleYear, formatOptional(m.IMDBScore), formatOptional(m.FacebookLikes),
	)
}

// Actors returns the non-empty actor names in billing order.
func (m *Movie) Actors() []string {
	var actors []string
	for _, a := range []string{m.Actor1Name, m.Actor2Name, m.Actor3Name} {
		if a != "" {
			actors = append(actors, a)
		}
	}
	return actors
}

func formatOptional[T int16 | int64 | float64](v *T) string {
	if v == nil {
		return "None"
	}
	switch x := any(*v).(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}
