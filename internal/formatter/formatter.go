// package formatter renders movies, the user network and database statistics to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/movierec/internal/models"
	"github.com/desertthunder/movierec/internal/shared"
)

// Format names an output format accepted by the writers.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat normalizes a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// MovieColumns is the header written by [ExportMoviesToCSV]. It uses the dataset's own column names so the
// output can be imported again.
var MovieColumns = []string{
	"movie_title", "duration", "director_name", "actor_1_name", "actor_2_name", "actor_3_name", "genres",
	"movie_imdb_link", "language", "country", "content_rating", "title_year", "imdb_score", "movie_facebook_likes",
}

// Stats summarizes the contents of the database.
type Stats struct {
	Driver     string `json:"driver"`
	Migrations []int  `json:"migrations"`
	Movies     int    `json:"movies"`
	Users      int    `json:"users"`
	Follows    int    `json:"follows"`
}

// ExportMoviesToCSV converts movies to CSV with [MovieColumns] as the header. NULL numbers are empty cells.
func ExportMoviesToCSV(movies []*models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(MovieColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		record := []string{
			m.Title,
			formatInt(m.Duration),
			m.DirectorName,
			m.Actor1Name,
			m.Actor2Name,
			m.Actor3Name,
			m.Genres,
			m.IMDBLink,
			m.Language,
			m.Country,
			m.ContentRating,
			m.TitleYear,
			formatFloat(m.IMDBScore),
			formatInt(m.FacebookLikes),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportMoviesToMarkdown renders movies as a numbered list under a heading.
func ExportMoviesToMarkdown(movies []*models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Movies\n\n")
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(movies)))

	for i, m := range movies {
		buf.WriteString(fmt.Sprintf("%d. %s", i+1, m.Title))
		if m.TitleYear != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", m.TitleYear))
		}
		if m.DirectorName != "" {
			buf.WriteString(fmt.Sprintf(" - %s", m.DirectorName))
		}
		if m.IMDBScore != nil {
			buf.WriteString(fmt.Sprintf(" [%s]", formatFloat(m.IMDBScore)))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportMoviesToText renders one movie title per line.
func ExportMoviesToText(movies []*models.Movie) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(movies)))
	for i, m := range movies {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, m.Title))
	}

	return buf.Bytes(), nil
}

// ExportNetworkToMarkdown renders each user with the usernames they follow.
func ExportNetworkToMarkdown(users []*models.User) ([]byte, error) {
	var buf bytes.Buffer
	names := usernames(users)

	buf.WriteString("# User network\n\n")
	buf.WriteString(fmt.Sprintf("**Users**: %d\n", len(users)))
	buf.WriteString(fmt.Sprintf("**Follows**: %d\n\n", countFollows(users)))

	for _, u := range users {
		buf.WriteString(fmt.Sprintf("- **%s**", u.Username))
		if u.Name != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", u.Name))
		}
		if followees := followeeNames(u, names); len(followees) > 0 {
			buf.WriteString(": follows " + strings.Join(followees, ", "))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportNetworkToText renders the network as "username -> followee, ..." lines.
func ExportNetworkToText(users []*models.User) ([]byte, error) {
	var buf bytes.Buffer
	names := usernames(users)

	buf.WriteString(fmt.Sprintf("Users: %d\n", len(users)))
	buf.WriteString(fmt.Sprintf("Follows: %d\n\n", countFollows(users)))

	for _, u := range users {
		buf.WriteString(u.Username)
		if followees := followeeNames(u, names); len(followees) > 0 {
			buf.WriteString(" -> " + strings.Join(followees, ", "))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportNetworkToCSV writes one row per follow edge.
func ExportNetworkToCSV(users []*models.User) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	names := usernames(users)

	if err := writer.Write([]string{"follower", "followee"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, u := range users {
		for _, followee := range followeeNames(u, names) {
			if err := writer.Write([]string{u.Username, followee}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportStatsToText renders stats as aligned "label: value" lines.
func ExportStatsToText(stats Stats) ([]byte, error) {
	var buf bytes.Buffer

	migrations := make([]string, len(stats.Migrations))
	for i, v := range stats.Migrations {
		migrations[i] = strconv.Itoa(v)
	}
	if len(migrations) == 0 {
		migrations = []string{"none"}
	}

	buf.WriteString(fmt.Sprintf("Driver:     %s\n", stats.Driver))
	buf.WriteString(fmt.Sprintf("Migrations: %s\n", strings.Join(migrations, ", ")))
	buf.WriteString(fmt.Sprintf("Movies:     %d\n", stats.Movies))
	buf.WriteString(fmt.Sprintf("Users:      %d\n", stats.Users))
	buf.WriteString(fmt.Sprintf("Follows:    %d\n", stats.Follows))

	return buf.Bytes(), nil
}

// ExportStatsToJSON renders stats as indented JSON.
func ExportStatsToJSON(stats Stats) ([]byte, error) {
	if stats.Migrations == nil {
		stats.Migrations = []int{}
	}
	return shared.MarshalJSON(stats, true)
}

// ExportMovies renders movies in format.
func ExportMovies(movies []*models.Movie, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportMoviesToCSV(movies)
	case FormatMarkdown:
		return ExportMoviesToMarkdown(movies)
	case FormatText:
		return ExportMoviesToText(movies)
	case FormatJSON:
		return shared.MarshalJSON(movies, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportNetwork renders users and their follows in format.
func ExportNetwork(users []*models.User, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportNetworkToCSV(users)
	case FormatMarkdown:
		return ExportNetworkToMarkdown(users)
	case FormatText:
		return ExportNetworkToText(users)
	case FormatJSON:
		return shared.MarshalJSON(users, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes data to path, creating parent directories as needed.
func WriteExport(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func usernames(users []*models.User) map[int64]string {
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

// followeeNames resolves the user's follows to usernames, falling back to "#id" for unknown ids.
func followeeNames(u *models.User, names map[int64]string) []string {
	out := make([]string, 0, len(u.Follows))
	for _, id := range u.Follows {
		if name, ok := names[id]; ok {
			out = append(out, name)
		} else {
			out = append(out, "#"+strconv.FormatInt(id, 10))
		}
	}
	return out
}

func countFollows(users []*models.User) int {
	n := 0
	for _, u := range users {
		n += len(u.Follows)
	}
	return n
}

func formatInt[T int16 | int64](v *T) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(int64(*v), 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
