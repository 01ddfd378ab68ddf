package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/movierec/internal/models"
	"github.com/desertthunder/movierec/internal/shared"
)

var movieColumns = []string{
	"movie_title", "duration", "director_name", "actor_1_name", "actor_2_name", "actor_3_name", "genres",
	"movie_imdb_link", "language", "country", "content_rating", "title_year", "imdb_score", "movie_facebook_likes",
}

// maxBatchSize keeps a multi-row insert under SQLite's historical limit of 999 bound variables.
var maxBatchSize = 999 / len(movieColumns)

// DefaultBatchSize is the number of rows per INSERT statement used by [MovieRepository.ReplaceAll].
const DefaultBatchSize = 64

// MovieRepository implements [models.Repository] for [models.Movie] persistence.
type MovieRepository struct {
	base
	batchSize int
}

// NewMovieRepository creates a new [MovieRepository] with the given database connection and driver name
func NewMovieRepository(db *sql.DB, driver string) *MovieRepository {
	return &MovieRepository{base: base{db: db, driver: driver}, batchSize: DefaultBatchSize}
}

// WithBatchSize sets the rows per INSERT statement, clamped to the bind variable limit.
func (r *MovieRepository) WithBatchSize(n int) *MovieRepository {
	switch {
	case n < 1:
		r.batchSize = DefaultBatchSize
	case n > maxBatchSize:
		r.batchSize = maxBatchSize
	default:
		r.batchSize = n
	}
	return r
}

// Get retrieves a movie by ID
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	query := r.q("SELECT id, " + strings.Join(movieColumns, ", ") + " FROM movies WHERE id = ?")

	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: movie %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie: %w", err)
	}
	return movie, nil
}

// List returns a page of movies ordered by ID. A limit of zero or less returns every movie.
func (r *MovieRepository) List(ctx context.Context, limit, offset int) ([]*models.Movie, error) {
	query, args := r.listQuery(limit, offset)
	return r.queryMovies(ctx, query, args...)
}

// listQuery builds the List statement. SQLite takes LIMIT -1 for "no limit"; Postgres drops the clause.
func (r *MovieRepository) listQuery(limit, offset int) (string, []any) {
	query := "SELECT id, " + strings.Join(movieColumns, ", ") + " FROM movies ORDER BY id"
	switch {
	case limit > 0:
		return r.q(query + " LIMIT ? OFFSET ?"), []any{limit, offset}
	case r.driver == shared.DriverPostgres:
		return r.q(query + " OFFSET ?"), []any{offset}
	default:
		return r.q(query + " LIMIT ? OFFSET ?"), []any{-1, offset}
	}
}

// Search returns up to limit movies whose title contains title, case-insensitively.
func (r *MovieRepository) Search(ctx context.Context, title string, limit int) ([]*models.Movie, error) {
	query := r.q(`
		SELECT id, ` + strings.Join(movieColumns, ", ") + `
		FROM movies
		WHERE LOWER(movie_title) LIKE ?
		ORDER BY movie_title, id
		LIMIT ?
	`)
	return r.queryMovies(ctx, query, "%"+strings.ToLower(strings.TrimSpace(title))+"%", limit)
}

// Count returns the number of movies
func (r *MovieRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "movies")
}

// DeleteAll removes every movie
func (r *MovieRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, r.db, "movies")
}

// ReplaceAll deletes every stored movie and inserts movies in a single transaction.
//
// Movies are validated before anything is written. Rows are inserted with multi-row INSERT statements; if any
// statement fails the transaction is rolled back and the previous contents are kept. IDs are not set on movies.
func (r *MovieRepository) ReplaceAll(ctx context.Context, movies []*models.Movie) (deleted, inserted int64, err error) {
	for i, m := range movies {
		if err := m.Validate(); err != nil {
			return 0, 0, fmt.Errorf("movie %d (%s): %w", i+1, m.Title, err)
		}
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		n, err := r.deleteAll(ctx, tx, "movies")
		if err != nil {
			return err
		}
		deleted = n

		for start := 0; start < len(movies); start += r.batchSize {
			end := min(start+r.batchSize, len(movies))
			n, err := r.insertBatch(ctx, tx, movies[start:end])
			if err != nil {
				return fmt.Errorf("failed to insert movies %d-%d: %w", start+1, end, err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return deleted, inserted, nil
}

func (r *MovieRepository) insertBatch(ctx context.Context, exec querier, batch []*models.Movie) (int64, error) {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(movieColumns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO movies (" + strings.Join(movieColumns, ", ") + ") VALUES ")

	args := make([]any, 0, len(batch)*len(movieColumns))
	for i, m := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder)
		args = append(args,
			m.Title, m.Duration, m.DirectorName, m.Actor1Name, m.Actor2Name, m.Actor3Name, m.Genres,
			m.IMDBLink, m.Language, m.Country, m.ContentRating, m.TitleYear, m.IMDBScore, m.FacebookLikes,
		)
	}

	result, err := exec.ExecContext(ctx, r.q(b.String()), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MovieRepository) queryMovies(ctx context.Context, query string, args ...any) ([]*models.Movie, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}
	return movies, nil
}

func scanMovie(s scanner) (*models.Movie, error) {
	var (
		m        models.Movie
		text     [10]sql.NullString
		duration sql.NullInt16
		score    sql.NullFloat64
		likes    sql.NullInt64
	)

	err := s.Scan(&m.ID, &m.Title, &duration,
		&text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6], &text[7], &text[8], &text[9],
		&score, &likes,
	)
	if err != nil {
		return nil, err
	}

	m.DirectorName = text[0].String
	m.Actor1Name = text[1].String
	m.Actor2Name = text[2].String
	m.Actor3Name = text[3].String
	m.Genres = text[4].String
	m.IMDBLink = text[5].String
	m.Language = text[6].String
	m.Country = text[7].String
	m.ContentRating = text[8].String
	m.TitleYear = text[9].String

	if duration.Valid {
		m.Duration = &duration.Int16
	}
	if score.Valid {
		m.IMDBScore = &score.Float64
	}
	if likes.Valid {
		m.FacebookLikes = &likes.Int64
	}
	return &m, nil
}
