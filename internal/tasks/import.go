package tasks

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/movierec/internal/models"
	"github.com/desertthunder/movierec/internal/shared"
)

// DefaultMember is the CSV entry looked up inside ZIP archives.
const DefaultMember = "movie_metadata.csv"

const progressEvery = 500

// Dataset columns mapped onto [models.Movie]. Every one must be present in the header.
const (
	colTitle         = "movie_title"
	colDuration      = "duration"
	colDirector      = "director_name"
	colActor1        = "actor_1_name"
	colActor2        = "actor_2_name"
	colActor3        = "actor_3_name"
	colGenres        = "genres"
	colIMDBLink      = "movie_imdb_link"
	colLanguage      = "language"
	colCountry       = "country"
	colContentRating = "content_rating"
	colTitleYear     = "title_year"
	colIMDBScore     = "imdb_score"
	colFacebookLikes = "movie_facebook_likes"
)

var requiredColumns = []string{
	colTitle, colDuration, colDirector, colActor1, colActor2, colActor3, colGenres,
	colIMDBLink, colLanguage, colCountry, colContentRating, colTitleYear, colIMDBScore, colFacebookLikes,
}

// ImportResult summarizes a dataset import.
type ImportResult struct {
	Source   string        // Path or URL given to Import
	RowsRead int           // Data rows read from the CSV
	Deleted  int64         // Movies removed before inserting
	Inserted int64         // Movies inserted
	Duration time.Duration // Wall time of the whole import
}

// DatasetImporter replaces the movies table with the contents of a dataset file.
type DatasetImporter struct {
	movies  MovieStore
	fetcher Fetcher
	member  string
}

// NewDatasetImporter creates an importer writing to movies. fetcher may be nil, in which case URLs are rejected.
func NewDatasetImporter(movies MovieStore, fetcher Fetcher, member string) *DatasetImporter {
	if member == "" {
		member = DefaultMember
	}
	return &DatasetImporter{movies: movies, fetcher: fetcher, member: member}
}

// Import reads every row of the dataset at path and replaces all stored movies with them.
//
// path may be a CSV file, a ZIP archive or an http(s) URL. The first missing column, malformed number or database
// error aborts the import and leaves the previous movies untouched.
func (i *DatasetImporter) Import(ctx context.Context, path string, progress chan<- ProgressUpdate) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{Source: path}

	if isURL(path) {
		if i.fetcher == nil {
			return nil, fmt.Errorf("%w: cannot download %s", shared.ErrInvalidArgument, path)
		}

		sendProgress(progress, fetchDatasetUpdate(path))
		local, err := i.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to download dataset: %w", err)
		}
		defer os.Remove(local)
		path = local
	}

	movies, err := i.read(path, progress)
	if err != nil {
		return nil, err
	}
	result.RowsRead = len(movies)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sendProgress(progress, replaceMoviesUpdate(len(movies)))
	result.Deleted, result.Inserted, err = i.movies.ReplaceAll(ctx, movies)
	if err != nil {
		return nil, fmt.Errorf("failed to store movies: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (i *DatasetImporter) read(path string, progress chan<- ProgressUpdate) ([]*models.Movie, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return i.readZip(path, progress)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDatasetNotFound, err)
	}
	defer f.Close()

	return ReadMovies(f, filepath.Base(path), progress)
}

func (i *DatasetImporter) readZip(path string, progress chan<- ProgressUpdate) ([]*models.Movie, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", shared.ErrDatasetNotFound, err)
		}
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer zr.Close()

	entry, err := findMember(zr.File, i.member)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", entry.Name, path, err)
	}
	defer rc.Close()

	return ReadMovies(rc, entry.Name, progress)
}

// findMember returns the entry whose base name is member, or the only CSV entry when there is no such entry.
func findMember(files []*zip.File, member string) (*zip.File, error) {
	var csvs []*zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if filepath.Base(f.Name) == member {
			return f, nil
		}
		if strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			csvs = append(csvs, f)
		}
	}

	if len(csvs) == 1 {
		return csvs[0], nil
	}
	return nil, fmt.Errorf("%w: no %s in archive (%d csv entries)", shared.ErrDatasetNotFound, member, len(csvs))
}

// ReadMovies parses a dataset CSV into movies, one per data row. name identifies the source in errors.
func ReadMovies(r io.Reader, name string, progress chan<- ProgressUpdate) ([]*models.Movie, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", shared.ErrMissingColumn, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var movies []*models.Movie
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedRow, name, err)
		}

		line, _ := cr.FieldPos(0)
		movie, err := parseMovie(record, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}
		movies = append(movies, movie)

		if len(movies)%progressEvery == 0 {
			sendProgress(progress, readDatasetUpdate(len(movies), name))
		}
	}

	sendProgress(progress, readDatasetUpdate(len(movies), name))
	return movies, nil
}

// indexColumns maps each required column to its position in header.
func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseMovie(record []string, cols map[string]int) (*models.Movie, error) {
	field := func(c string) string {
		return cleanText(record[cols[c]])
	}

	m := &models.Movie{
		Title:         field(colTitle),
		DirectorName:  field(colDirector),
		Actor1Name:    field(colActor1),
		Actor2Name:    field(colActor2),
		Actor3Name:    field(colActor3),
		Genres:        field(colGenres),
		IMDBLink:      field(colIMDBLink),
		Language:      field(colLanguage),
		Country:       field(colCountry),
		ContentRating: field(colContentRating),
	}

	var err error
	if m.TitleYear, err = parseYear(field(colTitleYear)); err != nil {
		return nil, malformed(colTitleYear, err)
	}
	if m.Duration, err = parseInt[int16](field(colDuration), 16); err != nil {
		return nil, malformed(colDuration, err)
	}
	if m.FacebookLikes, err = parseInt[int64](field(colFacebookLikes), 64); err != nil {
		return nil, malformed(colFacebookLikes, err)
	}
	if m.IMDBScore, err = parseFloat(field(colIMDBScore)); err != nil {
		return nil, malformed(colIMDBScore, err)
	}
	return m, nil
}

func malformed(col string, err error) error {
	return fmt.Errorf("%w: column %s: %v", shared.ErrMalformedRow, col, err)
}

// cleanText trims surrounding whitespace, including the non-breaking space the dataset appends to titles.
func cleanText(s string) string {
	return strings.TrimSpace(s)
}

// parseInt parses an integer cell. Empty cells are nil; integral floats such as "178.0" are accepted.
func parseInt[T int16 | int64](s string, bits int) (*T, error) {
	if s == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		limit := math.Ldexp(1, bits-1)
		if ferr != nil || f != math.Trunc(f) || f < -limit || f >= limit {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		n = int64(f)
	}

	v := T(n)
	return &v, nil
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &f, nil
}

// parseYear keeps the year text verbatim, collapsing an integral float like "2009.0" to "2009".
func parseYear(s string) (string, error) {
	if len(s) <= 4 {
		return s, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f > 9999 {
		return "", fmt.Errorf("invalid year %q", s)
	}
	return strconv.Itoa(int(f)), nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
