package tasks

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/shared"
	mtest "github.com/desertthunder/movierec/internal/testing"
)

func datasetCSV() string {
	return mtest.MovieCSV(mtest.MovieHeader, mtest.MovieRows...)
}

func TestReadMovies(t *testing.T) {
	t.Run("maps columns", func(t *testing.T) {
		movies, err := ReadMovies(strings.NewReader(datasetCSV()), "movies.csv", nil)
		if err != nil {
			t.Fatalf("ReadMovies() error = %v", err)
		}
		if len(movies) != 3 {
			t.Fatalf("expected 3 movies, got %d", len(movies))
		}

		avatar := movies[0]
		if avatar.Title != "Avatar" {
			t.Errorf("expected trimmed title, got %q", avatar.Title)
		}
		if avatar.DirectorName != "James Cameron" || avatar.Actor1Name != "CCH Pounder" ||
			avatar.Actor2Name != "Joel David Moore" || avatar.Actor3Name != "Wes Studi" {
			t.Errorf("unexpected people %s", avatar)
		}
		if avatar.Genres != "Action|Adventure|Fantasy|Sci-Fi" || avatar.Language != "English" || avatar.Country != "USA" {
			t.Errorf("unexpected text columns %s", avatar)
		}
		if avatar.ContentRating != "PG-13" || avatar.TitleYear != "2009" {
			t.Errorf("unexpected rating/year %s", avatar)
		}
		if avatar.IMDBLink != "http://www.imdb.com/title/tt0499549/?ref_=fn_tt_tt_1" {
			t.Errorf("unexpected link %q", avatar.IMDBLink)
		}
		if avatar.Duration == nil || *avatar.Duration != 178 {
			t.Errorf("unexpected duration %v", avatar.Duration)
		}
		if avatar.IMDBScore == nil || *avatar.IMDBScore != 7.9 {
			t.Errorf("unexpected score %v", avatar.IMDBScore)
		}
		if avatar.FacebookLikes == nil || *avatar.FacebookLikes != 33000 {
			t.Errorf("unexpected likes %v", avatar.FacebookLikes)
		}
	})

	t.Run("empty numeric cells are null", func(t *testing.T) {
		movies, err := ReadMovies(strings.NewReader(datasetCSV()), "movies.csv", nil)
		if err != nil {
			t.Fatalf("ReadMovies() error = %v", err)
		}

		starWars := movies[1]
		if starWars.Title != "Star Wars: Episode VII - The Force Awakens" {
			t.Errorf("unexpected title %q", starWars.Title)
		}
		if starWars.Duration != nil {
			t.Errorf("expected nil duration, got %d", *starWars.Duration)
		}
		if starWars.TitleYear != "" || starWars.Language != "" {
			t.Errorf("expected empty year and language, got %s", starWars)
		}
		if starWars.FacebookLikes == nil || *starWars.FacebookLikes != 0 {
			t.Errorf("expected 0 likes, got %v", starWars.FacebookLikes)
		}
	})

	t.Run("non-breaking space and float cells", func(t *testing.T) {
		header := "movie_title,duration,director_name,actor_1_name,actor_2_name,actor_3_name,genres," +
			"movie_imdb_link,language,country,content_rating,title_year,imdb_score,movie_facebook_likes"
		row := "Avatar\u00a0,178.0,James Cameron,,,,,,,,,2009.0,7.9,33000"

		movies, err := ReadMovies(strings.NewReader(mtest.MovieCSV(header, row)), "movies.csv", nil)
		if err != nil {
			t.Fatalf("ReadMovies() error = %v", err)
		}
		if movies[0].Title != "Avatar" {
			t.Errorf("expected NBSP to be trimmed, got %q", movies[0].Title)
		}
		if movies[0].Duration == nil || *movies[0].Duration != 178 {
			t.Errorf("expected duration 178, got %v", movies[0].Duration)
		}
		if movies[0].TitleYear != "2009" {
			t.Errorf("expected year 2009, got %q", movies[0].TitleYear)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		header := strings.Replace(mtest.MovieHeader, "content_rating", "rating", 1)

		_, err := ReadMovies(strings.NewReader(mtest.MovieCSV(header, mtest.MovieRows...)), "movies.csv", nil)
		if !errors.Is(err, shared.ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
		if !strings.Contains(err.Error(), "content_rating") {
			t.Errorf("expected error to name the column, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadMovies(strings.NewReader(""), "movies.csv", nil)
		if !errors.Is(err, shared.ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})

	t.Run("malformed cells", func(t *testing.T) {
		tests := []struct {
			name   string
			old    string
			new    string
			column string
		}{
			{name: "duration", old: ",178,", new: ",abc,", column: "duration"},
			{name: "duration overflow", old: ",178,", new: ",40000,", column: "duration"},
			{name: "score", old: ",7.9,", new: ",high,", column: "imdb_score"},
			{name: "likes", old: ",33000", new: ",1.5", column: "movie_facebook_likes"},
			{name: "year", old: ",2009,", new: ",20091,", column: "title_year"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				row := strings.Replace(mtest.MovieRows[0], tt.old, tt.new, 1)
				data := mtest.MovieCSV(mtest.MovieHeader, mtest.MovieRows[2], row)

				_, err := ReadMovies(strings.NewReader(data), "movies.csv", nil)
				if !errors.Is(err, shared.ErrMalformedRow) {
					t.Fatalf("expected ErrMalformedRow, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.column) || !strings.Contains(err.Error(), "line 3") {
					t.Errorf("expected error to name line 3 and %s, got %v", tt.column, err)
				}
			})
		}
	})

	t.Run("wrong field count", func(t *testing.T) {
		data := mtest.MovieCSV(mtest.MovieHeader, "a,b,c")

		_, err := ReadMovies(strings.NewReader(data), "movies.csv", nil)
		if !errors.Is(err, shared.ErrMalformedRow) {
			t.Errorf("expected ErrMalformedRow, got %v", err)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 10)

		if _, err := ReadMovies(strings.NewReader(datasetCSV()), "movies.csv", progress); err != nil {
			t.Fatalf("ReadMovies() error = %v", err)
		}
		close(progress)

		var last ProgressUpdate
		for u := range progress {
			last = u
		}
		if last.Phase != ReadDataset || last.Step != 3 {
			t.Errorf("unexpected final update %+v", last)
		}
	})
}

func TestDatasetImporter(t *testing.T) {
	ctx := context.Background()

	newImporter := func(t *testing.T, fetcher Fetcher) (*DatasetImporter, *repositories.MovieRepository) {
		repo := repositories.NewMovieRepository(mtest.NewTestDB(t), shared.DriverSQLite)
		return NewDatasetImporter(repo, fetcher, ""), repo
	}

	t.Run("csv file", func(t *testing.T) {
		importer, repo := newImporter(t, nil)
		path := mtest.WriteFile(t, "movie_metadata.csv", datasetCSV())

		result, err := importer.Import(ctx, path, nil)
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.RowsRead != 3 || result.Inserted != 3 || result.Deleted != 0 {
			t.Errorf("unexpected result %+v", result)
		}

		count, _ := repo.Count(ctx)
		if count != 3 {
			t.Errorf("expected 3 movies, got %d", count)
		}
	})

	t.Run("second import replaces", func(t *testing.T) {
		importer, repo := newImporter(t, nil)

		first := mtest.WriteFile(t, "first.csv", datasetCSV())
		if _, err := importer.Import(ctx, first, nil); err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		second := mtest.WriteFile(t, "second.csv", mtest.MovieCSV(mtest.MovieHeader, mtest.MovieRows[2]))
		result, err := importer.Import(ctx, second, nil)
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Deleted != 3 || result.Inserted != 1 {
			t.Errorf("unexpected result %+v", result)
		}

		movies, _ := repo.List(ctx, 0, 0)
		if len(movies) != 1 || movies[0].Title != "The Dark Knight Rises" {
			t.Errorf("expected only the second dataset, got %v", movies)
		}
	})

	t.Run("malformed row keeps previous movies", func(t *testing.T) {
		importer, repo := newImporter(t, nil)

		good := mtest.WriteFile(t, "good.csv", datasetCSV())
		if _, err := importer.Import(ctx, good, nil); err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		row := strings.Replace(mtest.MovieRows[0], ",178,", ",long,", 1)
		bad := mtest.WriteFile(t, "bad.csv", mtest.MovieCSV(mtest.MovieHeader, row))
		if _, err := importer.Import(ctx, bad, nil); !errors.Is(err, shared.ErrMalformedRow) {
			t.Fatalf("expected ErrMalformedRow, got %v", err)
		}

		count, _ := repo.Count(ctx)
		if count != 3 {
			t.Errorf("expected 3 movies to remain, got %d", count)
		}
	})

	t.Run("zip archive", func(t *testing.T) {
		tests := []struct {
			name    string
			entries map[string]string
		}{
			{
				name: "named member",
				entries: map[string]string{
					"README.txt":                    "dataset",
					"data/movie_metadata.csv":       datasetCSV(),
					"data/movie_metadata_small.csv": mtest.MovieCSV(mtest.MovieHeader, mtest.MovieRows[0]),
				},
			},
			{
				name:    "single csv fallback",
				entries: map[string]string{"imdb.csv": datasetCSV(), "LICENSE": "CC0"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				importer, _ := newImporter(t, nil)
				path := mtest.WriteZip(t, "imdb-5000-movie-dataset.zip", tt.entries)

				result, err := importer.Import(ctx, path, nil)
				if err != nil {
					t.Fatalf("Import() error = %v", err)
				}
				if result.Inserted != 3 {
					t.Errorf("expected 3 inserted, got %d", result.Inserted)
				}
			})
		}
	})

	t.Run("zip without dataset", func(t *testing.T) {
		importer, _ := newImporter(t, nil)
		path := mtest.WriteZip(t, "empty.zip", map[string]string{"a.csv": "x", "b.csv": "y"})

		if _, err := importer.Import(ctx, path, nil); !errors.Is(err, shared.ErrDatasetNotFound) {
			t.Errorf("expected ErrDatasetNotFound, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		importer, _ := newImporter(t, nil)

		for _, path := range []string{"/does/not/exist.csv", "/does/not/exist.zip"} {
			if _, err := importer.Import(ctx, path, nil); !errors.Is(err, shared.ErrDatasetNotFound) {
				t.Errorf("%s: expected ErrDatasetNotFound, got %v", path, err)
			}
		}
	})

	t.Run("url", func(t *testing.T) {
		store := &mockMovieStore{}
		fetcher := &mockFetcher{path: mtest.WriteFile(t, "download.csv", datasetCSV())}
		importer := NewDatasetImporter(store, fetcher, "")

		result, err := importer.Import(ctx, "https://example.com/movie_metadata.csv", nil)
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Inserted != 3 || len(fetcher.urls) != 1 {
			t.Errorf("unexpected result %+v, fetched %v", result, fetcher.urls)
		}
		if _, err := os.Stat(fetcher.path); !os.IsNotExist(err) {
			t.Error("downloaded file should be removed after import")
		}
	})

	t.Run("url without fetcher", func(t *testing.T) {
		importer := NewDatasetImporter(&mockMovieStore{}, nil, "")

		if _, err := importer.Import(ctx, "http://example.com/data.csv", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("store error", func(t *testing.T) {
		store := &mockMovieStore{err: errors.New("disk full")}
		importer := NewDatasetImporter(store, nil, "")
		path := mtest.WriteFile(t, "movies.csv", datasetCSV())

		if _, err := importer.Import(ctx, path, nil); err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Errorf("expected store error, got %v", err)
		}
	})
}
