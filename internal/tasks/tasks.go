package tasks

import (
	"context"

	"github.com/desertthunder/movierec/internal/models"
)

// MovieStore is the persistence used by [DatasetImporter], implemented by repositories.MovieRepository.
type MovieStore interface {
	ReplaceAll(ctx context.Context, movies []*models.Movie) (deleted, inserted int64, err error)
}

// UserStore is the persistence used by [NetworkGenerator], implemented by repositories.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	DeleteAll(ctx context.Context) (int64, error)
	SetFollows(ctx context.Context, userID int64, followeeIDs []int64) error
	RandomWithoutFollows(ctx context.Context, excludePrefix string) (*models.User, error)
	RandomExcept(ctx context.Context, userID int64, limit int) ([]*models.User, error)
}

// Fetcher downloads a remote dataset to a local file, implemented by services.DatasetFetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
