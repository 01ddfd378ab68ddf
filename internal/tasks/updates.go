package tasks

import (
	"fmt"

	"github.com/desertthunder/movierec/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchDataset Phase = iota
	ReadDataset
	ReplaceMovies
	ResetUsers
	CreateUsers
	WireFollows
)

func (p Phase) String() string {
	switch p {
	case FetchDataset:
		return "fetch_dataset"
	case ReadDataset:
		return "read_dataset"
	case ReplaceMovies:
		return "replace_movies"
	case ResetUsers:
		return "reset_users"
	case CreateUsers:
		return "create_users"
	case WireFollows:
		return "wire_follows"
	default:
		return ""
	}
}

func fetchDatasetUpdate(url string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchDataset, Step: 1, Total: 1, Message: fmt.Sprintf("Downloading %s...", url)}
}

func readDatasetUpdate(rows int, name string) ProgressUpdate {
	return ProgressUpdate{Phase: ReadDataset, Step: rows, Message: fmt.Sprintf("Read %d rows from %s", rows, name)}
}

func replaceMoviesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplaceMovies,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Replacing movies with %d rows...", total),
	}
}

func resetUsersUpdate(deleted int64) ProgressUpdate {
	return ProgressUpdate{Phase: ResetUsers, Step: 1, Total: 1, Message: fmt.Sprintf("Removed %d users", deleted)}
}

func createUserUpdate(step, total int, u *models.User) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Created %s", step, total, u.Username),
		Data:    u,
	}
}

func wireFollowsUpdate(step, total int, u *models.User, follows []*models.User) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WireFollows,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s follows %d users", step, total, u.Username, len(follows)),
		Data:    follows,
	}
}
