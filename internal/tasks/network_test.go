package tasks

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/shared"
	mtest "github.com/desertthunder/movierec/internal/testing"
)

func testNetworkOptions() NetworkOptions {
	opts := DefaultNetworkOptions()
	opts.BcryptCost = bcrypt.MinCost
	opts.Seed = 42
	return opts
}

func TestNetworkGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("default shape", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)

		result, err := NewNetworkGenerator(repo, testNetworkOptions()).Generate(ctx, nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if result.SeedUsers != 4 || result.FakeUsers != 25 || result.WiredUsers != 10 {
			t.Errorf("unexpected result %+v", result)
		}

		users, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 29 {
			t.Fatalf("expected 29 users, got %d", len(users))
		}

		edges, wired := 0, 0
		for _, u := range users {
			if len(u.Follows) > 5 {
				t.Errorf("%s follows %d users", u.Username, len(u.Follows))
			}
			for _, id := range u.Follows {
				if id == u.ID {
					t.Errorf("%s follows itself", u.Username)
				}
			}
			if strings.HasPrefix(u.Username, "user") && len(u.Follows) > 0 {
				t.Errorf("seed account %s should not be wired", u.Username)
			}
			if len(u.Follows) > 0 {
				wired++
			}
			edges += len(u.Follows)
		}

		if wired != 10 {
			t.Errorf("expected 10 wired users, got %d", wired)
		}
		if edges != result.FollowEdges {
			t.Errorf("expected %d edges, got %d", result.FollowEdges, edges)
		}
	})

	t.Run("seed accounts", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)

		if _, err := NewNetworkGenerator(repo, testNetworkOptions()).Generate(ctx, nil); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		user, err := repo.GetByUsername(ctx, "user3")
		if err != nil {
			t.Fatalf("failed to get user3: %v", err)
		}
		if user.Name != "User 3" || user.Email != "user3@movie-recommendations.local" || !user.Active {
			t.Errorf("unexpected seed account %+v", user)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("user3")); err != nil {
			t.Errorf("expected password hash of the username: %v", err)
		}
	})

	t.Run("replaces existing users", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)
		opts := testNetworkOptions()

		if _, err := NewNetworkGenerator(repo, opts).Generate(ctx, nil); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		opts.Seed = 7
		result, err := NewNetworkGenerator(repo, opts).Generate(ctx, nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if result.Deleted != 29 {
			t.Errorf("expected 29 deleted, got %d", result.Deleted)
		}

		count, _ := repo.Count(ctx)
		if count != 29 {
			t.Errorf("expected 29 users, got %d", count)
		}
	})

	t.Run("follow count source", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)
		opts := testNetworkOptions()
		opts.MaxFollows = 1

		result, err := NewNetworkGenerator(repo, opts).
			WithRand(rand.New(rand.NewPCG(1, 2))).
			Generate(ctx, nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if result.FollowEdges != 10 {
			t.Errorf("expected exactly one follow per wired user, got %d edges", result.FollowEdges)
		}
	})

	t.Run("stops when candidates run out", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)
		opts := testNetworkOptions()
		opts.FakeAccounts = 3

		result, err := NewNetworkGenerator(repo, opts).Generate(ctx, nil)
		if !errors.Is(err, shared.ErrNoCandidates) {
			t.Fatalf("expected ErrNoCandidates, got %v", err)
		}
		if result == nil || result.WiredUsers != 3 {
			t.Errorf("expected 3 wired users, got %+v", result)
		}
	})

	t.Run("invalid max follows", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)
		opts := testNetworkOptions()
		opts.MaxFollows = 0

		if _, err := NewNetworkGenerator(repo, opts).Generate(ctx, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		repo := repositories.NewUserRepository(mtest.NewTestDB(t), shared.DriverSQLite)
		progress := make(chan ProgressUpdate, 64)

		if _, err := NewNetworkGenerator(repo, testNetworkOptions()).Generate(ctx, progress); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		close(progress)

		phases := map[Phase]int{}
		for u := range progress {
			phases[u.Phase]++
		}
		if phases[ResetUsers] != 1 || phases[CreateUsers] != 29 || phases[WireFollows] != 10 {
			t.Errorf("unexpected progress counts %v", phases)
		}
	})
}

func TestFakeFactory(t *testing.T) {
	factory := newFakeFactory(NewNetworkGenerator(nil, NetworkOptions{Seed: 1}).faker)

	seen := map[string]bool{}
	for range 200 {
		username, email, err := factory.next()
		if err != nil {
			t.Fatalf("next() error = %v", err)
		}
		if shared.HasReservedPrefix(username, SeedPrefix) {
			t.Errorf("fake username %q uses the seed prefix", username)
		}
		if seen[strings.ToLower(username)] || seen[email] {
			t.Errorf("duplicate account %s <%s>", username, email)
		}
		seen[strings.ToLower(username)] = true
		seen[email] = true
	}
}
