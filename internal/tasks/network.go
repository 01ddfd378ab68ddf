package tasks

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/movierec/internal/models"
	"github.com/desertthunder/movierec/internal/shared"
)

// SeedPrefix starts the usernames of seed accounts. Users with it are never wired by the generator.
const SeedPrefix = "user"

const maxFakeAttempts = 100

// NetworkOptions controls the shape of the generated graph.
type NetworkOptions struct {
	SeedAccounts int    // Accounts user1..userN whose password equals the username
	FakeAccounts int    // Accounts built by the fake-data factory
	Iterations   int    // Attempts to wire a user without follows
	MaxFollows   int    // Upper bound of follows assigned per wired user
	EmailDomain  string // Domain of seed account emails
	BcryptCost   int    // Cost used to hash passwords
	Seed         uint64 // Fake-data seed, 0 for a random one
}

// DefaultNetworkOptions mirrors the [network] defaults of the example configuration.
func DefaultNetworkOptions() NetworkOptions {
	return NetworkOptions{
		SeedAccounts: 4,
		FakeAccounts: 25,
		Iterations:   10,
		MaxFollows:   5,
		EmailDomain:  "movie-recommendations.local",
		BcryptCost:   bcrypt.DefaultCost,
	}
}

// NetworkResult summarizes a generated network.
type NetworkResult struct {
	Deleted     int64 // Users removed before generating
	SeedUsers   int   // Seed accounts created
	FakeUsers   int   // Fake accounts created
	WiredUsers  int   // Users that received follows
	FollowEdges int   // Follow edges created
}

// NetworkGenerator rebuilds the users table with a synthetic follows graph.
type NetworkGenerator struct {
	users UserStore
	opts  NetworkOptions
	faker *gofakeit.Faker
	intN  func(n int) int
}

// NewNetworkGenerator creates a generator writing to users.
func NewNetworkGenerator(users UserStore, opts NetworkOptions) *NetworkGenerator {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = DefaultNetworkOptions().EmailDomain
	}

	return &NetworkGenerator{
		users: users,
		opts:  opts,
		faker: gofakeit.New(opts.Seed),
		intN:  rand.IntN,
	}
}

// WithRand replaces the source of follow counts.
func (g *NetworkGenerator) WithRand(r *rand.Rand) *NetworkGenerator {
	g.intN = r.IntN
	return g
}

// Generate deletes every user, creates the seed and fake accounts, then wires random follows.
//
// Each iteration picks a random user that follows nobody and is not a seed account, and makes it follow between
// one and MaxFollows other users. When no such user is left the generator stops and returns the partial result
// together with an error wrapping [shared.ErrNoCandidates].
func (g *NetworkGenerator) Generate(ctx context.Context, progress chan<- ProgressUpdate) (*NetworkResult, error) {
	if g.opts.MaxFollows < 1 {
		return nil, fmt.Errorf("%w: max follows must be at least 1", shared.ErrInvalidArgument)
	}

	result := &NetworkResult{}

	deleted, err := g.users.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete users: %w", err)
	}
	result.Deleted = deleted
	sendProgress(progress, resetUsersUpdate(deleted))

	total := g.opts.SeedAccounts + g.opts.FakeAccounts
	for i := 1; i <= g.opts.SeedAccounts; i++ {
		username := fmt.Sprintf("%s%d", SeedPrefix, i)
		user, err := g.newUser(username, fmt.Sprintf("%s@%s", username, g.opts.EmailDomain), username)
		if err != nil {
			return nil, err
		}
		user.Name = fmt.Sprintf("User %d", i)

		if err := g.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", username, err)
		}
		result.SeedUsers++
		sendProgress(progress, createUserUpdate(result.SeedUsers, total, user))
	}

	factory := newFakeFactory(g.faker)
	for range g.opts.FakeAccounts {
		username, email, err := factory.next()
		if err != nil {
			return nil, err
		}

		user, err := g.newUser(username, email, g.faker.Password(true, true, true, false, false, 12))
		if err != nil {
			return nil, err
		}
		user.Name = g.faker.Name()

		if err := g.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", username, err)
		}
		result.FakeUsers++
		sendProgress(progress, createUserUpdate(result.SeedUsers+result.FakeUsers, total, user))
	}

	for i := 1; i <= g.opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		user, err := g.users.RandomWithoutFollows(ctx, SeedPrefix)
		if errors.Is(err, shared.ErrNotFound) {
			return result, fmt.Errorf("%w: stopped after %d of %d iterations", shared.ErrNoCandidates, i-1, g.opts.Iterations)
		}
		if err != nil {
			return result, err
		}

		follows, err := g.users.RandomExcept(ctx, user.ID, 1+g.intN(g.opts.MaxFollows))
		if err != nil {
			return result, err
		}

		ids := make([]int64, 0, len(follows))
		for _, f := range follows {
			ids = append(ids, f.ID)
		}
		if err := g.users.SetFollows(ctx, user.ID, ids); err != nil {
			return result, fmt.Errorf("failed to wire %s: %w", user.Username, err)
		}

		result.WiredUsers++
		result.FollowEdges += len(ids)
		sendProgress(progress, wireFollowsUpdate(i, g.opts.Iterations, user, follows))
	}

	return result, nil
}

func (g *NetworkGenerator) newUser(username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
	}
	return models.NewUser(username, email, string(hash)), nil
}

// fakeFactory produces usernames and emails that are unique within one run and never use [SeedPrefix].
type fakeFactory struct {
	faker     *gofakeit.Faker
	usernames map[string]bool
	emails    map[string]bool
}

func newFakeFactory(faker *gofakeit.Faker) *fakeFactory {
	return &fakeFactory{faker: faker, usernames: map[string]bool{}, emails: map[string]bool{}}
}

func (f *fakeFactory) next() (username, email string, err error) {
	for range maxFakeAttempts {
		username = f.faker.Username()
		email = strings.ToLower(f.faker.Email())

		key := strings.ToLower(username)
		if shared.HasReservedPrefix(username, SeedPrefix) || models.NewUser(username, email, "").Validate() != nil {
			continue
		}
		if f.usernames[key] || f.emails[email] {
			continue
		}

		f.usernames[key] = true
		f.emails[email] = true
		return username, email, nil
	}
	return "", "", fmt.Errorf("%w: no unique fake account after %d attempts", shared.ErrDuplicate, maxFakeAttempts)
}
