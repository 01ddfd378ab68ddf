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

const userColumns = "u.id, u.username, u.email, u.password, u.name, u.active, u.created_at"

// UserRepository implements [models.Repository] for [models.User] persistence and the follows relationship.
type UserRepository struct {
	base
}

// NewUserRepository creates a new [UserRepository] with the given database connection and driver name
func NewUserRepository(db *sql.DB, driver string) *UserRepository {
	return &UserRepository{base{db: db, driver: driver}}
}

// Create validates and inserts a user, setting its ID.
//
// Usernames and emails are unique; a collision returns an error wrapping [shared.ErrDuplicate].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := r.q(`
		INSERT INTO users (username, email, password, name, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, nullString(user.Password), nullString(user.Name), user.Active, user.CreatedAt,
	).Scan(&user.ID)
	if shared.IsUniqueViolation(err) {
		return fmt.Errorf("%w: user %s or email %s already exists", shared.ErrDuplicate, user.Username, user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID along with the IDs it follows
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "u.id = ?", id)
}

// GetByUsername retrieves a user by its unique username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "u.username = ?", username)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	query := r.q("SELECT " + userColumns + " FROM users u WHERE " + where)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %v", shared.ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	follows, err := r.followeeIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Follows = follows

	return user, nil
}

// List returns every user ordered by ID with their follows populated.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	users, err := r.queryUsers(ctx, "SELECT "+userColumns+" FROM users u ORDER BY u.id")
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT follower_id, followee_id FROM follows ORDER BY follower_id, followee_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for rows.Next() {
		var follower, followee int64
		if err := rows.Scan(&follower, &followee); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		if u, ok := byID[follower]; ok {
			u.Follows = append(u.Follows, followee)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}

	return users, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "users")
}

// CountFollows returns the number of follow edges
func (r *UserRepository) CountFollows(ctx context.Context) (int, error) {
	return r.count(ctx, "follows")
}

// DeleteAll removes every user and follow edge, returning the number of users removed.
func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.deleteAll(ctx, tx, "follows"); err != nil {
			return err
		}

		var err error
		n, err = r.deleteAll(ctx, tx, "users")
		return err
	})
	return n, err
}

// SetFollows replaces the set of users that userID follows in a single transaction.
//
// Duplicate IDs are collapsed; following oneself is rejected by the schema.
func (r *UserRepository) SetFollows(ctx context.Context, userID int64, followeeIDs []int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.q("DELETE FROM follows WHERE follower_id = ?"), userID); err != nil {
			return fmt.Errorf("failed to clear follows: %w", err)
		}

		insert := r.q("INSERT INTO follows (follower_id, followee_id) VALUES (?, ?)")
		seen := make(map[int64]bool, len(followeeIDs))
		for _, id := range followeeIDs {
			if seen[id] {
				continue
			}
			seen[id] = true

			if id == userID {
				return fmt.Errorf("%w: user %d cannot follow itself", shared.ErrInvalidInput, userID)
			}

			if _, err := tx.ExecContext(ctx, insert, userID, id); err != nil {
				return fmt.Errorf("failed to insert follow %d -> %d: %w", userID, id, err)
			}
		}
		return nil
	})
}

// Follows returns the users that userID follows
func (r *UserRepository) Follows(ctx context.Context, userID int64) ([]*models.User, error) {
	return r.queryUsers(ctx, r.q(`
		SELECT `+userColumns+`
		FROM users u
		JOIN follows f ON f.followee_id = u.id
		WHERE f.follower_id = ?
		ORDER BY u.id
	`), userID)
}

// Followers returns the users following userID
func (r *UserRepository) Followers(ctx context.Context, userID int64) ([]*models.User, error) {
	return r.queryUsers(ctx, r.q(`
		SELECT `+userColumns+`
		FROM users u
		JOIN follows f ON f.follower_id = u.id
		WHERE f.followee_id = ?
		ORDER BY u.id
	`), userID)
}

// RandomWithoutFollows picks a random user that follows nobody and whose username does not start with
// excludePrefix (case-insensitive). It returns [shared.ErrNotFound] when no user qualifies.
func (r *UserRepository) RandomWithoutFollows(ctx context.Context, excludePrefix string) (*models.User, error) {
	where := "NOT EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = u.id)"
	var args []any
	if excludePrefix != "" {
		where += " AND LOWER(SUBSTR(u.username, 1, ?)) <> ?"
		args = append(args, len(excludePrefix), strings.ToLower(excludePrefix))
	}

	query := r.q("SELECT " + userColumns + " FROM users u WHERE " + where + " ORDER BY random() LIMIT 1")

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no user without follows", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query random user: %w", err)
	}
	return user, nil
}

// RandomExcept returns up to limit distinct random users other than userID.
func (r *UserRepository) RandomExcept(ctx context.Context, userID int64, limit int) ([]*models.User, error) {
	return r.queryUsers(ctx, r.q(`
		SELECT `+userColumns+`
		FROM users u
		WHERE u.id <> ?
		ORDER BY random()
		LIMIT ?
	`), userID, limit)
}

func (r *UserRepository) followeeIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, r.q("SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY followee_id"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}
	return ids, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// scanner is implemented by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		user     models.User
		password sql.NullString
		name     sql.NullString
	)

	if err := s.Scan(&user.ID, &user.Username, &user.Email, &password, &name, &user.Active, &user.CreatedAt); err != nil {
		return nil, err
	}

	user.Password = password.String
	user.Name = name.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
