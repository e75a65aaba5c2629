package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/velihant/financehub-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmailTaken = errors.New("email already in use")

type UserRepository interface {
	CreateUser(ctx context.Context, name, email, password string, role models.UserRole) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (models.User, error)
}

// UpdateProfileParams carries the fields a user may change on their own
// account. Nil fields are left untouched.
type UpdateProfileParams struct {
	Name  *string
	Email *string
	Phone *string
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (u *userRepository) CreateUser(ctx context.Context, name, email, password string, role models.UserRole) (models.User, error) {
	if !models.IsValidRole(role) {
		role = models.RoleViewer
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	const query = `
		INSERT INTO app.users (name, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at`
	err = u.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (u *userRepository) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	var user models.User

	const query = `
		SELECT id, name, email, password_hash, role, is_active, created_at
		FROM app.users
		WHERE email = $1`
	err := u.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("invalid credentials")
		}
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, errors.New("user is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}

	return user, nil
}

func (u *userRepository) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User

	const query = `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, role, is_active, created_at
		FROM app.users
		WHERE id = $1`
	err := u.db.QueryRowContext(ctx, query, strings.TrimSpace(userID)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

func (u *userRepository) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (models.User, error) {
	var (
		sets []string
		args []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Name != nil {
		sets = append(sets, "name = "+arg(strings.TrimSpace(*params.Name)))
	}
	if params.Email != nil {
		sets = append(sets, "email = "+arg(strings.ToLower(strings.TrimSpace(*params.Email))))
	}
	if params.Phone != nil {
		sets = append(sets, "phone = "+arg(strings.TrimSpace(*params.Phone)))
	}
	if len(sets) == 0 {
		return models.User{}, errors.New("no fields to update")
	}

	query := `
		UPDATE app.users
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = ` + arg(strings.TrimSpace(userID)) + `
		RETURNING id, name, email, COALESCE(phone, ''), password_hash, role, is_active, created_at`

	var user models.User
	err := u.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
