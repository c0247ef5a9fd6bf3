package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/session"

	"golang.org/x/crypto/bcrypt"
)

// NewUser is the input of register and add_user.
type NewUser struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

type UserUsecase struct {
	repo       repository.UserRepository
	sessions   session.Store
	sessionTTL time.Duration
}

func NewUserUsecase(repo repository.UserRepository, sessions session.Store, sessionTTL time.Duration) *UserUsecase {
	return &UserUsecase{repo: repo, sessions: sessions, sessionTTL: sessionTTL}
}

func (u *UserUsecase) Register(ctx context.Context, in NewUser) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = model.RoleReadUser
	}

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, invalid("Username, email, and password are required.")
	}
	if !validEmail(in.Email) {
		return nil, invalid("Invalid email format.")
	}
	if err := checkPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if !model.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	exists, err := u.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	// 1. Hash the password
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 2. Store the user
	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Role:     in.Role,
	}
	if err := u.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and opens a session for the user.
func (u *UserUsecase) Login(ctx context.Context, username, password string) (*model.User, *model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, invalid("Username and password are required.")
	}

	user, err := u.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := u.sessions.Create(ctx, user.ID, u.sessionTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	return user, sess, nil
}

func (u *UserUsecase) Logout(ctx context.Context, token string) error {
	return u.sessions.Delete(ctx, token)
}

func (u *UserUsecase) Get(ctx context.Context, id uint) (*model.User, error) {
	return u.repo.FindByID(ctx, id)
}

func (u *UserUsecase) List(ctx context.Context) ([]model.User, error) {
	return u.repo.GetAll(ctx)
}

func (u *UserUsecase) UpdateRole(ctx context.Context, id uint, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	return u.repo.UpdateRole(ctx, id, role)
}

// Delete removes a user with everything it owns and ends its sessions.
func (u *UserUsecase) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := u.sessions.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("drop sessions of user %d: %w", id, err)
	}
	return nil
}
