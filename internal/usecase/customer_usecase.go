package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ProfileInput is the body of update_profile.
type ProfileInput struct {
	FirstName string
	LastName  string
	Address   string
	Phone     string
	AvatarURL string
}

// CustomerUsecase covers portal accounts. Customers authenticate with HS256
// bearer tokens.
type CustomerUsecase struct {
	repo     repository.CustomerRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewCustomerUsecase(repo repository.CustomerRepository, secret []byte) *CustomerUsecase {
	return &CustomerUsecase{repo: repo, secret: secret, tokenTTL: 24 * time.Hour}
}

func (u *CustomerUsecase) Register(ctx context.Context, name, email, password string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, invalid("Name, email, and password are required.")
	}
	if !validEmail(email) {
		return nil, invalid("Invalid email format.")
	}
	if err := checkPassword(password, ""); err != nil {
		return nil, err
	}

	_, err := u.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateCustomer
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find customer: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	customer := &model.Customer{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Profile:  &model.Profile{},
	}
	if err := u.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// Login returns a signed token for valid credentials.
func (u *CustomerUsecase) Login(ctx context.Context, email, password string) (string, *model.Customer, error) {
	customer, err := u.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find customer: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"customer_id": customer.ID,
		"email":       customer.Email,
		"exp":         time.Now().Add(u.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, customer, nil
}

func (u *CustomerUsecase) Profile(ctx context.Context, id uint) (*model.Customer, error) {
	return u.repo.FindByID(ctx, id)
}

// UpdateProfile upserts the profile and renames the customer to "first last".
func (u *CustomerUsecase) UpdateProfile(ctx context.Context, id uint, in ProfileInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		return invalid("First Name and Last Name are required.")
	}

	profile := &model.Profile{
		CustomerID: id,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Address:    strings.TrimSpace(in.Address),
		Phone:      strings.TrimSpace(in.Phone),
		AvatarURL:  strings.TrimSpace(in.AvatarURL),
	}
	return u.repo.SaveProfile(ctx, id, profile, in.FirstName+" "+in.LastName)
}
