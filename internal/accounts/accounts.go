// Package accounts is the identity service: sign-in, sign-up, admin bootstrap and
// employee management. A user row (email + password hash) and its profile row
// (name + role) share an id and are always written together.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"ss-uniforms/internal/auth"
	"ss-uniforms/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("accounts: invalid login credentials")
	ErrEmailTaken         = errors.New("accounts: email already registered")
	ErrAdminExists        = errors.New("accounts: admin account already exists")
	ErrInvalidRole        = errors.New("accounts: invalid role")
	ErrSelfDelete         = errors.New("accounts: cannot delete own account")
	ErrNotFound           = errors.New("accounts: user not found")
	ErrProfileMissing     = errors.New("accounts: profile not found")
)

var messages = map[error]string{
	ErrInvalidCredentials: "Invalid login credentials",
	ErrEmailTaken:         "A user with this email address has already been registered",
	ErrAdminExists:        "Admin account already exists",
	ErrInvalidRole:        "Invalid role. Must be 'admin' or 'staff'",
	ErrSelfDelete:         "Cannot delete your own account",
	ErrNotFound:           "User not found",
	ErrProfileMissing:     "Profile not found",
}

// Message is the user-facing text for err, or fallback when err is not an
// accounts error.
func Message(err error, fallback string) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return fallback
}

// ValidationError is an input problem caught before anything is written.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Session is a signed-in user.
type Session struct {
	Token   string          `json:"token"`
	Email   string          `json:"email"`
	Profile *models.Profile `json:"profile"`
}

// Employee is a profile with its sign-in email.
type Employee struct {
	models.Profile
	Email string `json:"email"`
}

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type NewUserInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Login checks the password and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.Profile(ctx, user.ID)
	if err != nil && !errors.Is(err, ErrProfileMissing) {
		return nil, err
	}
	var role models.Role
	if profile != nil {
		role = profile.Role
	} else {
		log.WithField("user_id", user.ID).Warn("User signed in without a profile")
	}

	token, err := auth.GenerateToken(user.ID, role)
	if err != nil {
		return nil, fmt.Errorf("accounts: sign token: %w", err)
	}
	return &Session{Token: token, Email: user.Email, Profile: profile}, nil
}

// Signup validates the form and creates a staff account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, &ValidationError{"Missing Information", "Please fill in all fields."}
	}
	if !validEmail(in.Email) {
		return nil, &ValidationError{"Invalid Email", "Please enter a valid email address."}
	}
	if in.Password != in.ConfirmPassword {
		return nil, &ValidationError{"Password Mismatch", "Passwords do not match."}
	}
	if len(in.Password) < MinPasswordLength {
		return nil, &ValidationError{"Password Too Short", fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength)}
	}

	if _, err := createUser(s.DB.WithContext(ctx), in.Email, in.Password, in.Name, models.RoleStaff); err != nil {
		return nil, err
	}
	return s.Login(ctx, in.Email, in.Password)
}

// CreateAdmin bootstraps the first admin. It fails once any admin exists.
func (s *Service) CreateAdmin(ctx context.Context, in NewUserInput) (string, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return "", &ValidationError{"Missing Information", "Email, password, and name are required"}
	}

	var id string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admins int64
		if err := tx.Model(&models.Profile{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return err
		}
		if admins > 0 {
			return ErrAdminExists
		}
		var err error
		id, err = createUser(tx, in.Email, in.Password, in.Name, models.RoleAdmin)
		return err
	})
	if err != nil {
		return "", err
	}
	log.WithField("user_id", id).Info("Admin account created")
	return id, nil
}

// CreateEmployee creates an account with the given role, staff when empty.
func (s *Service) CreateEmployee(ctx context.Context, in NewUserInput) (string, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return "", &ValidationError{"Missing Information", "Email, password, and name are required"}
	}
	if in.Role == "" {
		in.Role = models.RoleStaff
	}
	if !in.Role.Valid() {
		return "", ErrInvalidRole
	}
	return createUser(s.DB.WithContext(ctx), in.Email, in.Password, in.Name, in.Role)
}

func createUser(db *gorm.DB, email, password, name string, role models.Role) (string, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return "", &ValidationError{"Invalid Email", "Please enter a valid email address."}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("accounts: hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: hash}
	err = db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{ID: user.ID, Name: name, Role: role}).Error
	})
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": role}).Info("User account created")
	return user.ID, nil
}

// Profile loads the profile for a user id.
func (s *Service) Profile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileMissing
		}
		return nil, err
	}
	return &p, nil
}

// Email returns the sign-in email for a user id.
func (s *Service) Email(ctx context.Context, id string) (string, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Select("email").Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return u.Email, nil
}

// Authenticate resolves a session token to its user id and profile. A valid
// token whose profile is gone yields ErrProfileMissing alongside the user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, *models.Profile, error) {
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return "", nil, err
	}
	profile, err := s.Profile(ctx, claims.UserID)
	if err != nil {
		return claims.UserID, nil, err
	}
	return claims.UserID, profile, nil
}

// ListEmployees returns every profile, newest first.
func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	out := []Employee{}
	err := s.DB.WithContext(ctx).
		Table("profiles").
		Select("profiles.*, users.email").
		Joins("LEFT JOIN users ON users.id = profiles.id").
		Order("profiles.created_at DESC").
		Scan(&out).Error
	return out, err
}

// UpdateEmployee changes a profile's name and role. Empty fields are kept.
func (s *Service) UpdateEmployee(ctx context.Context, id, name string, role models.Role) error {
	fields := map[string]interface{}{}
	if name = strings.TrimSpace(name); name != "" {
		fields["name"] = name
	}
	if role != "" {
		if !role.Valid() {
			return ErrInvalidRole
		}
		fields["role"] = role
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Profile(ctx, id); err != nil {
			if errors.Is(err, ErrProfileMissing) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

// DeleteEmployee removes the target's user and profile. Callers may not delete themselves.
func (s *Service) DeleteEmployee(ctx context.Context, callerID, targetID string) error {
	if targetID == callerID {
		return ErrSelfDelete
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", targetID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", targetID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}
