package catalog

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/pathways/core"
)

// Admin user statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// AdminUser is an operator of the admin dashboard. Only active admin users with a password can sign in.
type AdminUser struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"` // name of an AdminRole
	Status       string `json:"status,omitempty"`
	LastLogin    string `json:"last_login,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

func (u AdminUser) RecordID() int64 { return u.ID }

func (u AdminUser) WithID(id int64) AdminUser {
	u.ID = id
	return u
}

// Matches filters admin users by status when a category is requested.
func (u AdminUser) Matches(q Query) bool {
	return core.SameCategory(q.Category, u.Status) && core.Matches(q.Search, u.Name, u.Email, u.Role)
}

func (u AdminUser) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id":
		return u.ID, true
	case "name":
		return u.Name, true
	case "email":
		return u.Email, true
	case "role":
		return u.Role, true
	case "status":
		return u.Status, true
	}
	return nil, false
}

func (u *AdminUser) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *AdminUser) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u AdminUser) IsActive() bool {
	return u.Status == "" || u.Status == StatusActive
}

// Redacted returns the user without its password hash, for display.
func (u AdminUser) Redacted() AdminUser {
	u.PasswordHash = ""
	return u
}

var errEmailTaken = errors.New("email already taken")

// Conflicts rejects a user whose email is already used by another admin.
func (u AdminUser) Conflicts(others []AdminUser) error {
	if _, found := FindAdminUser(others, u.Email); found {
		return core.NewValidationError(errEmailTaken, core.FieldError{Field: "email", Error: "an admin with this email already exists"})
	}
	return nil
}

// FindAdminUser returns the admin user with the given email (case-insensitive).
func FindAdminUser(users []AdminUser, email string) (AdminUser, bool) {
	email = core.CleanString(email, true /* lower */)
	for _, u := range users {
		if core.CleanString(u.Email, true /* lower */) == email {
			return u, true
		}
	}
	return AdminUser{}, false
}

type AdminUserForm struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role"`
	Status          string `json:"status" validate:"omitempty,oneof=active inactive"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	passwordHash string
}

func (f *AdminUserForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Role = core.CleanString(f.Role)
	f.Status = core.CleanString(f.Status, true /* lower */)

	if err := validate.Struct(f); err != nil {
		return err
	}
	if f.Password != "" {
		if err := checkPassword(f.Password, f.Name, f.Email); err != nil {
			return err
		}
		usr := AdminUser{}
		if err := usr.SetPassword(f.Password); err != nil {
			return err
		}
		f.passwordHash = usr.PasswordHash
	}
	return nil
}

// Record keeps the current password hash unless a new password was submitted,
// and the current status unless one was submitted.
func (f *AdminUserForm) Record(orig AdminUser) AdminUser {
	orig.Name = f.Name
	orig.Email = f.Email
	orig.Role = f.Role
	if f.Status != "" {
		orig.Status = f.Status
	} else if orig.Status == "" {
		orig.Status = StatusActive
	}
	if f.passwordHash != "" {
		orig.PasswordHash = f.passwordHash
	}
	return orig
}

// AdminRole groups admin permissions under a name.
type AdminRole struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

func (r AdminRole) RecordID() int64 { return r.ID }

func (r AdminRole) WithID(id int64) AdminRole {
	r.ID = id
	return r
}

func (r AdminRole) Matches(q Query) bool {
	return core.Matches(q.Search, r.Name, r.Description)
}

func (r AdminRole) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "permissions":
		return int64(len(r.Permissions)), true
	}
	return nil, false
}

type AdminRoleForm struct {
	Name        string   `json:"name" validate:"notblank"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (f *AdminRoleForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Description = core.CleanString(f.Description)
	f.Permissions = cleanList(f.Permissions)
	return validate.Struct(f)
}

func (f *AdminRoleForm) Record(orig AdminRole) AdminRole {
	orig.Name = f.Name
	orig.Description = f.Description
	orig.Permissions = f.Permissions
	return orig
}
