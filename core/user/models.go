package user

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/lumina/core"
)

// Roles
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// Defaults applied to self-registered students.
const (
	DefaultBranch    = "General Studies"
	DefaultClassName = "Year 1"
)

var (
	AllRoles = []string{RoleAdmin, RoleInstructor, RoleStudent}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Instructor", Value: RoleInstructor},
		{Name: "Admin", Value: RoleAdmin},
	}

	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidEmail reports whether email looks like an e-mail address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Role         string     `json:"role" db:"role"`
	Avatar       string     `json:"avatar" db:"avatar"`
	Branch       string     `json:"branch,omitempty" db:"branch"`        // students only
	ClassName    string     `json:"class_name,omitempty" db:"class_name"` // students only
	IsActive     bool       `json:"is_active" db:"is_active"`
	PasswordHash []byte     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    *time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }

// IsStaff reports whether the user can manage courses, attendance and assessments.
func (u *User) IsStaff() bool { return u.IsAdmin() || u.IsInstructor() }

// normalizeAcademics keeps branch & class only on students.
func (u *User) normalizeAcademics() {
	if !u.IsStudent() {
		u.Branch = ""
		u.ClassName = ""
	}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"omitempty,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,selfrole"`
	Branch          string `json:"branch"`
	ClassName       string `json:"class_name"`
}

// Clean normalizes NewUser fields and fills the registration defaults.
func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	nu.Role = strings.ToUpper(nu.Role)
	nu.Branch = core.CleanString(nu.Branch)
	nu.ClassName = core.CleanString(nu.ClassName)
	if nu.Role == RoleStudent {
		if nu.Branch == "" {
			nu.Branch = DefaultBranch
		}
		if nu.ClassName == "" {
			nu.ClassName = DefaultClassName
		}
	}
}

func (nu *NewUser) Validate(svc Service) error {
	nu.Clean()
	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name      string  `json:"name"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Branch    *string `json:"branch"`
	ClassName *string `json:"class_name"`
	Role      string  `json:"role" validate:"omitempty,allroles"` // admin only
	IsActive  *bool   `json:"is_active"`                          // admin only
}

func (uu *UpdateUser) Validate(origUsr User, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if role := core.CleanString(uu.Role); role != "" {
		uu.Role = strings.ToUpper(role)
	} else {
		uu.Role = origUsr.Role
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Email, origUsr)
}

type ChangeUserPassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangeUserPassword) Validate(usr User) error {
	if err := core.Validate.Struct(cp); err != nil {
		return err
	}
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(ErrWrongPassword, core.FieldError{Field: "old_password", Error: ErrWrongPassword.Error()})
	}
	return validatePasswordPolicy(cp.Password, usr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	for i, r := range qf.Roles {
		qf.Roles[i] = strings.ToUpper(core.CleanString(r))
	}
}

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID    string
	Email string
}
