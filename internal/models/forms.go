package models

import (
	"regexp"
	"strconv"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterForm - new account credentials.
type RegisterForm struct {
	Username string
	Password string
	Confirm  string
}

func (f RegisterForm) Validate() map[string]string {
	errs := make(map[string]string)
	if f.Username == "" {
		errs["username"] = "This field is required."
	}
	if f.Password == "" {
		errs["password"] = "This field is required."
	} else if len(f.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	}
	if f.Confirm != f.Password {
		errs["password2"] = "The two password fields didn't match."
	}
	return errs
}

type LoginForm struct {
	Username string
	Password string
}

func (f LoginForm) Validate() map[string]string {
	errs := make(map[string]string)
	if f.Username == "" {
		errs["username"] = "This field is required."
	}
	if f.Password == "" {
		errs["password"] = "This field is required."
	}
	return errs
}

// OrderForm - one editable order row (used standalone on the update
// page and five at a time on the bulk create page).
type OrderForm struct {
	ProductID string
	Status    string
	Note      string
}

// Blank reports whether the row was left untouched. Blank rows in the
// bulk formset are valid and skipped, not errors.
func (f OrderForm) Blank() bool {
	return f.ProductID == "" && f.Note == ""
}

func (f OrderForm) Validate() map[string]string {
	errs := make(map[string]string)
	if f.ProductID == "" {
		errs["product"] = "This field is required."
	} else if _, err := strconv.ParseUint(f.ProductID, 10, 32); err != nil {
		errs["product"] = "Select a valid product."
	}
	if !ValidOrderStatus(f.Status) {
		errs["status"] = "Select a valid status."
	}
	return errs
}

// ProductIDValue returns the parsed product id. Call only after
// Validate reported no errors.
func (f OrderForm) ProductIDValue() uint {
	id, _ := strconv.ParseUint(f.ProductID, 10, 32)
	return uint(id)
}

// ProfileForm - account settings fields. Phone stays free-form; email
// is checked for shape only when present.
type ProfileForm struct {
	Name  string
	Phone string
	Email string
}

func (f ProfileForm) Validate() map[string]string {
	errs := make(map[string]string)
	if f.Email != "" && !emailRegex.MatchString(f.Email) {
		errs["email"] = "Enter a valid email address."
	}
	return errs
}
