package authapp

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/types/name"
	"github.com/hexalytics/portal/business/types/password"
)

// Token carries a freshly signed JWT.
type Token struct {
	Token string `json:"token"`
}

// Encode implements the web.Encoder interface.
func (t Token) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

func toAppToken(token string) Token {
	return Token{
		Token: token,
	}
}

// =============================================================================

// User is the profile data returned to clients.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt"`
}

// Encode implements the web.Encoder interface.
func (u User) Encode() ([]byte, string, error) {
	data, err := json.Marshal(u)
	return data, "application/json", err
}

func toAppUser(bus userbus.User) User {
	return User{
		ID:        bus.ID.String(),
		Name:      bus.Name.String(),
		Email:     bus.Email.Address,
		Role:      bus.Role.String(),
		Enabled:   bus.Enabled,
		CreatedAt: bus.CreatedAt.Format(time.RFC3339),
	}
}

// Session is what a successful signup returns: the profile plus a token.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Encode implements the web.Encoder interface.
func (s Session) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func toAppSession(token string, usr userbus.User) Session {
	return Session{
		Token: token,
		User:  toAppUser(usr),
	}
}

// =============================================================================

// Signup defines the data needed to register a user.
type Signup struct {
	Name     string `json:"name" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Decode implements the web.Decoder interface.
func (app *Signup) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Signup) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewUser(app Signup) (userbus.NewUser, error) {
	addr, err := mail.ParseAddress(app.Email)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parsing email: %w", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parsing name: %w", err)
	}

	pwd, err := password.Parse(app.Password)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parsing password: %w", err)
	}

	nu := userbus.NewUser{
		Name:     nme,
		Email:    *addr,
		Role:     defaultSignupRole,
		Password: pwd,
	}

	return nu, nil
}

// =============================================================================

// Login defines the data needed to authenticate a user.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *Login) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Login) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
