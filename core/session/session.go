// Package session replaces the raw role flags with an explicit session:
// created by a sign-in, carried by a signed token and torn down by a sign-out or its expiry.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/kv"
)

const keyPrefix = "session_"

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrInvalidToken         = errors.New("invalid token")
	ErrSessionEnded         = errors.New("session ended")
)

type Session struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	AdminID   int64     `json:"admin_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Key() string { return keyPrefix + s.ID }

// Owner identifies the session's user in per-user lists.
func (s Session) Owner() string {
	if s.Email != "" {
		return strings.ToLower(s.Email)
	}
	return s.ID
}

func (s Session) HasRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) Person() core.Person {
	return core.Person{ID: s.ID, Name: s.Name, Email: s.Email}
}

// Claims represents the authorization claims transmitted via a JWT; the subject is the session id.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}

// Credentials is a sign-in request. Only admins need an email and a password.
type Credentials struct {
	Role     string `json:"role" validate:"required,role"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Role = core.CleanString(c.Role, true /* lower */)
	c.Name = core.CleanString(c.Name)
	c.Email = core.CleanString(c.Email, true /* lower */)

	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Role == core.RoleAdmin {
		var flds []core.FieldError
		if c.Email == "" {
			flds = append(flds, core.FieldError{Field: "email", Error: "this field is required"})
		}
		if c.Password == "" {
			flds = append(flds, core.FieldError{Field: "password", Error: "this field is required"})
		}
		if len(flds) > 0 {
			return core.NewValidationError(errors.New("missing credentials"), flds...)
		}
	}
	return nil
}

// AdminDirectory gives access to the admin users, eg. a *dashboard.Controller[catalog.AdminUser].
type AdminDirectory interface {
	// Mount re-reads the admin users from storage.
	Mount(ctx context.Context) error
	List(ctx context.Context) ([]catalog.AdminUser, error)
	Update(ctx context.Context, id int64, edit func(orig catalog.AdminUser) catalog.AdminUser) (catalog.AdminUser, bool, error)
}

type Manager struct {
	adapter *kv.Adapter
	admins  AdminDirectory
	secret  []byte
	issuer  string
	ttl     time.Duration
}

func NewManager(adapter *kv.Adapter, admins AdminDirectory, conf *core.Config) *Manager {
	return &Manager{
		adapter: adapter,
		admins:  admins,
		secret:  []byte(conf.SecretKey),
		issuer:  conf.AppName,
		ttl:     conf.Server.SessionTTL,
	}
}

func (m *Manager) SigningKey() []byte { return m.secret }

// SignIn opens a session for creds and returns it with its signed token.
// creds must have been validated.
func (m *Manager) SignIn(ctx context.Context, creds Credentials) (Session, string, error) {
	now := core.NowFunc().UTC()
	sess := Session{
		ID:        uuid.New().String(),
		Role:      creds.Role,
		Name:      creds.Name,
		Email:     creds.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	if creds.Role == core.RoleAdmin {
		usr, err := m.authenticateAdmin(ctx, creds.Email, creds.Password)
		if err != nil {
			return Session{}, "", err
		}
		sess.AdminID = usr.ID
		sess.Name = usr.Name
		sess.Email = usr.Email
	}

	if err := m.adapter.Save(ctx, sess.Key(), sess); err != nil {
		return Session{}, "", errors.Wrap(err, "saving session")
	}
	token, err := m.sign(sess)
	if err != nil {
		return Session{}, "", err
	}
	return sess, token, nil
}

func (m *Manager) authenticateAdmin(ctx context.Context, email, pwd string) (catalog.AdminUser, error) {
	// admins may have been added or reset by another process
	if err := m.admins.Mount(ctx); err != nil {
		return catalog.AdminUser{}, errors.Wrap(err, "loading admin users")
	}
	users, err := m.admins.List(ctx)
	if err != nil {
		return catalog.AdminUser{}, errors.Wrap(err, "listing admin users")
	}
	usr, ok := catalog.FindAdminUser(users, email)
	if !ok || usr.PasswordHash == "" {
		return catalog.AdminUser{}, ErrAuthenticationFailed
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return catalog.AdminUser{}, ErrAuthenticationFailed
	}
	if !usr.IsActive() {
		return catalog.AdminUser{}, ErrAccountDeactivated
	}

	usr, _, err = m.admins.Update(ctx, usr.ID, func(orig catalog.AdminUser) catalog.AdminUser {
		orig.LastLogin = core.DisplayTime(core.NowFunc())
		return orig
	})
	return usr, errors.Wrap(err, "setting last login")
}

func (m *Manager) sign(sess Session) (string, error) {
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sess.ID,
			Subject:   sess.ID,
			Issuer:    m.issuer,
			IssuedAt:  sess.IssuedAt.Unix(),
			ExpiresAt: sess.ExpiresAt.Unix(),
		},
		Role: sess.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks the token signature and expiry and returns the session it carries, if still open.
func (m *Manager) Verify(ctx context.Context, token string) (Session, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	return m.Resume(ctx, *claims)
}

// Resume returns the open session behind already verified claims.
func (m *Manager) Resume(ctx context.Context, claims Claims) (Session, error) {
	if claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	sess, found, err := m.load(ctx, claims.Subject)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, ErrSessionEnded
	}
	if sess.Expired(core.NowFunc()) {
		if err = m.adapter.Delete(ctx, sess.Key()); err != nil {
			return Session{}, errors.Wrap(err, "deleting expired session")
		}
		return Session{}, ErrSessionEnded
	}
	return sess, nil
}

func (m *Manager) load(ctx context.Context, id string) (Session, bool, error) {
	data, found, err := m.adapter.Raw(ctx, keyPrefix+id)
	if err != nil || !found {
		return Session{}, false, errors.Wrap(err, "reading session")
	}
	var sess Session
	if err = json.Unmarshal(data, &sess); err != nil {
		return Session{}, false, nil // unreadable sessions are ended sessions
	}
	return sess, true, nil
}

// SignOut ends the session.
func (m *Manager) SignOut(ctx context.Context, sess Session) error {
	return errors.Wrap(m.adapter.Delete(ctx, sess.Key()), "deleting session")
}

// Purge deletes the expired sessions and returns how many were.
func (m *Manager) Purge(ctx context.Context) (int, error) {
	keys, err := m.adapter.Keys(ctx)
	if err != nil {
		return 0, err
	}
	now := core.NowFunc()
	var n int
	for _, key := range keys {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		sess, found, err := m.load(ctx, strings.TrimPrefix(key, keyPrefix))
		if err != nil {
			return n, err
		}
		if found && !sess.Expired(now) {
			continue
		}
		if err = m.adapter.Delete(ctx, key); err != nil {
			return n, errors.Wrap(err, "deleting session")
		}
		n++
	}
	return n, nil
}
