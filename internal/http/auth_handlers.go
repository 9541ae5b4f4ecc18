package http

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsilmaro/c6/internal/audit"
	"github.com/jsilmaro/c6/internal/auth"
	"github.com/jsilmaro/c6/internal/domain"
)

type AuthHandler struct {
	DB          *pgxpool.Pool
	Secret      []byte
	TokenExpiry time.Duration
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

const userColumns = `id::text, email, password_hash, name, avatar, preferences, created_at`

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	ctx := userContext(c)

	var name *string
	if n := strings.TrimSpace(body.Name); n != "" {
		name = &n
	}

	row := h.DB.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		body.Email, string(hashed), name,
	)
	user, err := scanUser(row)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create user")
	}

	token, err := auth.GenerateToken(h.Secret, user.ID, h.TokenExpiry)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	ctx := userContext(c)

	row := h.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, body.Email)
	user, err := scanUser(row)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := auth.GenerateToken(h.Secret, user.ID, h.TokenExpiry)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	ip := c.IP()
	_ = audit.Write(ctx, h.DB, audit.Entry{
		UserID:     &user.ID,
		Action:     "auth.login",
		EntityType: "user",
		IP:         &ip,
	})

	return c.JSON(authResponse{Token: token, User: user})
}

// Logout is stateless; tokens simply expire. Kept so clients have a uniform
// auth surface.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body refreshRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	tokenStr := strings.TrimSpace(body.Token)
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token required")
	}

	userID, err := auth.ParseToken(h.Secret, tokenStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	token, err := auth.GenerateToken(h.Secret, userID, h.TokenExpiry)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}
	return c.JSON(fiber.Map{"token": token})
}

// ActiveAccounts returns the authenticated user as a single-element account
// list, which is what the dashboard's account switcher consumes.
func (h *AuthHandler) ActiveAccounts(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON([]fiber.Map{{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"avatar":   user.Avatar,
		"isActive": true,
	}})
}

type updateProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var body updateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	name := user.Name
	if body.Name != nil {
		name = body.Name
	}
	avatar := user.Avatar
	if body.Avatar != nil {
		avatar = body.Avatar
	}

	row := h.DB.QueryRow(userContext(c),
		`UPDATE users SET name = $2, avatar = $3 WHERE id = $1::uuid RETURNING `+userColumns,
		user.ID, name, avatar,
	)
	updated, err := scanUser(row)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update profile")
	}
	return c.JSON(updated)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var body changePasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "new password required")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.OldPassword)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	if _, err := h.DB.Exec(userContext(c),
		`UPDATE users SET password_hash = $2 WHERE id = $1::uuid`,
		user.ID, string(hashed),
	); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not change password")
	}

	ip := c.IP()
	_ = audit.Write(userContext(c), h.DB, audit.Entry{
		UserID:     &user.ID,
		Action:     "auth.password_change",
		EntityType: "user",
		IP:         &ip,
	})

	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) UpdatePreferences(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return fiber.NewError(fiber.StatusBadRequest, "preferences must be a JSON object")
	}

	row := h.DB.QueryRow(userContext(c),
		`UPDATE users SET preferences = $2 WHERE id = $1::uuid RETURNING `+userColumns,
		user.ID, json.RawMessage(body),
	)
	updated, err := scanUser(row)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update preferences")
	}
	return c.JSON(updated)
}

func (h *AuthHandler) currentUser(c *fiber.Ctx) (*domain.User, error) {
	userID, ok := getUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	row := h.DB.QueryRow(userContext(c), `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load user")
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Avatar, &u.Preferences, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func getUserID(c *fiber.Ctx) (string, bool) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
