package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/model"
)

// UserUpserter is implemented by service.UserService.
type UserUpserter interface {
	Upsert(ctx context.Context, email, name, password string, role model.Role) (*model.User, error)
}

// DemoUser is an account created by `seed users`.
type DemoUser struct {
	Email    string
	Name     string
	Password string
	Role     model.Role
}

// DemoUsers returns the default student and admin accounts.
func DemoUsers(studentPassword, adminPassword string) []DemoUser {
	return []DemoUser{
		{Email: "student@example.com", Name: "Eco Traveler", Password: studentPassword, Role: model.RoleStudent},
		{Email: "admin@example.com", Name: "Expedition Leader", Password: adminPassword, Role: model.RoleAdmin},
	}
}

// ApplyUsers creates or resets each account. Existing passwords are overwritten.
func ApplyUsers(ctx context.Context, users UserUpserter, demo []DemoUser, log zerolog.Logger) error {
	for _, d := range demo {
		u, err := users.Upsert(ctx, d.Email, d.Name, d.Password, d.Role)
		if err != nil {
			return fmt.Errorf("upsert user %q: %w", d.Email, err)
		}
		log.Info().Int("user_id", u.ID).Str("email", u.Email).Str("role", string(u.Role)).Msg("Seeded user")
	}
	return nil
}
