package identity

import "context"

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	// FindByLogin matches a username or an email address
	FindByLogin(ctx context.Context, login string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, user *User) error
}
