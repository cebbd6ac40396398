//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-engine/errors"
)

const (
	userByEmailPrefix = "user:email:"
	userByNamePrefix  = "user:name:"
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	ListUsers() ([]User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the persisted account record. The engine itself never sees
// it; only the HTTP auth surface and userctl do.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser persists the account under its email key, with a second
// key marking the username as taken. Both uniqueness checks and both
// writes happen in one transaction, so concurrent signups cannot end
// up sharing a name.
func (u UserRepository) CreateUser(username, email, hashedPassword string) (string, error) {
	user := User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte(userByNamePrefix + strings.ToLower(username))
		if _, err := txn.Get(nameKey); err == nil {
			return errors.ErrUsernameTaken
		}

		emailKey := []byte(userByEmailPrefix + strings.ToLower(email))
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrEmailTaken
		}

		if err := txn.Set(emailKey, data); err != nil {
			return err
		}
		// The marker stores the email so the record stays reachable
		// from either key.
		return txn.Set(nameKey, []byte(strings.ToLower(email)))
	})
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

// GetUserByEmail retrieves an account by its email key.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var user User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userByEmailPrefix + strings.ToLower(email)))
		if err != nil {
			return err // Handled as ErrInvalidCredentials by the auth service
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// ListUsers scans every account record, for userctl's read-only view.
func (u UserRepository) ListUsers() ([]User, error) {
	var users []User

	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userByEmailPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user User
				if err := json.Unmarshal(val, &user); err != nil {
					return err
				}
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}
