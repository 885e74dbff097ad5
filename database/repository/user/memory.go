package userRepo

import (
	"fmt"
	"sync"
	"time"

	"knead/models"
)

// MemoryUserRepo is the in-memory UserRepository used as an injected test
// double. An optional grant hook lets tests simulate the capability write
// failing after the application status write succeeded.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User

	// GrantErr, when set, is returned by the next GrantCapability call.
	GrantErr error
}

// NewMemoryUserRepo creates an empty in-memory user store.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := user
	return &copied, nil
}

func (r *MemoryUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with id %s not found", user.ID)
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepo) GrantCapability(id string, cap string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.GrantErr != nil {
		err := r.GrantErr
		r.GrantErr = nil
		return err
	}

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with id %s not found", id)
	}
	if !user.HasCapability(cap) {
		user.Capabilities = append(user.Capabilities, cap)
		user.UpdatedAt = time.Now()
		r.users[id] = user
	}
	return nil
}

func (r *MemoryUserRepo) RevokeCapability(id string, cap string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with id %s not found", id)
	}
	// Filter into a fresh slice: the backing array is shared with copies
	// handed out by GetByID, so compacting in place would mutate them.
	kept := make([]string, 0, len(user.Capabilities))
	for _, c := range user.Capabilities {
		if c != cap {
			kept = append(kept, c)
		}
	}
	user.Capabilities = kept
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}
