package handler

// In-memory fakes standing in for the MySQL user store, the Redis session
// store and the SMTP sender.  They implement the same interfaces the real
// collaborators do, including the sentinel errors handlers match on.

import (
	"context"
	"fmt"
	"strings"

	"github.com/miravel/authportal/internal/model"
	"github.com/miravel/authportal/internal/repository"
	"github.com/miravel/authportal/internal/session"
)

type fakeUserStore struct {
	nextID uint64
	users  map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, username, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Username == username {
			return 0, repository.ErrUsernameExists
		}
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	f.users[f.nextID] = model.User{ID: f.nextID, Username: username, Email: email, PasswordHash: passwordHash}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uint64, username, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range f.users {
		if other.ID == id {
			continue
		}
		if other.Username == username {
			return repository.ErrUsernameExists
		}
		if other.Email == email {
			return repository.ErrEmailExists
		}
	}
	u.Username = username
	u.Email = email
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return nil
}

type fakeSessionStore struct {
	counter  int
	sessions map[string]session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]session.Session{}}
}

func (f *fakeSessionStore) Create(_ context.Context, userID uint64, remember bool) (session.Session, error) {
	f.counter++
	s := session.Session{ID: fmt.Sprintf("sess-%d", f.counter), UserID: userID, Remember: remember}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionStore) Get(_ context.Context, id string) (session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) Destroy(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) DestroyAllForUser(_ context.Context, userID uint64) error {
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type recordingSender struct {
	sent []sentMail
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.sent = append(r.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
