package authcore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lessonpath/authcore/password"
)

// memoryUsers is an in-memory UserProvider for engine tests. It stores
// copies, so mutations only stick through the update methods, the same
// way a real database behaves.
type memoryUsers struct {
	mu     sync.Mutex
	byID   map[string]*UserRecord
	nextID int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]*UserRecord)}
}

func cloneUser(u *UserRecord) *UserRecord {
	c := *u
	if u.Code != nil {
		code := *u.Code
		c.Code = &code
	}
	return &c
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, ErrUserNotFound
}

func (m *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) Create(_ context.Context, input CreateUserInput) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == input.Email {
			return nil, ErrDuplicateEmail
		}
	}
	m.nextID++
	code := input.Code
	user := &UserRecord{
		ID:           fmt.Sprintf("user-%d", m.nextID),
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		Code:         &code,
	}
	m.byID[user.ID] = user
	return cloneUser(user), nil
}

func (m *memoryUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryUsers) UpdateVerificationCode(_ context.Context, id string, code VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Code = &code
	return nil
}

func (m *memoryUsers) UpdateActiveFlag(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (m *memoryUsers) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

type sentMail struct {
	To       string
	Template string
	Data     map[string]string
}

// mailRecorder captures outgoing mail so tests can fish delivered codes
// out of the asynchronous delivery path.
type mailRecorder struct {
	ch chan sentMail
}

func newMailRecorder() *mailRecorder {
	return &mailRecorder{ch: make(chan sentMail, 8)}
}

func (m *mailRecorder) Send(to, template string, data map[string]string) error {
	m.ch <- sentMail{To: to, Template: template, Data: data}
	return nil
}

func (m *mailRecorder) wait(t *testing.T) sentMail {
	t.Helper()
	select {
	case mail := <-m.ch:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail delivery")
		return sentMail{}
	}
}

var testSigningSecret = []byte("0123456789abcdef0123456789abcdef")

// cheapPasswordConfig keeps argon2 fast in tests while staying above the
// hasher's hard minimums.
func cheapPasswordConfig() password.Config {
	return password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
}

func newTestEngine(t *testing.T) (*Engine, *memoryUsers, *mailRecorder, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	users := newMemoryUsers()
	mails := newMailRecorder()

	engine, err := New().
		WithConfig(Config{
			Token: TokenConfig{
				AccessTTL:  time.Minute,
				RefreshTTL: time.Hour,
				Secret:     testSigningSecret,
			},
			Password: cheapPasswordConfig(),
		}).
		WithRedis(rdb).
		WithUserProvider(users).
		WithMailer(mails).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	return engine, users, mails, mr
}

// registerUser runs Register and returns the new user ID and the mailed
// activation code.
func registerUser(t *testing.T, engine *Engine, mails *mailRecorder, email, pass string) (string, string) {
	t.Helper()
	id, err := engine.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  pass,
		FirstName: "John",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	mail := mails.wait(t)
	if mail.Template != mailTemplateActivation {
		t.Fatalf("expected activation mail, got %q", mail.Template)
	}
	return id, mail.Data["code"]
}
