package portal

import (
	"context"
	"encoding/json"
	"os"
	"sync"
)

// Storage persists credentials between process runs, the way a browser
// keeps a session across page loads.
type Storage interface {
	Load() (Credentials, error)
	Save(Credentials) error
}

// FileStorage keeps the credentials as a JSON file. An empty credentials
// value removes the file.
type FileStorage struct {
	Path string
}

func (f FileStorage) Load() (Credentials, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (f FileStorage) Save(creds Credentials) error {
	if creds.Token == "" {
		err := os.Remove(f.Path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}

// Session holds the logged-in identity and notifies subscribers when it
// changes, so dependent views can re-render.
type Session struct {
	client  *Client
	storage Storage

	mu          sync.RWMutex
	creds       Credentials
	subscribers []func(Credentials)
}

func NewSession(baseURL string) *Session {
	s := &Session{}
	s.client = NewClient(baseURL, s.Token)
	return s
}

// NewSessionWithStorage restores any persisted credentials on startup and
// keeps the storage in sync with later changes. A corrupt or unreadable
// store just means starting logged out.
func NewSessionWithStorage(baseURL string, storage Storage) *Session {
	s := NewSession(baseURL)
	s.storage = storage
	if creds, err := storage.Load(); err == nil {
		s.mu.Lock()
		s.creds = creds
		s.mu.Unlock()
	}
	return s
}

// Client returns the API client bound to this session's token.
func (s *Session) Client() *Client {
	return s.client
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	creds, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(creds)
	return nil
}

func (s *Session) Register(ctx context.Context, name, email, password string) error {
	creds, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	s.set(creds)
	return nil
}

func (s *Session) Logout() {
	s.set(Credentials{})
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Role
}

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Name
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Subscribe registers a callback invoked on every login, logout or
// credential change. The callback runs synchronously under no lock.
func (s *Session) Subscribe(fn func(Credentials)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Session) set(creds Credentials) {
	s.mu.Lock()
	s.creds = creds
	subscribers := append([]func(Credentials){}, s.subscribers...)
	s.mu.Unlock()

	if s.storage != nil {
		_ = s.storage.Save(creds)
	}
	for _, fn := range subscribers {
		fn(creds)
	}
}
