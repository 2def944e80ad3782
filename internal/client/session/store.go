package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/credisphere/credisphere/internal/client/apiclient"
)

// Storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Snapshot is the persisted part of a session. A zero Snapshot means
// anonymous.
type Snapshot struct {
	Token string
	User  apiclient.User
}

func (s Snapshot) empty() bool { return s.Token == "" }

// Store persists a session.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Clear(ctx context.Context) error
}

// Storage is a string key/value store in the shape of browser local storage.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// KeyValueStore keeps the token and the JSON encoded user under TokenKey
// and UserKey of a Storage.
type KeyValueStore struct {
	Storage Storage
}

func (s KeyValueStore) Load(ctx context.Context) (Snapshot, error) {
	token, ok, err := s.Storage.GetItem(TokenKey)
	if err != nil || !ok || token == "" {
		return Snapshot{}, err
	}
	raw, ok, err := s.Storage.GetItem(UserKey)
	if err != nil || !ok {
		return Snapshot{}, err
	}
	var user apiclient.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return Snapshot{}, fmt.Errorf("session: decode stored user: %w", err)
	}
	return Snapshot{Token: token, User: user}, nil
}

func (s KeyValueStore) Save(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap.User)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.Storage.SetItem(TokenKey, snap.Token); err != nil {
		return err
	}
	return s.Storage.SetItem(UserKey, string(raw))
}

func (s KeyValueStore) Clear(ctx context.Context) error {
	return errors.Join(s.Storage.RemoveItem(TokenKey), s.Storage.RemoveItem(UserKey))
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: map[string]string{}}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// FileStorage keeps items in a JSON object on disk. Every write replaces the
// file atomically.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage returns a FileStorage backed by path. The file is created on
// first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultPath is the session file used by the command line client.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credisphere", "session.json"), nil
}

func (f *FileStorage) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

func (f *FileStorage) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.read()
	if err != nil {
		return err
	}
	items[key] = value
	return f.write(items)
}

func (f *FileStorage) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.write(items)
}

func (f *FileStorage) read() (map[string]string, error) {
	items := map[string]string{}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", f.path, err)
	}
	return items, nil
}

func (f *FileStorage) write(items map[string]string) error {
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("session: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
