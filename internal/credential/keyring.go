package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
	"github.com/mitchellh/go-homedir"
)

const serviceName = "qtplanner"

// SessionKey is the keyring entry holding the signed-in session token.
const SessionKey = "session-token"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = errors.New("credential not found")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	dir, err := homedir.Expand("~/.config/qtplanner/credentials")
	if err != nil {
		return nil, fmt.Errorf("resolving credential dir: %w", err)
	}
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("qtplanner-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "qtplanner session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring. A missing
// key is not an error.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Keyring is a TokenStore backed by the system keyring.
type Keyring struct {
	Key string
}

// NewKeyring returns a keyring TokenStore under SessionKey.
func NewKeyring() *Keyring {
	return &Keyring{Key: SessionKey}
}

func (k *Keyring) Load() (string, error) {
	token, err := Get(k.Key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}

func (k *Keyring) Save(token string) error { return Set(k.Key, token) }

func (k *Keyring) Clear() error { return Delete(k.Key) }

// Memory is an in-process TokenStore.
type Memory struct {
	mu    sync.Mutex
	token string
}

func (m *Memory) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
