package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const (
	keychainService = "abistudio"
	// PasswordEnv holds the passphrase for the encrypted file keyring used
	// when no OS keychain is available.
	PasswordEnv = "ABISTUDIO_KEYRING_PASSWORD"
)

// ErrKeyNotFound is returned when a key reference is unknown.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore keeps private keys out of wallets.json.
type KeyStore interface {
	Store(name, hexKey string) (ref string, err error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

func keyRef(name string) string {
	return keychainService + "." + name
}

// Keyring is a KeyStore backed by the OS keychain, falling back to an
// encrypted file keyring under dir.
type Keyring struct {
	ring keyring.Keyring
}

// OpenKeyring opens the OS keychain. On Linux without a secret service it
// uses an encrypted file keyring in dir, unlocked with $ABISTUDIO_KEYRING_PASSWORD.
func OpenKeyring(dir string) (*Keyring, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  dir,
		FilePasswordFunc:         filePassword,
	}
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return OpenFileKeyring(dir, filePassword)
	}
	return &Keyring{ring: ring}, nil
}

// OpenFileKeyring opens an encrypted file keyring in dir.
func OpenFileKeyring(dir string, password keyring.PromptFunc) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: password,
	})
	if err != nil {
		return nil, fmt.Errorf("opening file keyring: %w", err)
	}
	return &Keyring{ring: ring}, nil
}

func filePassword(string) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("no OS keychain available; set %s", PasswordEnv)
}

func (k *Keyring) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	if err := k.ring.Set(keyring.Item{Key: ref, Data: []byte(hexKey), Label: "abistudio wallet " + name}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

func (k *Keyring) Retrieve(ref string) (string, error) {
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

func (k *Keyring) Delete(ref string) error {
	err := k.ring.Remove(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryKeyStore keeps keys in process memory.
type MemoryKeyStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKeyStore creates an empty MemoryKeyStore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{data: make(map[string]string)}
}

func (k *MemoryKeyStore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = hexKey
	return ref, nil
}

func (k *MemoryKeyStore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *MemoryKeyStore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}
