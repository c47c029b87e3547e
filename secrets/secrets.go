// Package secrets provides storage for the Mullvad account token.
// It uses the system keyring when available, falling back to an
// encrypted local file when not. A legacy plaintext token file can be
// imported once so existing installations keep working.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"github.com/yllada/mullvad-supervisor/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "mullvad-supervisor"
	// tokenKey is the single entry the supervisor manages.
	tokenKey = "account-token"
	// keySalt fixes the PBKDF2 salt for the local fallback key.
	keySalt = "mullvad-supervisor-credentials-v1"
	// keyIterations is the PBKDF2 iteration count.
	keyIterations = 4096
)

// ErrNotFound is returned when no token is stored anywhere.
var ErrNotFound = errors.New("account token not found")

// Store holds the account token in the system keyring or, when the
// keyring is unavailable, in an encrypted local file. It satisfies
// common.TokenStore.
type Store struct {
	mu        sync.RWMutex
	useLocal  bool
	localFile string
	legacy    string
	key       []byte
	local     map[string]string
}

// Open initializes a store rooted at the application config directory.
// legacyFile, if non-empty, names a plaintext token file that is imported
// on first read. The system keyring is probed once; if it rejects writes
// the store works against the encrypted local file instead.
func Open(legacyFile string) (*Store, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return nil, err
	}

	s := &Store{
		localFile: filepath.Join(configDir, common.CredentialsFileName),
		legacy:    legacyFile,
		key:       deriveKey(),
		local:     make(map[string]string),
	}

	// Probe the keyring with a throwaway entry.
	probe := serviceName + "-probe"
	if err := keyring.Set(serviceName, probe, "probe"); err != nil {
		s.useLocal = true
		s.loadLocal()
	} else {
		keyring.Delete(serviceName, probe)
	}

	return s, nil
}

// deriveKey builds the local-file encryption key from machine-specific
// data, so the credentials file is not portable between hosts.
func deriveKey() []byte {
	hostname, _ := os.Hostname()
	machineID := readMachineID()
	keyData := fmt.Sprintf("%s-%s-%d", hostname, machineID, os.Getuid())
	return pbkdf2.Key([]byte(keyData), []byte(keySalt), keyIterations, 32, sha256.New)
}

func readMachineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return "default-machine-id"
}

// Token retrieves the account token. Lookup order: system keyring,
// encrypted local file, legacy plaintext file (imported on hit).
// Returns ErrNotFound when no source has a token; absence is a normal,
// non-fatal condition for callers.
func (s *Store) Token() (string, error) {
	if !s.useLocal {
		token, err := keyring.Get(serviceName, tokenKey)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, keyring.ErrNotFound) {
			common.LogWarn("Keyring read failed, trying local store: %v", err)
		}
	}

	s.mu.RLock()
	token, ok := s.local[tokenKey]
	s.mu.RUnlock()
	if ok {
		return token, nil
	}

	return s.importLegacy()
}

// importLegacy reads the plaintext legacy token file, stores the token
// properly, and returns it. The legacy file itself is left untouched.
func (s *Store) importLegacy() (string, error) {
	if s.legacy == "" {
		return "", ErrNotFound
	}

	data, err := os.ReadFile(s.legacy)
	if err != nil {
		return "", ErrNotFound
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}

	common.LogInfo("Importing account token from legacy file %s", s.legacy)
	if err := s.StoreToken(token); err != nil {
		common.LogWarn("Could not persist imported token: %v", err)
	}
	return token, nil
}

// StoreToken saves the account token.
func (s *Store) StoreToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if !s.useLocal {
		if err := keyring.Set(serviceName, tokenKey, token); err == nil {
			return nil
		}
		// Keyring went away underneath us; fall back for good.
		s.useLocal = true
		s.loadLocal()
	}

	s.mu.Lock()
	s.local[tokenKey] = token
	s.mu.Unlock()
	return s.saveLocal()
}

// DeleteToken removes the stored account token from all backends.
func (s *Store) DeleteToken() error {
	if !s.useLocal {
		keyring.Delete(serviceName, tokenKey)
	}

	s.mu.Lock()
	delete(s.local, tokenKey)
	s.mu.Unlock()
	return s.saveLocal()
}

// Exists reports whether a token is retrievable from any backend.
func (s *Store) Exists() bool {
	_, err := s.Token()
	return err == nil
}

func (s *Store) loadLocal() {
	data, err := os.ReadFile(s.localFile)
	if err != nil {
		return
	}

	decrypted, err := decrypt(s.key, data)
	if err != nil {
		common.LogWarn("Could not decrypt credentials file: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	json.Unmarshal(decrypted, &s.local)
}

func (s *Store) saveLocal() error {
	s.mu.RLock()
	data, err := json.Marshal(s.local)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	encrypted, err := encrypt(s.key, data)
	if err != nil {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}

	return os.WriteFile(s.localFile, encrypted, 0600)
}

func encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(key, data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
