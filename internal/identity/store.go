package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var (
	ErrNotFound  = errors.New("identity not found")
	ErrDuplicate = errors.New("identity already exists")
	ErrDecrypt   = errors.New("failed to decrypt identity vault (wrong password?)")
)

type vaultFile struct {
	KDF  *kdfParams `json:"kdf,omitempty"`
	Salt []byte     `json:"salt"`
	Data []byte     `json:"data"`
}

var _ Provider = (*FileStore)(nil)

// FileStore implements Provider with an AES-256-GCM encrypted vault file.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	kdf        kdfParams
	key        []byte
	salt       []byte
	identities map[string]Identity
}

// OpenFileStore opens the vault at path, creating an empty one if the file
// does not exist yet.
func OpenFileStore(path string, password []byte) (*FileStore, error) {
	s := &FileStore{
		path:       path,
		kdf:        defaultKDF,
		identities: make(map[string]Identity),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if s.salt, err = generateSalt(); err != nil {
			return nil, err
		}
		s.key = s.kdf.deriveKey(password, s.salt)
		return s, s.save()
	}
	if err != nil {
		return nil, err
	}

	var vf vaultFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("corrupt identity vault %s: %w", path, err)
	}
	if vf.KDF != nil {
		s.kdf = *vf.KDF
	}
	s.salt = vf.Salt
	s.key = s.kdf.deriveKey(password, vf.Salt)

	plaintext, err := open(s.key, vf.Data)
	if err != nil {
		return nil, ErrDecrypt
	}
	if err := json.Unmarshal(plaintext, &s.identities); err != nil {
		return nil, fmt.Errorf("corrupt identity data: %w", err)
	}
	return s, nil
}

// save encrypts the identity map and replaces the vault file atomically.
func (s *FileStore) save() error {
	plaintext, err := json.Marshal(s.identities)
	if err != nil {
		return err
	}
	encrypted, err := seal(s.key, plaintext)
	if err != nil {
		return err
	}
	kdf := s.kdf
	data, err := json.Marshal(vaultFile{KDF: &kdf, Salt: s.salt, Data: encrypted})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".identities-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// List returns summaries of all stored identities sorted by name.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]Summary, 0, len(s.identities))
	for _, id := range s.identities {
		summaries = append(summaries, id.Summarize())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

// Get returns the identity with the given name.
func (s *FileStore) Get(name string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return &id, nil
}

// Add validates and stores a new identity.
func (s *FileStore) Add(id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[id.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, id.Name)
	}
	s.identities[id.Name] = id
	return s.save()
}

// Remove deletes an identity by name.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[name]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.identities, name)
	return s.save()
}
