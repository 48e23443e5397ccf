// internal/auth/credentials.go
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "seolens"
	// FallbackDir is the directory for file-based credential storage (when keyring fails)
	FallbackDir = ".seolens/credentials"
	// DefaultProfile is used when no profile name is given
	DefaultProfile = "default"
)

// useFileBasedStorage checks if we should use file-based storage.
// This is a fallback for environments where keyring isn't available (Codespaces, CI).
var fileBasedStorageCache *bool

func useFileBasedStorage() bool {
	if fileBasedStorageCache != nil {
		return *fileBasedStorageCache
	}

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileBasedStorageCache = &result
		return true
	}

	// Try to use keyring, but if it fails, use file-based storage
	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := (err != nil)
	fileBasedStorageCache = &result

	if !result {
		keyring.Delete(KeyringService, testKey)
	}

	return result
}

func getCredentialDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

func getCredentialPath(profile string) (string, error) {
	dir, err := getCredentialDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profile+".json"), nil
}

// Credential represents a stored API credential for one collection endpoint
type Credential struct {
	Profile   string    `json:"profile"`
	Endpoint  string    `json:"endpoint"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveCredential stores a credential in the OS keyring or a fallback file
func SaveCredential(cred *Credential) error {
	if cred.Profile == "" {
		cred.Profile = DefaultProfile
	}
	if cred.APIKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	if useFileBasedStorage() {
		path, err := getCredentialPath(cred.Profile)
		if err != nil {
			return fmt.Errorf("failed to get credential path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save credential file: %w", err)
		}
		return nil
	}

	// Stored in keyring, encrypted by the OS
	if err := keyring.Set(KeyringService, cred.Profile, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	return nil
}

// LoadCredential retrieves a credential from the OS keyring or fallback file
func LoadCredential(profile string) (*Credential, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	var data string

	if useFileBasedStorage() {
		path, err := getCredentialPath(profile)
		if err != nil {
			return nil, fmt.Errorf("failed to get credential path: %w", err)
		}
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load credential file: %w", err)
		}
		data = string(fileData)
	} else {
		var err error
		data, err = keyring.Get(KeyringService, profile)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("failed to deserialize credential: %w", err)
	}

	return &cred, nil
}

// DeleteCredential removes a credential from the OS keyring or fallback file
func DeleteCredential(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}

	if useFileBasedStorage() {
		path, err := getCredentialPath(profile)
		if err != nil {
			return fmt.Errorf("failed to get credential path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete credential file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, profile); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// ListProfiles returns the names of all stored credential profiles.
// Keyring backends cannot enumerate keys, so listing is file-storage only.
func ListProfiles() ([]string, error) {
	if !useFileBasedStorage() {
		return nil, fmt.Errorf("listing profiles requires file-based storage")
	}

	dir, err := getCredentialDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var profiles []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			profiles = append(profiles, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return profiles, nil
}
