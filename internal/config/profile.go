package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Profile is the per-device identity written by `caja init`. It lives in
// the user state directory so reinstalling the binary never changes which
// device this terminal claims to be.
type Profile struct {
	StoreID    string `toml:"store_id"`
	DeviceID   string `toml:"device_id"`
	BackendURL string `toml:"backend_url,omitempty"`
	AuthToken  string `toml:"auth_token,omitempty"`
	NATSURL    string `toml:"nats_url,omitempty"`
}

// ProfilePath returns the location of the profile file, creating the
// parent directory if needed. CAJA_PROFILE overrides it, mainly for tests.
func ProfilePath() (string, error) {
	if p := os.Getenv("CAJA_PROFILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "caja")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.toml"), nil
}

// LoadProfile reads the device profile. A missing file is not an error:
// commands that need identity validate it themselves.
func LoadProfile() (Profile, error) {
	path, err := ProfilePath()
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return Profile{}, nil
		}
		return Profile{}, err
	}
	return p, nil
}

// SaveProfile writes the device profile with owner-only permissions.
func SaveProfile(p Profile) error {
	path, err := ProfilePath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}
