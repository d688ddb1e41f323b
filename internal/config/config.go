// Package config loads and validates the respawn.yaml project file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	resperrors "github.com/akimenko/respawn/internal/errors"
	"github.com/akimenko/respawn/internal/tmux"
	"github.com/akimenko/respawn/internal/venv"
)

// DefaultFileName is the config file respawn looks for in the working
// directory when --config is not given.
const DefaultFileName = "respawn.yaml"

// DefaultWindow is the window name used when a profile does not set one.
const DefaultWindow = "main"

// Env describes the optional runtime environment bootstrap for a profile.
// An empty Path disables the bootstrap entirely.
type Env struct {
	Path        string          `yaml:"path"`
	Manifest    string          `yaml:"manifest"`
	Interpreter string          `yaml:"interpreter"`
	Verify      venv.VerifyMode `yaml:"verify"`
}

// Enabled reports whether the profile provisions an environment.
func (e Env) Enabled() bool {
	return e.Path != ""
}

// Profile describes one launchable session.
type Profile struct {
	Session string   `yaml:"session"`
	Window  string   `yaml:"window"`
	Workdir string   `yaml:"workdir"`
	Command string   `yaml:"command"`
	Env     Env      `yaml:"env"`
	Watch   []string `yaml:"watch"` // extra paths the watch command monitors
}

// Config is the parsed respawn.yaml.
type Config struct {
	DefaultProfile string             `yaml:"default_profile"`
	Notifications  bool               `yaml:"notifications"`
	Profiles       map[string]Profile `yaml:"profiles"`

	// Dir is the directory the config was loaded from; relative profile
	// paths resolve against it.
	Dir string `yaml:"-"`
}

// Load reads and validates a config file. An empty path means
// DefaultFileName in the current directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, resperrors.ConfigLoadFailed(path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, resperrors.ConfigLoadFailed(path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, resperrors.ConfigLoadFailed(path, err)
	}
	cfg.Dir = filepath.Dir(abs)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills per-profile defaults after unmarshaling.
func (c *Config) applyDefaults() {
	for name, p := range c.Profiles {
		if p.Window == "" {
			p.Window = DefaultWindow
		}
		if p.Env.Enabled() {
			if p.Env.Manifest == "" {
				p.Env.Manifest = "requirements.txt"
			}
			if p.Env.Interpreter == "" {
				p.Env.Interpreter = venv.DefaultInterpreter
			}
			if p.Env.Verify == "" {
				p.Env.Verify = venv.VerifyNone
			}
		}
		c.Profiles[name] = p
	}
	if c.DefaultProfile == "" && len(c.Profiles) == 1 {
		for name := range c.Profiles {
			c.DefaultProfile = name
		}
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	if len(c.Profiles) == 0 {
		return resperrors.ConfigInvalid("no profiles defined")
	}
	if c.DefaultProfile == "" {
		return resperrors.ConfigInvalid("default_profile is required when multiple profiles are defined")
	}
	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		return resperrors.ConfigInvalid(fmt.Sprintf("default_profile %q is not a defined profile", c.DefaultProfile))
	}

	for name, p := range c.Profiles {
		if p.Session == "" {
			return resperrors.ConfigInvalid(fmt.Sprintf("profile %q: session name is required", name))
		}
		if err := tmux.ValidateSessionName(p.Session); err != nil {
			return resperrors.ConfigInvalid(fmt.Sprintf("profile %q: %v", name, err))
		}
		if p.Command == "" {
			return resperrors.ConfigInvalid(fmt.Sprintf("profile %q: command is required", name))
		}
		if p.Env.Enabled() {
			switch p.Env.Verify {
			case venv.VerifyNone, venv.VerifyHash:
			default:
				return resperrors.ConfigInvalid(fmt.Sprintf("profile %q: unknown env verify mode %q", name, p.Env.Verify))
			}
		}
	}
	return nil
}

// Profile returns the named profile, or the default when name is empty.
// Relative paths in the returned profile are resolved against the config dir.
func (c *Config) Profile(name string) (string, Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return "", Profile{}, resperrors.ProfileNotFound(name)
	}
	return name, c.resolve(p), nil
}

// resolve anchors relative profile paths at the config directory so that
// launches behave the same regardless of the caller's working directory.
func (c *Config) resolve(p Profile) Profile {
	if p.Workdir == "" {
		p.Workdir = c.Dir
	} else if !filepath.IsAbs(p.Workdir) {
		p.Workdir = filepath.Join(c.Dir, p.Workdir)
	}
	if p.Env.Enabled() {
		if !filepath.IsAbs(p.Env.Path) {
			p.Env.Path = filepath.Join(p.Workdir, p.Env.Path)
		}
		if !filepath.IsAbs(p.Env.Manifest) {
			p.Env.Manifest = filepath.Join(p.Workdir, p.Env.Manifest)
		}
	}
	if len(p.Watch) > 0 {
		resolved := make([]string, len(p.Watch))
		for i, w := range p.Watch {
			if filepath.IsAbs(w) {
				resolved[i] = w
			} else {
				resolved[i] = filepath.Join(p.Workdir, w)
			}
		}
		p.Watch = resolved
	}
	return p
}
