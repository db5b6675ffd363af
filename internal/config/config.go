// Package config resolves the course configuration from nbmend.toml and
// NBMEND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "nbmend.toml"

// Duration decodes from strings such as "90s" or "2m" in TOML and env.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Course is the resolved configuration of one course.
type Course struct {
	Course  CourseSection  `toml:"course"`
	Execute ExecuteSection `toml:"execute"`
	Report  ReportSection  `toml:"report"`
	Cache   CacheSection   `toml:"cache"`

	// Path is the file the configuration was read from, empty when none.
	Path string `toml:"-"`
}

type CourseSection struct {
	Dir       string `toml:"dir" env:"NBMEND_COURSE_DIR"`
	Source    string `toml:"source" env:"NBMEND_SOURCE_DIR"`
	Submitted string `toml:"submitted" env:"NBMEND_SUBMITTED_DIR"`
	Stage     string `toml:"stage" env:"NBMEND_STAGE_DIR"`
	Jobs      int    `toml:"jobs" env:"NBMEND_JOBS"`
}

type ExecuteSection struct {
	Enabled     bool     `toml:"enabled" env:"NBMEND_EXECUTE"`
	Command     string   `toml:"command" env:"NBMEND_EXECUTE_COMMAND"`
	CellTimeout Duration `toml:"timeout" env:"NBMEND_EXECUTE_TIMEOUT"`
	Deadline    Duration `toml:"deadline" env:"NBMEND_EXECUTE_DEADLINE"`
}

type ReportSection struct {
	Dir string `toml:"dir" env:"NBMEND_REPORT_DIR"`
}

type CacheSection struct {
	Enabled bool   `toml:"enabled" env:"NBMEND_CACHE"`
	Dir     string `toml:"dir" env:"NBMEND_CACHE_DIR"`
}

// Default returns the configuration used when nothing is set.
func Default() Course {
	return Course{
		Execute: ExecuteSection{
			Enabled:     true,
			Command:     "jupyter",
			CellTimeout: Duration(60 * time.Second),
			Deadline:    Duration(10 * time.Minute),
		},
		Cache: CacheSection{Enabled: true},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile decodes path over base. Relative directories are resolved
// against the file's directory, and the course directory defaults to it.
func LoadFile(path string, base Course) (Course, error) {
	cfg := base
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Course{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Course{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	root := filepath.Dir(path)
	if !meta.IsDefined("course", "dir") {
		cfg.Course.Dir = root
	}
	cfg.Course.Dir = under(root, cfg.Course.Dir)
	cfg.Course.Source = under(root, cfg.Course.Source)
	cfg.Course.Submitted = under(root, cfg.Course.Submitted)
	cfg.Course.Stage = under(root, cfg.Course.Stage)
	cfg.Report.Dir = under(root, cfg.Report.Dir)
	cfg.Cache.Dir = under(root, cfg.Cache.Dir)
	cfg.Path = path
	return cfg, cfg.Validate()
}

func under(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Resolve builds the configuration from defaults, the nearest nbmend.toml
// above startDir, then the environment.
func Resolve(startDir string) (Course, error) {
	cfg := Default()
	path, ok, err := Find(startDir)
	if err != nil {
		return Course{}, err
	}
	if ok {
		if cfg, err = LoadFile(path, cfg); err != nil {
			return Course{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Course{}, err
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c Course) Validate() error {
	if c.Execute.CellTimeout < 0 || c.Execute.Deadline < 0 {
		return fmt.Errorf("execute timeouts must not be negative")
	}
	if c.Execute.Enabled && strings.TrimSpace(c.Execute.Command) == "" {
		return fmt.Errorf("execute.command is empty")
	}
	if c.Course.Jobs < 0 {
		return fmt.Errorf("course.jobs must not be negative")
	}
	return nil
}
