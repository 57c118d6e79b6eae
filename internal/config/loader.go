package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName is used for the XDG config directory.
const AppName = "rexprobe"

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = ".rexprobe.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File mirrors the configuration surface in YAML. Pointer fields stay nil
// when the key is absent so that an explicit zero can be told apart from
// "not configured".
type File struct {
	Pattern            *string           `yaml:"pattern"`
	Limit              *int              `yaml:"limit"`
	Count              *int              `yaml:"count"`
	Exhaustive         *bool             `yaml:"exhaustive"`
	Sort               []string          `yaml:"sort"`
	Threads            *int              `yaml:"threads"`
	Timeout            *time.Duration    `yaml:"timeout"`
	Interval           *time.Duration    `yaml:"interval"`
	AdaptiveThrottle   *bool             `yaml:"adaptive_throttle"`
	UserAgent          *string           `yaml:"user_agent"`
	Headers            map[string]string `yaml:"headers"`
	Proxy              *string           `yaml:"proxy"`
	Insecure           *bool             `yaml:"insecure"`
	Download           *bool             `yaml:"download"`
	DownloadThreads    *int              `yaml:"download_threads"`
	MaxBodySize        *int64            `yaml:"max_body_size"`
	DisableProgressBar *bool             `yaml:"disable_progress_bar"`
	NoColor            *bool             `yaml:"no_color"`
	OnResult           *string           `yaml:"on_result"`
	Quiet              *bool             `yaml:"quiet"`
	Format             *string           `yaml:"format"`
	LogDir             *string           `yaml:"log_dir"`
	ContentDir         *string           `yaml:"content_dir"`
}

// XDGConfigPath returns $XDG_CONFIG_HOME/rexprobe/config.yaml.
func XDGConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadConfigFile parses a YAML configuration file.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile returns the first existing configuration file in this
// order: the explicit path, ./.rexprobe.yaml, the XDG config path. It
// returns "" when none exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p := XDGConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ApplyTo copies configured values into o. explicit reports whether the
// named flag was set on the command line; such flags win over the file.
func (f *File) ApplyTo(o *Options, explicit func(flag string) bool) {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	setString(&o.Pattern, f.Pattern, explicit("pattern"))
	setInt(&o.Limit, f.Limit, explicit("limit"))
	setInt(&o.Count, f.Count, explicit("count"))
	setBool(&o.Exhaustive, f.Exhaustive, explicit("exhaustive"))
	if len(f.Sort) > 0 && !explicit("sort") {
		o.Sort = append([]string(nil), f.Sort...)
		o.SortSet = true
	}
	setInt(&o.Threads, f.Threads, explicit("threads"))
	setDuration(&o.Timeout, f.Timeout, explicit("timeout"))
	setDuration(&o.Interval, f.Interval, explicit("interval"))
	setBool(&o.AdaptiveThrottle, f.AdaptiveThrottle, explicit("adaptive-throttle"))
	setString(&o.UserAgent, f.UserAgent, explicit("user-agent"))
	if len(f.Headers) > 0 {
		merged := make(map[string]string, len(f.Headers)+len(o.Headers))
		for k, v := range f.Headers {
			merged[k] = v
		}
		// -H flags win over file headers.
		for k, v := range o.Headers {
			merged[k] = v
		}
		o.Headers = merged
	}
	setString(&o.Proxy, f.Proxy, explicit("proxy"))
	setBool(&o.Insecure, f.Insecure, explicit("insecure"))
	setBool(&o.Download, f.Download, explicit("download"))
	setInt(&o.DownloadThreads, f.DownloadThreads, explicit("download-threads"))
	if f.MaxBodySize != nil && !explicit("max-body-size") {
		o.MaxBodySize = *f.MaxBodySize
	}
	setBool(&o.DisableProgressBar, f.DisableProgressBar, explicit("disable-progress-bar"))
	setBool(&o.NoColor, f.NoColor, explicit("no-color"))
	setBool(&o.Quiet, f.Quiet, explicit("quiet"))
	setString(&o.OnResultCmd, f.OnResult, explicit("on-result"))
	setString(&o.Format, f.Format, explicit("format"))
	setString(&o.LogDir, f.LogDir, explicit("log-dir"))
	setString(&o.ContentDir, f.ContentDir, explicit("content-dir"))
}

func setString(dst *string, v *string, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}

func setInt(dst *int, v *int, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *time.Duration, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}
