package project

import (
	"strings"

	"github.com/xyproto/env/v2"
)

// Environment variables that override [build] settings. They apply after
// minic.toml so CI can tune a build without editing the manifest.
const (
	EnvJobs     = "MINIC_JOBS"
	EnvOutDir   = "MINIC_OUT_DIR"
	EnvCacheDir = "MINIC_CACHE_DIR"
	EnvNoCache  = "MINIC_NO_CACHE"
)

// ApplyEnv overlays the MINIC_* variables onto c and revalidates it.
func (c *Config) ApplyEnv() error {
	if env.Has(EnvJobs) {
		c.Build.Jobs = env.Int(EnvJobs, c.Build.Jobs)
	}
	if dir := strings.TrimSpace(env.Str(EnvOutDir)); dir != "" {
		c.Build.OutDir = dir
	}
	if dir := strings.TrimSpace(env.Str(EnvCacheDir)); dir != "" {
		c.Build.CacheDir = dir
	}
	if env.Bool(EnvNoCache) {
		c.Build.Cache = false
	}
	return c.Validate()
}
