// Package config loads and validates WinDusky's TOML configuration: the
// auto-overlay rule tables, the color-effect cycle, and every hotkey
// binding, falling back to a bundled default whenever the user's file is
// missing, empty, or unparsable.
package config

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/yakrider/WinDusky/effects"
	"github.com/yakrider/WinDusky/gamma"
	"github.com/yakrider/WinDusky/overlay"
	"github.com/yakrider/WinDusky/rules"
)

//go:embed WinDusky.conf.toml
var embeddedDefault embed.FS

// ConfFileName is the on-disk name of the user configuration file, kept
// beside the executable or under the per-user app-data directory.
const ConfFileName = "WinDusky.conf.toml"

// HotkeyBinding is one configured {key, modifiers} pair.
type HotkeyBinding struct {
	Key       string   `toml:"key"`
	Modifiers []string `toml:"modifiers"`
}

// AutoOverlayExe pins a specific executable to an effect (or the default
// effect, when Effect is empty).
type AutoOverlayExe struct {
	Exe    string `toml:"exe"`
	Effect string `toml:"effect"`
}

// AutoOverlayClass pins a window class to an effect, optionally excluding
// specific executables that would otherwise match.
type AutoOverlayClass struct {
	ClassName     string   `toml:"class_name"`
	Effect        string   `toml:"effect"`
	ExclusionExes []string `toml:"exclusion_exes"`
}

// ColorEffectSpec is a user-defined color matrix appended to the built-in
// effect table.
type ColorEffectSpec struct {
	Effect    string     `toml:"effect"`
	Transform [25]float32 `toml:"transform"`
}

// GammaPresetSpec is a named gamma/brightness/contrast + color-temperature
// combination, appended to the gamma controller's preset cycle.
type GammaPresetSpec struct {
	Preset     string  `toml:"preset"`
	Gamma      float32 `toml:"gamma"`
	Bright     float32 `toml:"bright"`
	Contrast   float32 `toml:"contrast"`
	ColorTempK uint32  `toml:"color_temp"`
}

// Config mirrors the on-disk TOML schema field for field; toml tags carry
// the exact key names so decoding needs no translation layer.
type Config struct {
	DuskyConfVersion float64 `toml:"dusky_conf_version"`

	LoggingEnabled bool   `toml:"logging_enabled"`
	LoggingLevel   string `toml:"logging_level"`

	AutoOverlayLuminanceThreshold          float64  `toml:"auto_overlay_luminance__threshold"`
	AutoOverlayLuminanceDelayMs            float64  `toml:"auto_overlay_luminance__delay_ms"`
	AutoOverlayLuminanceExclusionExes      []string `toml:"auto_overlay_luminance__exclusion_exes"`
	AutoOverlayLuminanceUseAlternateMethod bool     `toml:"auto_overlay_luminance__use_alternate_method"`

	AutoOverlayExes          []AutoOverlayExe   `toml:"auto_overlay_exes"`
	AutoOverlayWindowClasses []AutoOverlayClass `toml:"auto_overlay_window_classes"`

	Effects           []ColorEffectSpec `toml:"effects"`
	EffectsCycleOrder []string         `toml:"effects_cycle_order"`
	EffectsDefault    string           `toml:"effects_default"`

	GammaPresets           []GammaPresetSpec `toml:"gamma_presets"`
	GammaPresetsCycleOrder []string          `toml:"gamma_presets_cycle_order"`
	GammaPresetsDefault    string            `toml:"gamma_presets_default"`

	HotkeyDuskyToggle      HotkeyBinding `toml:"hotkey__dusky_toggle"`
	HotkeyFullscreenToggle HotkeyBinding `toml:"hotkey__fullscreeen_toggle"`
	HotkeyNextEffect       HotkeyBinding `toml:"hotkey__next_effect"`
	HotkeyPrevEffect       HotkeyBinding `toml:"hotkey__prev_effect"`
	HotkeyClearOverlays    HotkeyBinding `toml:"hotkey__clear_overlays"`
	HotkeyClearOverrides   HotkeyBinding `toml:"hotkey__clear_overrides"`
	HotkeyGammaToggle      HotkeyBinding `toml:"hotkey__gamma_preset_toggle"`
	HotkeyGammaNext        HotkeyBinding `toml:"hotkey__next_gamma_preset"`
	HotkeyGammaPrev        HotkeyBinding `toml:"hotkey__prev_gamma_preset"`
	HotkeyMagToggle        HotkeyBinding `toml:"hotkey__screen_mag_toggle"`
	HotkeyMagNext          HotkeyBinding `toml:"hotkey__next_mag_level"`
	HotkeyMagPrev          HotkeyBinding `toml:"hotkey__prev_mag_level"`
}

// Manager owns the loaded configuration and the path it was (or will be)
// read from / written back to.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	filePath string
}

var (
	instance *Manager
	once     sync.Once
)

// GetManager returns the process-wide configuration manager singleton.
func GetManager() *Manager {
	once.Do(func() { instance = &Manager{} })
	return instance
}

// Load reads configPath, falling back to the bundled default whenever the
// path is empty, the file is missing or empty, or it fails to parse. The
// bundled default is always decoded first so a partial user file still
// gets every field it doesn't override. On a parse failure the bundled
// default is installed and the parse error is still returned.
func (m *Manager) Load(configPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := &Config{}
	defaultBytes, err := embeddedDefault.ReadFile("WinDusky.conf.toml")
	if err != nil {
		return fmt.Errorf("read embedded default config: %w", err)
	}
	if _, err := toml.Decode(string(defaultBytes), cfg); err != nil {
		return fmt.Errorf("parse embedded default config: %w", err)
	}

	m.filePath = configPath
	if configPath == "" {
		m.config = cfg
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			m.config = cfg
			return m.writeDefaultTo(configPath, defaultBytes)
		}
		return fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		m.config = cfg
		return m.writeDefaultTo(configPath, defaultBytes)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		fallback := &Config{}
		if _, derr := toml.Decode(string(defaultBytes), fallback); derr == nil {
			m.config = fallback
		}
		return fmt.Errorf("parse config %s: %w", configPath, err)
	}
	m.config = cfg
	return nil
}

// Reload re-reads the current config file path from scratch, the same way
// RELOAD_CONFIG is implemented.
func (m *Manager) Reload() error {
	m.mu.RLock()
	path := m.filePath
	m.mu.RUnlock()
	return m.Load(path)
}

func (m *Manager) writeDefaultTo(path string, defaultBytes []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, defaultBytes, 0o644)
}

// TriggerConfigFileReset overwrites the user's config file with the bundled
// default and reloads.
func (m *Manager) TriggerConfigFileReset() error {
	m.mu.RLock()
	path := m.filePath
	m.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("no config file path set")
	}
	defaultBytes, err := embeddedDefault.ReadFile("WinDusky.conf.toml")
	if err != nil {
		return err
	}
	if err := m.writeDefaultTo(path, defaultBytes); err != nil {
		return err
	}
	return m.Reload()
}

// Get returns the currently loaded configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetConfigDir returns the per-user app-data directory WinDusky falls back
// to when the executable's own directory isn't writable.
func GetConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "WinDusky"), nil
}

// GetDefaultConfigPath resolves GetConfigDir/WinDusky.conf.toml.
func GetDefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfFileName), nil
}

// Validate checks the loaded configuration for values the rest of the
// module assumes are already sane.
func (c *Config) Validate() []error {
	var errs []error

	switch c.LoggingLevel {
	case "OFF", "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		errs = append(errs, fmt.Errorf("invalid logging_level: %s", c.LoggingLevel))
	}

	if c.AutoOverlayLuminanceThreshold < 0 || c.AutoOverlayLuminanceThreshold > 1 {
		errs = append(errs, fmt.Errorf("auto_overlay_luminance__threshold must be between 0 and 1"))
	}
	if c.AutoOverlayLuminanceDelayMs < 0 {
		errs = append(errs, fmt.Errorf("auto_overlay_luminance__delay_ms must not be negative"))
	}

	if c.EffectsDefault != "" {
		found := false
		for _, b := range effects.Builtins {
			if b.Name == c.EffectsDefault {
				found = true
				break
			}
		}
		for _, e := range c.Effects {
			if e.Effect == c.EffectsDefault {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("effects_default %q is not a built-in or user-defined effect", c.EffectsDefault))
		}
	}

	if c.GammaPresetsDefault != "" {
		found := false
		for _, p := range c.GammaPresets {
			if p.Preset == c.GammaPresetsDefault {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("gamma_presets_default %q is not a configured gamma preset", c.GammaPresetsDefault))
		}
	}

	for _, hb := range c.allHotkeys() {
		if hb.Key == "" {
			continue
		}
		if _, ok := vkCodeFor(hb.Key); !ok {
			errs = append(errs, fmt.Errorf("unrecognized hotkey key name: %s", hb.Key))
		}
	}

	return errs
}

// BuildEffectsTable assembles the running effect cycle: the built-in
// matrices, any user-defined ones appended, reordered per
// effects_cycle_order (names absent from the override are dropped; an empty
// override keeps load order), with effects_default as the table's default.
func (c *Config) BuildEffectsTable() *effects.Table {
	all := make([]effects.Named, 0, len(effects.Builtins)+len(c.Effects))
	all = append(all, effects.Builtins...)
	for _, spec := range c.Effects {
		all = append(all, effects.Named{Name: spec.Effect, Matrix: effects.Matrix(spec.Transform)})
	}

	cycle := all
	if len(c.EffectsCycleOrder) > 0 {
		byName := make(map[string]effects.Named, len(all))
		for _, n := range all {
			byName[n.Name] = n
		}
		reordered := make([]effects.Named, 0, len(c.EffectsCycleOrder))
		for _, name := range c.EffectsCycleOrder {
			if n, ok := byName[name]; ok {
				reordered = append(reordered, n)
			}
		}
		if len(reordered) > 0 {
			cycle = reordered
		}
	}

	return effects.NewTable(cycle, c.EffectsDefault)
}

// BuildGammaPresets assembles the gamma controller's preset cycle from the
// configured preset list, cycle order, and default, synthesizing a single
// "Normal" preset when none are configured.
func (c *Config) BuildGammaPresets() *gamma.PresetTable {
	presets := make([]gamma.Preset, 0, len(c.GammaPresets))
	for _, spec := range c.GammaPresets {
		presets = append(presets, gamma.Preset{
			Name:       spec.Preset,
			GBC:        gamma.GBC{Gamma: spec.Gamma, Bright: spec.Bright, Contrast: spec.Contrast},
			ColorTempK: spec.ColorTempK,
		})
	}
	return gamma.NewPresetTable(presets, c.GammaPresetsCycleOrder, c.GammaPresetsDefault)
}

// BuildRulesConfig assembles a rules.Config from the loaded auto-overlay
// settings, resolving each configured effect name against table (falling
// back to the table's default when an entry names no effect or an unknown
// one).
func (c *Config) BuildRulesConfig(table *effects.Table, elevated bool) rules.Config {
	ruleMap := make(map[rules.Key]rules.Value, len(c.AutoOverlayExes)+len(c.AutoOverlayWindowClasses))

	resolve := func(name string) *effects.Effect {
		if name == "" {
			return nil
		}
		if eff, err := table.FindByName(name); err == nil {
			return &eff
		}
		return nil
	}

	for _, e := range c.AutoOverlayExes {
		ruleMap[rules.ExeKey(e.Exe)] = rules.Value{Enabled: true, Effect: resolve(e.Effect)}
	}
	for _, cl := range c.AutoOverlayWindowClasses {
		excl := make(map[string]struct{}, len(cl.ExclusionExes))
		for _, exe := range cl.ExclusionExes {
			excl[exe] = struct{}{}
		}
		ruleMap[rules.ClassKey(cl.ClassName)] = rules.Value{Enabled: true, Effect: resolve(cl.Effect), ExclExes: excl}
	}

	excludedExes := make(map[string]struct{}, len(c.AutoOverlayLuminanceExclusionExes))
	for _, exe := range c.AutoOverlayLuminanceExclusionExes {
		excludedExes[exe] = struct{}{}
	}

	return rules.Config{
		Elevated:        elevated,
		LumThreshold:    byte(c.AutoOverlayLuminanceThreshold * 255),
		LumDelayMs:      uint32(c.AutoOverlayLuminanceDelayMs),
		LumUseAlternate: c.AutoOverlayLuminanceUseAlternateMethod,
		LumExcludedExes: excludedExes,
		Rules:           ruleMap,
	}
}

func (c *Config) allHotkeys() []HotkeyBinding {
	return []HotkeyBinding{
		c.HotkeyDuskyToggle, c.HotkeyFullscreenToggle, c.HotkeyNextEffect, c.HotkeyPrevEffect,
		c.HotkeyClearOverlays, c.HotkeyClearOverrides, c.HotkeyGammaToggle, c.HotkeyGammaNext,
		c.HotkeyGammaPrev, c.HotkeyMagToggle, c.HotkeyMagNext, c.HotkeyMagPrev,
	}
}

// ResolveHotkeys converts every configured binding with a recognized key
// name into an overlay.Binding keyed by the stable hotkey id, silently
// skipping bindings with an empty or unrecognized key (they're simply left
// unregistered, matching an omitted TOML table).
func (c *Config) ResolveHotkeys() []overlay.Binding {
	entries := []struct {
		id int
		hb HotkeyBinding
	}{
		{overlay.HotkeyFullscreenToggle, c.HotkeyFullscreenToggle},
		{overlay.HotkeyEffectToggle, c.HotkeyDuskyToggle},
		{overlay.HotkeyNextEffect, c.HotkeyNextEffect},
		{overlay.HotkeyPrevEffect, c.HotkeyPrevEffect},
		{overlay.HotkeyClearOverlays, c.HotkeyClearOverlays},
		{overlay.HotkeyClearOverrides, c.HotkeyClearOverrides},
		{overlay.HotkeyGammaToggle, c.HotkeyGammaToggle},
		{overlay.HotkeyGammaNext, c.HotkeyGammaNext},
		{overlay.HotkeyGammaPrev, c.HotkeyGammaPrev},
		{overlay.HotkeyMagToggle, c.HotkeyMagToggle},
		{overlay.HotkeyMagNext, c.HotkeyMagNext},
		{overlay.HotkeyMagPrev, c.HotkeyMagPrev},
	}

	var bindings []overlay.Binding
	for _, e := range entries {
		vk, ok := vkCodeFor(e.hb.Key)
		if !ok {
			continue
		}
		bindings = append(bindings, overlay.Binding{
			ID:        e.id,
			Modifiers: modifierMaskFor(e.hb.Modifiers),
			VK:        vk,
		})
	}
	return bindings
}
