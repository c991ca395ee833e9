// Package notify delivers candle close reminders. Delivery is fire and
// forget: notifiers never return errors to the countdown that triggers them.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type SoundType string

const (
	SoundDefault SoundType = "default"
	SoundCustom  SoundType = "custom"
	SoundOff     SoundType = "off"
)

type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Settings are the user preferences that shape how a reminder is delivered.
// They are passed to each notifier explicitly.
type Settings struct {
	Sound           SoundType `json:"sound" yaml:"sound"`
	CustomSoundPath string    `json:"custom_sound_path,omitempty" yaml:"custom_sound_path,omitempty"`
	PlayerCommand   string    `json:"player_command,omitempty" yaml:"player_command,omitempty"`
	TTSEnabled      bool      `json:"tts_enabled" yaml:"tts_enabled"`
	AlwaysOnTop     bool      `json:"always_on_top" yaml:"always_on_top"`
	Theme           Theme     `json:"theme" yaml:"theme"`
}

type Theme struct {
	Mode         ThemeMode `json:"mode" yaml:"mode"`
	PrimaryColor string    `json:"primary_color" yaml:"primary_color"`
}

func DefaultSettings() Settings {
	return Settings{
		Sound: SoundDefault,
		Theme: Theme{Mode: ThemeDark, PrimaryColor: "default"},
	}
}

func (s Settings) Validate() error {
	switch s.Sound {
	case SoundDefault, SoundOff:
	case SoundCustom:
		if s.CustomSoundPath == "" {
			return fmt.Errorf("notify.custom_sound_path is required for custom sound")
		}
	default:
		return fmt.Errorf("notify.sound must be one of default, custom, off")
	}
	switch s.Theme.Mode {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("notify.theme.mode must be one of light, dark, system")
	}
	return nil
}

type Notifier interface {
	Notify(title, body string)
}

// Func adapts a plain function to Notifier.
type Func func(title, body string)

func (f Func) Notify(title, body string) { f(title, body) }

// Log records every reminder on a structured logger.
type Log struct {
	log zerolog.Logger
}

func NewLog(l zerolog.Logger) *Log {
	return &Log{log: l.With().Str("component", "notify").Logger()}
}

func (n *Log) Notify(title, body string) {
	n.log.Info().Str("title", title).Str("body", body).Msg("reminder")
}

// Player plays an audio file.
type Player interface {
	Play(path string) error
}

// DefaultPlayTimeout bounds a CommandPlayer run when Timeout is zero.
const DefaultPlayTimeout = 15 * time.Second

// CommandPlayer plays sounds by running an external program with the file
// path as its last argument, e.g. "paplay" or "afplay". The program is
// killed after Timeout.
type CommandPlayer struct {
	Command string
	Timeout time.Duration
}

func (p CommandPlayer) Play(path string) error {
	if p.Command == "" {
		return fmt.Errorf("no player command configured")
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPlayTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := exec.CommandContext(ctx, p.Command, path).Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("play %s: %w", path, ctx.Err())
		}
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}

// Console writes reminders to a terminal, ringing the bell unless sound is
// off. A custom sound is handed to the Player; if that fails the bell is
// used instead.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	settings Settings
	player   Player
	log      zerolog.Logger
}

func NewConsole(out io.Writer, settings Settings, player Player, l zerolog.Logger) *Console {
	return &Console{
		out:      out,
		settings: settings,
		player:   player,
		log:      l.With().Str("component", "notify").Logger(),
	}
}

func (c *Console) Notify(title, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sound()
	fmt.Fprintf(c.out, "[%s] %s\n", title, body)
}

func (c *Console) sound() {
	switch c.settings.Sound {
	case SoundOff:
		return
	case SoundCustom:
		if c.player != nil && c.settings.CustomSoundPath != "" {
			err := c.player.Play(c.settings.CustomSoundPath)
			if err == nil {
				return
			}
			c.log.Warn().Err(err).Str("path", c.settings.CustomSoundPath).
				Msg("custom sound failed, falling back to bell")
		}
	}
	fmt.Fprint(c.out, "\a")
}

// Multi fans a reminder out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(title, body string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, body)
		}
	}
}
