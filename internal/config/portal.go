package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PortalConfig carries presentation settings that operators tune per
// recruitment round without redeploying: the public portal title, the
// displayed labels for the four fixed interview slots, and the contact
// address shown on denial pages.
type PortalConfig struct {
	Title          string            `mapstructure:"title"`
	SupportEmail   string            `mapstructure:"supportEmail"`
	InterviewSlots map[string]string `mapstructure:"interviewSlots"`
}

func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		Title:        "Recruit",
		SupportEmail: "recruit@codecircle.dev",
		InterviewSlots: map[string]string{
			"sat_morning":   "Saturday morning",
			"sat_afternoon": "Saturday afternoon",
			"sun_morning":   "Sunday morning",
			"sun_afternoon": "Sunday afternoon",
		},
	}
}

// PortalConfigHolder hot-reloads portal.yml when it changes on disk.
type PortalConfigHolder struct {
	current atomic.Value // holds PortalConfig
}

func NewPortalConfigHolder() (*PortalConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("portal")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/recruit")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RECRUIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PortalConfigHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPortalConfig())
		return holder, nil
	}

	cfg, err := decodePortal(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.OnConfigChange(func(fsnotify.Event) {
		reloaded, err := decodePortal(v)
		if err != nil {
			return
		}
		holder.current.Store(reloaded)
	})
	v.WatchConfig()

	return holder, nil
}

func (h *PortalConfigHolder) Current() PortalConfig {
	if v, ok := h.current.Load().(PortalConfig); ok {
		return v
	}
	return DefaultPortalConfig()
}

func decodePortal(v *viper.Viper) (PortalConfig, error) {
	cfg := DefaultPortalConfig()
	if err := v.UnmarshalKey("portal", &cfg); err != nil {
		return PortalConfig{}, err
	}
	if len(cfg.InterviewSlots) == 0 {
		cfg.InterviewSlots = DefaultPortalConfig().InterviewSlots
	}
	return cfg, nil
}
