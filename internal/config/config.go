package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "OFFICEHOURS_"

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Application struct {
	Server       Server       `koanf:"server"`
	Storage      Storage      `koanf:"storage"`
	Database     Database     `koanf:"db"`
	Discord      Discord      `koanf:"discord"`
	Notification Notification `koanf:"notification"`
	Viewer       Viewer       `koanf:"viewer"`
	Timezone     string       `koanf:"timezone"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Storage struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Discord struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
	GuildId string `koanf:"guildid"`
}

type Notification struct {
	SettingsPath string `koanf:"settingspath"`
}

type Viewer struct {
	Title string `koanf:"title"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Addr: ":5000",
		},
		Storage: Storage{
			Backend: StorageFile,
			Path:    "schedule.json",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "officehours",
			Pass:   "",
			Name:   "officehours",
			Schema: "officehours",
		},
		Notification: Notification{
			SettingsPath: "bot_settings.json",
		},
		Viewer: Viewer{
			Title: "Office Hours Schedule",
		},
		Timezone: "Local",
	}
}

func Load(path string) (Application, error) {
	// .env is optional; it usually carries OFFICEHOURS_DISCORD_TOKEN
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("could not load .env file: %v", err)
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	if err := app.Validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (a Application) Validate() error {
	switch a.Storage.Backend {
	case StorageFile:
		if a.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", StorageFile)
		}
	case StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend %q, expected %s or %s", a.Storage.Backend, StorageFile, StoragePostgres)
	}
	if a.Discord.Enabled && a.Discord.Token == "" {
		return fmt.Errorf("discord.token is required when discord is enabled")
	}
	if _, err := a.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the host time zone.
func (a Application) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}
