package config

import (
	"errors"
	"io/fs"
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

type Application struct {
	Host            string   `koanf:"host"`
	Listen          string   `koanf:"listen"`
	Timezone        string   `koanf:"timezone"`
	CredentialsFile string   `koanf:"credentialsfile"`
	Csrf            Csrf     `koanf:"csrf"`
	Cors            Cors     `koanf:"cors"`
	Database        Database `koanf:"db"`
	Items           Items    `koanf:"items"`
	Reset           Reset    `koanf:"reset"`
	Mail            Mail     `koanf:"mail"`
	Pager           Pager    `koanf:"pager"`
	Roster          Roster   `koanf:"roster"`
	Feed            Feed     `koanf:"feed"`
}

type Csrf struct {
	// Key is the 32 byte authentication key for CSRF tokens. A random key is used when empty,
	// which invalidates open forms on every restart.
	Key    string `koanf:"key"`
	Secure bool   `koanf:"secure"`
}

type Cors struct {
	// AllowedOrigins may read the public schedule endpoints from a browser.
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Items struct {
	// File optionally seeds the item catalog, one item per line.
	File string `koanf:"file"`
}

type Reset struct {
	Spec  string        `koanf:"spec"`
	Pause time.Duration `koanf:"pause"`
}

type Mail struct {
	Enabled     bool     `koanf:"enabled"`
	Host        string   `koanf:"host"`
	Port        int      `koanf:"port"`
	User        string   `koanf:"user"`
	Pass        string   `koanf:"pass"`
	From        string   `koanf:"from"`
	MailingList []string `koanf:"mailinglist"`
}

type Pager struct {
	Enabled           bool     `koanf:"enabled"`
	Url               string   `koanf:"url"`
	User              string   `koanf:"user"`
	Pass              string   `koanf:"pass"`
	CallSigns         []string `koanf:"callsigns"`
	TransmitterGroups []string `koanf:"transmittergroups"`
}

type Roster struct {
	Timeout time.Duration `koanf:"timeout"`
}

type Feed struct {
	Occurrences int `koanf:"occurrences"`
}

// listKeys are the settings given as comma separated lists in the environment.
var listKeys = map[string]bool{
	"cors.allowedorigins":     true,
	"mail.mailinglist":        true,
	"pager.callsigns":         true,
	"pager.transmittergroups": true,
}

func Defaults() Application {
	return Application{
		Host:            "http://localhost:8082",
		Listen:          ":8082",
		Timezone:        "Europe/Berlin",
		CredentialsFile: ".pwd",
		Cors: Cors{
			AllowedOrigins: []string{"*"},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "brunch",
			Pass:   "",
			Name:   "brunch",
			Schema: "brunch",
		},
		Reset: Reset{
			Spec:  "@every 1m",
			Pause: 24 * time.Hour,
		},
		Mail: Mail{
			Port: 587,
		},
		Pager: Pager{
			Url: "https://hampager.de/api",
		},
		Roster: Roster{
			Timeout: 30 * time.Second,
		},
		Feed: Feed{
			Occurrences: 6,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("could not load .env file: %v", err)
	}

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
		Prefix: "BRUNCH_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "BRUNCH_")), "_", ".")
			if listKeys[k] {
				return k, strings.Split(v, ",")
			}
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

	return app, nil
}

// Location resolves the configured civil timezone all event dates are computed in.
func (a Application) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}
