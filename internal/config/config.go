package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Workdays Workdays `koanf:"workdays"`
	Report   Report   `koanf:"report"`
	Jira     Jira     `koanf:"jira"`
	Google   Google   `koanf:"google"`
	Log      Log      `koanf:"log"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Workdays struct {
	// StandardHours is the length of a regular working day.
	StandardHours int `koanf:"standardhours"`
	// Weekend lists the weekday names that are days off unless overridden, e.g. "saturday".
	Weekend []string `koanf:"weekend"`
}

type Report struct {
	// Columns is the number of months shown by the monthly reports.
	Columns int `koanf:"columns"`
}

type Jira struct {
	BaseUrl string `koanf:"baseurl"`
	Token   string `koanf:"token"`
	// BudgetField is the id of the issue custom field holding the project budget.
	BudgetField string `koanf:"budgetfield"`
}

type Google struct {
	ApiKey            string `koanf:"apikey"`
	HolidayCalendarId string `koanf:"holidaycalendarid"`
}

type Log struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMb  int    `koanf:"maxsizemb"`
	MaxBackups int    `koanf:"maxbackups"`
	MaxAgeDays int    `koanf:"maxagedays"`
	Compress   bool   `koanf:"compress"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Addr: ":8181",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "pplan",
			Pass:   "",
			Name:   "pplan",
			Schema: "pplan",
		},
		Workdays: Workdays{
			StandardHours: 8,
			Weekend:       []string{"saturday", "sunday"},
		},
		Report: Report{
			Columns: 18,
		},
		Jira: Jira{
			BudgetField: "customfield_10700",
		},
		Google: Google{
			HolidayCalendarId: "en.russian#holiday@group.v.calendar.google.com",
		},
		Log: Log{
			MaxSizeMb:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "PPLAN_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "PPLAN_")), "_", ".")
			// lists are passed as comma separated values, e.g. PPLAN_WORKDAYS_WEEKEND=friday,saturday
			if strings.Contains(v, ",") {
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
