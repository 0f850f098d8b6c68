package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/KasperOmsK/pipes/internal/script"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	LogLevel  string            `toml:"log_level" validate:"omitempty,oneof=fine debug info warn error"`
	LogFormat string            `toml:"log_format" validate:"omitempty,oneof=text json"`
	Pipelines map[string]string `toml:"pipelines" validate:"dive,keys,pipeline_name,endkeys,required"`
}

var pipelineName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func loadConfig(file string) (Config, error) {
	var cfg Config
	if file == "" {
		return cfg, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec = dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode %s: %w", file, err)
	}
	return cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("pipeline_name", func(fl validator.FieldLevel) bool {
		return pipelineName.MatchString(fl.Field().String())
	})
	return v
}

// validate checks the shape of the config and then parses every named
// pipeline, reporting all problems together.
func (c Config) validate() error {
	var errs *multierror.Error

	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			errs = multierror.Append(errs, fmt.Errorf("%s: %s", e.Field(), describe(e)))
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Pipelines)) {
		if !pipelineName.MatchString(name) {
			continue
		}
		if _, err := script.Parse("@"+name, script.Options{Named: c.Pipelines}); err != nil {
			errs = script.AppendPrefixed(errs, "pipeline "+name, err)
		}
	}

	return errs.ErrorOrNil()
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "pipeline_name":
		return fmt.Sprintf("%q is not a valid pipeline name", e.Value())
	default:
		return "is invalid"
	}
}

func (c *Config) merge(o Config) {
	c.LogLevel = override(c.LogLevel, o.LogLevel)
	c.LogFormat = override(c.LogFormat, o.LogFormat)

	for k, v := range o.Pipelines {
		if c.Pipelines == nil {
			c.Pipelines = map[string]string{}
		}
		c.Pipelines[k] = v
	}
}

func override(s, o string) string {
	if o != "" {
		return o
	}
	return s
}
