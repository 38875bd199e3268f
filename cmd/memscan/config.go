package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config supplies defaults for command flags. Flags given on the command
// line take precedence; keys a command has no flag for are ignored.
type Config struct {
	PID          int    `yaml:"pid"`
	Name         string `yaml:"name"`
	From         string `yaml:"from"`
	Type         string `yaml:"type"`
	Predicate    string `yaml:"predicate"`
	Value        string `yaml:"value"`
	Upper        string `yaml:"upper"`
	Max          int    `yaml:"max"`
	Workers      int    `yaml:"workers"`
	WritableOnly bool   `yaml:"writable_only"`
	ChunkSize    uint64 `yaml:"chunk_size"`
	Depth        int    `yaml:"depth"`
	StructSize   uint64 `yaml:"struct_size"`
}

// LoadConfig reads a yaml config file. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// flagValues maps flag names to the configured values, skipping unset ones.
func (c Config) flagValues() map[string]string {
	values := map[string]string{}
	set := func(name, value string) {
		if value != "" {
			values[name] = value
		}
	}

	set("name", c.Name)
	set("from", c.From)
	set("type", c.Type)
	set("predicate", c.Predicate)
	set("value", c.Value)
	set("upper", c.Upper)
	if c.PID != 0 {
		set("pid", strconv.Itoa(c.PID))
	}
	if c.Max != 0 {
		set("max", strconv.Itoa(c.Max))
	}
	if c.Workers != 0 {
		set("workers", strconv.Itoa(c.Workers))
	}
	if c.WritableOnly {
		set("writable", "true")
	}
	if c.ChunkSize != 0 {
		set("chunk-size", strconv.FormatUint(c.ChunkSize, 10))
	}
	if c.Depth != 0 {
		set("depth", strconv.Itoa(c.Depth))
	}
	if c.StructSize != 0 {
		set("struct-size", strconv.FormatUint(c.StructSize, 10))
	}

	return values
}

// Apply sets every flag of cmd that was not given explicitly.
func (c Config) Apply(cmd *cobra.Command) error {
	for name, value := range c.flagValues() {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}
