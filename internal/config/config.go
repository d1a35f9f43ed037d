// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/runexec"
	"github.com/spf13/afero"
)

var (
	// ErrReadFile is returned when a definition file cannot be read.
	ErrReadFile = errors.New("failed to read definition file")
	// ErrInvalidYaml is returned when a YAML definition cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML definition")
	// ErrInvalidHcl is returned when an HCL or JSON definition cannot be decoded.
	ErrInvalidHcl = errors.New("invalid HCL definition")
	// ErrUnsupportedFormat is returned for file extensions other than .yaml, .yml, .hcl and .json.
	ErrUnsupportedFormat = errors.New("unsupported definition file format")
	// ErrNoCommands is returned when a definition has no commands.
	ErrNoCommands = errors.New("definition has no commands")
	// ErrInvalidOutput is returned when the output attribute does not name an output mode.
	ErrInvalidOutput = errors.New("invalid output mode in definition")
)

// Definition is a sequence of commands and the options they share.
type Definition struct {
	Name             string            `yaml:"name"              hcl:"name,optional"`
	Output           string            `yaml:"output"            hcl:"output,optional"`
	Verbose          bool              `yaml:"verbose"           hcl:"verbose,optional"`
	ContinueOnError  bool              `yaml:"continue_on_error" hcl:"continue_on_error,optional"`
	WorkingDirectory string            `yaml:"working_directory" hcl:"working_directory,optional"`
	Env              map[string]string `yaml:"env"               hcl:"env,optional"`
	Commands         []string          `yaml:"commands"          hcl:"commands"`
}

// LoadFile reads and parses the definition at path using the filesystem from FsFactory.
func LoadFile(path string) (*Definition, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	return Parse(path, data)
}

// Parse decodes data according to the extension of filename.
func Parse(filename string, data []byte) (*Definition, error) {
	def := &Definition{}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, def, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.Join(ErrInvalidYaml, err)
		}
	case ".hcl", ".json":
		if err := hclsimple.Decode(filename, data, evalContext(), def); err != nil {
			return nil, errors.Join(ErrInvalidHcl, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}

	return def, nil
}

// Options validates the definition and converts it to runexec options.
// A relative working directory is resolved against baseDir.
func (d *Definition) Options(baseDir string) (*runexec.Options, error) {
	if len(d.Commands) == 0 {
		return nil, ErrNoCommands
	}

	opts := runexec.DefaultOptions()

	if d.Output != "" {
		mode, err := runexec.ParseOutputMode(d.Output)
		if err != nil {
			return nil, errors.Join(ErrInvalidOutput, err)
		}

		opts.Output = mode
	}

	opts.Verbose = d.Verbose
	opts.ContinueOnError = d.ContinueOnError
	opts.WorkingDirectory = d.ResolveWorkingDirectory(baseDir)
	opts.Env = d.Env

	return opts, nil
}

// ResolveWorkingDirectory returns the working directory of the definition.
// An empty value stays empty, meaning inherit, and an absolute one is returned as is.
func (d *Definition) ResolveWorkingDirectory(baseDir string) string {
	if d.WorkingDirectory == "" || filepath.IsAbs(d.WorkingDirectory) || baseDir == "" {
		return d.WorkingDirectory
	}

	return filepath.Join(baseDir, d.WorkingDirectory)
}
