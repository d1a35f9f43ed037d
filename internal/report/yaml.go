// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"errors"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/runexec"
)

var (
	// ErrWriteYAML is returned when writing the results as YAML fails.
	ErrWriteYAML = errors.New("failed to write YAML results")
	// ErrReadYAML is returned when saved results cannot be decoded.
	ErrReadYAML = errors.New("failed to read YAML results")
)

// document is the on-disk form of a set of results.
type document struct {
	Results []record `yaml:"results"`
}

type record struct {
	Command   string `yaml:"command"`
	ExitCode  int    `yaml:"exit_code"`
	Succeeded bool   `yaml:"succeeded"`
	Output    string `yaml:"output,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

// WriteYAML writes results to w so that ReadYAML can load them back.
// Errors are stored as their message.
func WriteYAML(w io.Writer, results runexec.Results) error {
	doc := document{Results: make([]record, 0, len(results))}

	for _, r := range results {
		rec := record{
			Command:   r.Command,
			ExitCode:  r.Status.ExitCode,
			Succeeded: r.Status.Succeeded,
			Output:    r.Output,
		}

		if r.Error != nil {
			rec.Error = r.Error.Error()
		}

		doc.Results = append(doc.Results, rec)
	}

	b, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Join(ErrWriteYAML, err)
	}

	if _, err := w.Write(b); err != nil {
		return errors.Join(ErrWriteYAML, err)
	}

	return nil
}

// ReadYAML loads results written by WriteYAML.
func ReadYAML(r io.Reader) (runexec.Results, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrReadYAML, err)
	}

	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Join(ErrReadYAML, err)
	}

	results := make(runexec.Results, 0, len(doc.Results))

	for _, rec := range doc.Results {
		res := &runexec.Result{
			Command: rec.Command,
			Status: runexec.Status{
				ExitCode:  rec.ExitCode,
				Succeeded: rec.ExitCode == 0,
			},
			Output: rec.Output,
		}

		if rec.Error != "" {
			res.Error = errors.New(rec.Error)
		}

		results = append(results, res)
	}

	return results, nil
}
