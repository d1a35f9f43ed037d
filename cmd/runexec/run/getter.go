// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/runexec/internal/config"
)

// getURL fetches the sequence file at url using Hashicorp's go-getter and loads it.
// It also returns the directory relative working directories are resolved against:
// the directory of the file for local files, otherwise the current directory.
// The fetched copy is removed before returning.
func getURL(ctx context.Context, url string) (*config.Definition, string, error) {
	if url == "" {
		return nil, "", ErrGetConfigFile
	}

	tmpDir, err := os.MkdirTemp("", "runexec-getter-*")
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	baseDir := wd

	var fileName string
	// If it's not a local file URL, we need to download the directory and read the file from there
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, "", errors.Join(ErrGetConfigFile, err)
		}

		var src string

		src, fileName, err = remoteFileSource(url)
		if err != nil {
			return nil, "", errors.Join(ErrGetConfigFile, err)
		}

		req.Src = src
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)

		baseDir = req.Src
		if !filepath.IsAbs(baseDir) {
			baseDir = filepath.Join(wd, baseDir)
		}
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	def, err := config.LoadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	return def, baseDir, nil
}

// getterSubdirSeparator separates a go-getter source from the subdirectory within it.
const getterSubdirSeparator = "//"

// remoteFileSource splits a remote go-getter URL naming a file, such as
// git::https://github.com/org/repo//seq/build.yaml?ref=v1, into the source of the
// directory that holds it (git::https://github.com/org/repo//seq?ref=v1) and the file name.
// go-getter fetches directories, so the file must follow a // subdirectory separator.
func remoteFileSource(url string) (string, string, error) {
	rest, query, _ := strings.Cut(url, "?")

	from := 0
	if i := strings.Index(rest, "://"); i >= 0 {
		from = i + len("://")
	}

	i := strings.LastIndex(rest[from:], getterSubdirSeparator)
	if i < 0 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidGetterURL, url)
	}

	i += from
	src, subPath := rest[:i], rest[i+len(getterSubdirSeparator):]

	dir, fileName := path.Split(subPath)
	if fileName == "" || fileName == "." || fileName == ".." {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidGetterURL, url)
	}

	if dir = strings.TrimSuffix(dir, "/"); dir != "" {
		src += getterSubdirSeparator + dir
	}

	if query != "" {
		src += "?" + query
	}

	return src, fileName, nil
}
