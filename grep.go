// Simple PNG grepper
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//
// Searches for the supplied regex in the text (tEXt) chunks of the supplied
// PNG images. If a match is found, prints the filename.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/klausman/pngme/png"
)

// grep returns 0 if any file matched, 1 if none did and 2 on errors.
func (a *app) grep(args []string) int {
	var (
		common    commonFlags
		caseins   bool
		showmatch bool
	)
	fs := a.newFlagSet("grep", "<regex> <file> [file, ...]")
	common.register(fs)
	fs.BoolVarP(&caseins, "ignore-case", "i", false, "Make regexp case-insensitive")
	fs.BoolVarP(&showmatch, "show", "w", false, "Show matching text chunks")
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, errUsage) {
			return -1
		}
		return 0
	}
	if err := a.setup(common, "grep"); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 2
	}

	args = fs.Args()
	if len(args) < 2 {
		fs.Usage()
		return -1
	}
	re := args[0]
	if caseins {
		re = "(?i)" + re
	}
	rx, err := regexp.Compile(re)
	if err != nil {
		fmt.Fprintf(a.stderr, "Invalid regexp '%s': %s\n", re, err)
		return 2
	}

	ret := 1
	for _, filename := range args[1:] {
		found, chunks, err := grepOneFile(filename, rx)
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			ret = 2
			break
		}
		a.logger.Debug("searched file", "file", filename, "matches", len(chunks))
		if found {
			fmt.Fprintln(a.stdout, filename)
			if showmatch {
				for _, m := range chunks {
					fmt.Fprintf(a.stdout, "%#v\n", m)
				}
			}
			ret = 0
		}
	}
	return ret
}

func grepOneFile(filename string, rx *regexp.Regexp) (bool, []string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return false, []string{}, err
	}
	defer file.Close()
	found, chunks, err := grePNG(file, rx)
	if err != nil {
		return false, []string{}, fmt.Errorf("%s: %w", filename, err)
	}
	return found, chunks, nil
}

func grePNG(r io.Reader, rx *regexp.Regexp) (bool, []string, error) {
	var chunks []string
	p, err := png.Load(r)
	if err != nil {
		return false, chunks, err
	}

	for _, tc := range p.TextChunks() {
		if rx.MatchString(tc) {
			chunks = append(chunks, tc)
		}
	}
	return len(chunks) > 0, chunks, nil
}
