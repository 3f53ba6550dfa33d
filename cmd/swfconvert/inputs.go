package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/benoitkugler/swfconvert/render"
)

// inputExt is the extension of the tag dumps read by swf.DecodeXML.
const inputExt = ".xml"

// inputFiles replaces the directories of args by the input files
// they contain, sorted by name.
func inputFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, render.ConfigErrorf("no input files")
	}
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, render.ConfigErrorf("input file %q doesn't exist", arg)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), inputExt) {
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
		if len(files) == 0 {
			return nil, render.ConfigErrorf("input folder %q has no input files", arg)
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}

// outputFiles returns the output of each input. Without outputs, files
// are written next to their input. An existing directory receives the
// file named after the input.
func outputFiles(inputs, outputs []string) ([]string, error) {
	if len(outputs) == 0 {
		return inputs, nil
	}
	if len(outputs) != len(inputs) {
		return nil, render.ConfigErrorf("expected as many outputs as inputs (got %d outputs for %d inputs)", len(outputs), len(inputs))
	}
	out := make([]string, len(outputs))
	for i, output := range outputs {
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, filepath.Base(inputs[i]))
		}
		out[i] = output
	}
	return out, nil
}
