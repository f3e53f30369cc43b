package main

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/pmezard/go-difflib/difflib"
)

// writeDiff writes a unified diff from before to after. Lines are colored
// when out is a terminal that supports it.
func writeDiff(w io.Writer, name, before, after string, color bool) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name,
		Context:  3,
	})
	if err != nil {
		return err
	}
	if !color {
		_, err = io.WriteString(w, diff)
		return err
	}

	out := termenv.NewOutput(w)
	var sb strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		style := out.String(text)
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			style = style.Bold()
		case strings.HasPrefix(line, "@@"):
			style = style.Foreground(out.Color("6"))
		case strings.HasPrefix(line, "+"):
			style = style.Foreground(out.Color("2"))
		case strings.HasPrefix(line, "-"):
			style = style.Foreground(out.Color("1"))
		}
		sb.WriteString(style.String())
		sb.WriteString(line[len(text):])
	}
	_, err = io.WriteString(w, sb.String())
	return err
}
