package main

import (
	"errors"
	"fmt"
	"io"

	"eudaimonia/client/apiclient"
)

// section prints one titled list in its error, empty or populated state.
func section(w io.Writer, title string, err error, n int, empty string, row func(i int) string) {
	fmt.Fprintln(w, title)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ✗ %s\n", describe(err))
	case n == 0:
		fmt.Fprintf(w, "  %s\n", empty)
	default:
		for i := 0; i < n; i++ {
			fmt.Fprintf(w, "  %s\n", row(i))
		}
	}
	fmt.Fprintln(w)
}

func describe(err error) string {
	var he *apiclient.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return err.Error()
}
