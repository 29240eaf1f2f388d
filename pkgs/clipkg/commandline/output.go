package commandline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gookit/color"
)

func printJSON(w io.Writer, v interface{}, noColor bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if noColor {
		_, err = fmt.Fprintln(w, string(data))
	} else {
		_, err = fmt.Fprintln(w, color.FgLightGreen.Render(string(data)))
	}
	return err
}

func printTitle(w io.Writer, title string, noColor bool) {
	if noColor {
		fmt.Fprintln(w, "== "+title)
		return
	}
	fmt.Fprintln(w, color.FgCyan.Render("== "+title))
}
