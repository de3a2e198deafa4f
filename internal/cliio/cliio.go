// Package cliio holds small terminal I/O helpers shared by commands.
package cliio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/skaphos/gitsync/internal/strutil"
	"github.com/skaphos/gitsync/internal/tableutil"
)

// InvalidAnswer is printed when a yes/no answer is not recognized.
const InvalidAnswer = "Please answer y or n.\n"

// PromptYesNo writes prompt and reads a yes/no answer from input, asking
// again until the answer is y, yes, n or no (any case). End of input counts
// as no.
func PromptYesNo(out io.Writer, in io.Reader, prompt string) (bool, error) {
	reader := bufio.NewReader(in)
	for {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return false, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		choice := strings.TrimSpace(line)
		switch {
		case strutil.EqualFold(choice, "y", "yes"):
			return true, nil
		case strutil.EqualFold(choice, "n", "no"):
			return false, nil
		}
		if err == io.EOF {
			return false, nil
		}
		if _, err := fmt.Fprint(out, InvalidAnswer); err != nil {
			return false, err
		}
	}
}

// WriteTable renders a simple tab-separated table with optional headers.
func WriteTable(out io.Writer, stripEscape bool, noHeaders bool, headers []string, rows [][]string) error {
	t := tableutil.Table{Headers: headers, NoHeaders: noHeaders, StripEscape: stripEscape}
	for _, row := range rows {
		t.Append(row...)
	}
	return t.Render(out)
}
