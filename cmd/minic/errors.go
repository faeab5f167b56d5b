package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"minic/internal/diag"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	codeLabel  = color.New(color.FgYellow)
)

// renderError prints err as "error[CODE]: message". Errors without a
// classification print as plain "error: message".
func renderError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if code, ok := diag.CodeOf(err); ok && code != diag.UnknownCode {
		fmt.Fprintf(w, "%s%s: %v\n", errorLabel.Sprint("error"), codeLabel.Sprintf("[%s]", code.ID()), err)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", errorLabel.Sprint("error"), err)
}
