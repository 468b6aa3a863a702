// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dlconfig/dlconfig/internal/config"
	"github.com/dlconfig/dlconfig/internal/issue"
)

// printResult writes errors and warnings as separate lists followed by a
// one-line verdict.
func printResult(w io.Writer, result config.ValidationResult) {
	for _, msg := range result.ErrorMessages {
		fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("✗"), msg)
	}
	for _, msg := range result.WarningMessages {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("!"), msg)
	}

	switch {
	case !result.OK:
		fmt.Fprintf(w, "%s configuration is invalid (%d error(s), %d warning(s))\n",
			ErrorStyle.Render("✗"), len(result.ErrorMessages), len(result.WarningMessages))
	case result.HasWarnings():
		fmt.Fprintf(w, "%s configuration is valid with %d warning(s)\n",
			SuccessStyle.Render("✓"), len(result.WarningMessages))
	default:
		fmt.Fprintf(w, "%s configuration is valid\n", SuccessStyle.Render("✓"))
	}

	if result.RestartNeeded {
		fmt.Fprintf(w, "%s restart required for the change to take effect\n", WarningStyle.Render("!"))
	}
}

// printResultJSON writes the result as indented JSON.
func printResultJSON(w io.Writer, result config.ValidationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// issueForResult picks the catalog entry that best explains a failed result.
func issueForResult(result config.ValidationResult) issue.Id {
	for _, msg := range result.ErrorMessages {
		if strings.Contains(msg, "black hole folder") {
			return issue.BlackHoleFolderId
		}
	}
	return issue.ConfigValidationFailedId
}

// failedResult renders the matching issue and returns the exit error for a
// result that is not OK.
func failedResult(app *App, result config.ValidationResult) error {
	renderIssue(app, issueForResult(result))
	return &ExitError{Code: 1, Err: result.Err()}
}
