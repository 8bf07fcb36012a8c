package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
)

// contextOrder lists the context keys rendered first, in this order.
var contextOrder = []string{"table", "field", "stamp", "sql"}

// FormatError formats an error for CLI display in Cargo/rustc style.
// If the chain holds an *alerr.Error, its code, context and helps are shown.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatCodedError(ae)
	}

	return formatGenericError(err)
}

func formatCodedError(err *alerr.Error) string {
	var b strings.Builder

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.Code())))
	b.WriteString("]: ")
	b.WriteString(err.Message())
	b.WriteString("\n")

	ctx := err.Context()
	for _, key := range contextKeys(ctx) {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString(" ")
		b.WriteString(Dim(key))
		b.WriteString(": ")
		value := fmt.Sprint(ctx[key])
		if key == "sql" {
			value = SQL(value)
		}
		b.WriteString(value)
		b.WriteString("\n")
	}

	if cause := err.Cause(); cause != nil {
		b.WriteString(Note("note"))
		b.WriteString(": ")
		b.WriteString(cause.Error())
		b.WriteString("\n")
	}

	for _, help := range err.Helps() {
		b.WriteString(Help("help"))
		b.WriteString(": ")
		b.WriteString(help)
		b.WriteString("\n")
	}

	return b.String()
}

// contextKeys returns the displayable context keys: known keys first,
// then the rest alphabetically.
func contextKeys(ctx map[string]any) []string {
	seen := make(map[string]bool, len(ctx))
	keys := make([]string, 0, len(ctx))
	for _, k := range contextOrder {
		if _, ok := ctx[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range ctx {
		if seen[k] {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// formatGenericError formats a non-alerr error.
func formatGenericError(err error) string {
	var b strings.Builder
	b.WriteString(Error("error"))
	b.WriteString(": ")
	b.WriteString(err.Error())
	b.WriteString("\n")
	return b.String()
}

// FormatWarning formats a warning message.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
