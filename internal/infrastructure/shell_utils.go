package infrastructure

import "strings"

// shellSpecials is the set of characters that force quoting when a command
// line is reproduced for logs. exec.Command never goes through a shell, so
// this only affects whether the logged line can be copy-pasted safely.
const shellSpecials = " \t'\"$`\\!*?[](){}|;<>&~#%\n\r"

// ShellEscape quotes s for display in a logged command line. Plain strings
// pass through untouched; anything containing a shell metacharacter is
// single-quoted, with embedded single quotes rendered as '"'"'.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecials) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders a binary and its arguments as one
// copy-pasteable command line.
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
