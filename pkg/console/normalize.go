package console

import "strings"

// Normalize rewrites the dotted call form "Kind.command(args)" into the
// canonical "command Kind args". The line is split at the first "." and
// then at the first "(" after it, and must end with ")". It reports false
// when the line has another shape or the command is not a record operation.
func Normalize(line string) (string, bool) {
	line = strings.TrimSpace(line)
	kind, rest, ok := strings.Cut(line, ".")
	if !ok {
		return "", false
	}
	command, args, ok := strings.Cut(rest, "(")
	if !ok || !strings.HasSuffix(args, ")") {
		return "", false
	}
	if !isOperation(command) {
		return "", false
	}
	args = strings.TrimSpace(strings.TrimSuffix(args, ")"))
	kind = strings.TrimSpace(kind)

	parts := []string{command}
	if kind != "" {
		parts = append(parts, kind)
	}
	if args != "" {
		parts = append(parts, args)
	}
	return strings.Join(parts, " "), true
}
