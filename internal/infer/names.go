package infer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/ppiankov/helpscan/internal/model"
)

// AssignNames gives every argument a snake_case variable name, unique within
// the slice. Flags are named after their longest synonym, positionals after
// their placeholder. Later duplicates get a numeric suffix.
func AssignNames(args []model.TypedArgument) {
	used := make(map[string]int, len(args))
	for i := range args {
		base := VariableName(args[i])
		name := base
		if n, taken := used[base]; taken {
			for {
				n++
				name = base + "_" + strconv.Itoa(n)
				if _, clash := used[name]; !clash {
					break
				}
			}
			used[base] = n
		}
		used[name] = 1
		args[i].Name = name
	}
}

// VariableName derives the unsuffixed variable name of one argument
func VariableName(arg model.TypedArgument) string {
	raw := arg.Placeholder
	if arg.Kind == model.ArgumentFlag {
		raw = strings.TrimLeft(arg.LongestSynonym(), "-+/")
	}
	raw = strings.Trim(raw, "<>[]{}.…=")
	return sanitize(snake(raw))
}

// snake converts raw to snake_case, keeping digit runs attached to the word
// they appear in: "2fa" stays 2fa and "ipv4" stays ipv4.
func snake(raw string) string {
	words := strings.FieldsFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		words[i] = joinDigits(strcase.ToSnake(w))
	}
	return strings.Join(words, "_")
}

// joinDigits drops the separators strcase puts around digits within a word
func joinDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '_' && i > 0 && i < len(s)-1 && (isDigit(s[i-1]) || isDigit(s[i+1])) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	out := strings.Trim(b.String(), "_")
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	switch {
	case out == "":
		return "arg"
	case out[0] >= '0' && out[0] <= '9':
		return "arg_" + out
	}
	return out
}
