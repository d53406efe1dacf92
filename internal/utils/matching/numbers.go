package matching

import "unicode"

// ExtractNumbers returns every maximal run of digits found in text,
// in order of appearance. Statement purpose lines often embed the
// member number between arbitrary text ("Beitrag 2025 Mitglied 1042").
func ExtractNumbers(text string) []string {
	var out []string
	start := -1
	runes := []rune(text)
	for i, r := range runes {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, string(runes[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, string(runes[start:]))
	}
	return out
}
