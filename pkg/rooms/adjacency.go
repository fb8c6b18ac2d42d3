package rooms

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var roomNamePattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

// splitRoom separates a room identifier into its alphabetic prefix and number, false when it carries no number
func splitRoom(room string) (string, int, bool) {
	room = strings.ReplaceAll(room, " ", "")
	if match := roomNamePattern.FindStringSubmatch(room); match != nil {
		number, err := strconv.Atoi(match[2])
		return match[1], number, err == nil
	}

	var prefix, digits strings.Builder
	for _, char := range room {
		switch {
		case unicode.IsLetter(char):
			prefix.WriteRune(char)
		case unicode.IsDigit(char):
			digits.WriteRune(char)
		}
	}
	number, err := strconv.Atoi(digits.String())
	return prefix.String(), number, err == nil
}

// Adjacent reports whether two rooms sit side by side: same prefix and numbers one apart
func Adjacent(room1, room2 string) bool {
	prefix1, number1, ok1 := splitRoom(room1)
	prefix2, number2, ok2 := splitRoom(room2)
	if !ok1 || !ok2 || prefix1 == "" || prefix1 != prefix2 {
		return false
	}
	return number1-number2 == 1 || number2-number1 == 1
}
