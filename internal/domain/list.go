package domain

import "strings"

// ListSeparator joins multi-valued movie attributes such as "Action, Comedy".
const ListSeparator = ", "

// notAvailable is what the metadata source puts in list fields it has no data for.
const notAvailable = "N/A"

// SplitList decodes a ListSeparator-joined attribute. Blank and "N/A" tokens are dropped.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ListSeparator)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == notAvailable {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}
