package notifications

import "regexp"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

// ExtractMentions returns the unique @usernames referenced in content, in
// order of first appearance. The @ prefix is stripped.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		username := m[1]
		if _, ok := seen[username]; ok {
			continue
		}
		seen[username] = struct{}{}
		usernames = append(usernames, username)
	}
	return usernames
}
