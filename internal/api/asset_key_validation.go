package api

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxObjectKeyLength = 200

func avatarPrefix(userID uint) string {
	return fmt.Sprintf("avatars/%d/", userID)
}

// isValidAvatarObjectKey accepts only image keys under the caller's own prefix.
func isValidAvatarObjectKey(userID uint, key string) bool {
	if key == "" || len(key) > maxObjectKeyLength || !utf8.ValidString(key) {
		return false
	}
	if !strings.HasPrefix(key, avatarPrefix(userID)) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	lower := strings.ToLower(key)
	for _, ext := range avatarTypes {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
