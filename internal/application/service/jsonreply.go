package service

import (
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object found in response")

// ExtractJSONObject returns the outermost {...} of a model reply. Models often
// wrap JSON in prose or markdown fences.
func ExtractJSONObject(reply string) (string, error) {
	reply = strings.TrimSpace(reply)

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}

	return reply[start : end+1], nil
}
