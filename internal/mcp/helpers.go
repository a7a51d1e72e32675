package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"sketchpad/internal/domain"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// requireFloat returns a numeric argument or an error naming it.
func requireFloat(args map[string]any, key string) (float64, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getBool(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// parsePoints accepts a JSON array of {x, y} objects or of [x, y] pairs.
func parsePoints(data string) ([]domain.Point, error) {
	var pts []domain.Point
	if err := parseJSON(data, &pts); err == nil {
		return pts, nil
	}
	var pairs [][2]float64
	if err := parseJSON(data, &pairs); err != nil {
		return nil, fmt.Errorf("points must be a JSON array of {x,y} or [x,y]: %w", err)
	}
	pts = make([]domain.Point, len(pairs))
	for i, p := range pairs {
		pts[i] = domain.Point{X: p[0], Y: p[1]}
	}
	return pts, nil
}
