package analytics

import (
	"time"
)

// Tool parameters arrive as loosely typed maps from the orchestration layer.
// These helpers read them with type coercion for the numeric shapes JSON
// decoding produces.

func paramString(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func paramFloat(params map[string]interface{}, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func paramDate(params map[string]interface{}, key string, fallback time.Time) time.Time {
	if s := paramString(params, key); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t
		}
	}
	return fallback
}
