package app

import (
	"encoding/json"
	"fmt"
)

func encode(msg any) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("error encoding %T - %w", msg, err)
	}
	return string(data), nil
}

func decode(msg string, v any) error {
	err := json.Unmarshal([]byte(msg), v)
	if err != nil {
		return fmt.Errorf("error decoding %T - %w", v, err)
	}
	return nil
}
