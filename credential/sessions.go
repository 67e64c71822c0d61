package credential

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

type Session struct {
	Name    string
	Payload string
}

// ParseSessionsFile reads name|payload lines. Blank lines and # comments
// are ignored, malformed lines are skipped with a warning.
func ParseSessionsFile(path string, logger *zap.Logger) ([]Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sessions []Session
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, payload, found := strings.Cut(line, "|")
		name = strings.TrimSpace(name)
		payload = strings.TrimSpace(payload)
		if !found || name == "" || payload == "" {
			logger.Warn("Skipping invalid session line", zap.String("line", line))
			continue
		}
		if seen[name] {
			logger.Warn("Skipping duplicate session", zap.String("session", name))
			continue
		}
		seen[name] = true

		sessions = append(sessions, Session{Name: name, Payload: payload})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sessions file: %w", err)
	}

	return sessions, nil
}
