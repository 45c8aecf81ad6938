package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/outreach/internal/filex"
)

// storedSession is what the CLI keeps between invocations. The cookie is
// only replayed against the server it was issued by.
type storedSession struct {
	Server string `json:"server"`
	Cookie string `json:"cookie"`
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".outreach-session.json"
	}
	return filepath.Join(dir, "outreach", "session.json")
}

func loadSession(path, server string) (string, error) {
	data, err := filex.ReadOptional(path)
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}
	if data == nil {
		return "", nil
	}
	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parse session file: %w", err)
	}
	if s.Server != server {
		return "", nil
	}
	return s.Cookie, nil
}

func saveSession(path, server, cookie string) error {
	if cookie == "" {
		return filex.RemoveOptional(path)
	}
	data, err := json.Marshal(storedSession{Server: server, Cookie: cookie})
	if err != nil {
		return err
	}
	return filex.WritePrivate(path, data)
}
