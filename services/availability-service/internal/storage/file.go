package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"gopkg.in/yaml.v3"
)

// FileSource reads events and work hours from flat files. Files are re-read on
// every load so edits show up without a restart.
type FileSource struct {
	eventsPath    string
	workhoursPath string
}

func NewFileSource(eventsPath, workhoursPath string) *FileSource {
	return &FileSource{eventsPath: eventsPath, workhoursPath: workhoursPath}
}

func (s *FileSource) LoadEvents(ctx context.Context) ([]availability.Event, error) {
	var events []availability.Event
	if err := decodeFile(ctx, s.eventsPath, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *FileSource) LoadWorkhours(ctx context.Context) ([]availability.WorkhourRule, error) {
	var rules []availability.WorkhourRule
	if err := decodeFile(ctx, s.workhoursPath, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// decodeFile picks the decoder from the extension: .yaml/.yml or JSON otherwise.
func decodeFile(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("data file not configured")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, out)
	default:
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
