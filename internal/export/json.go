package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/remindr/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          int64  `json:"id"`
	Task        string `json:"task,omitempty"`
	TaskID      *int64 `json:"task_id,omitempty"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at"`
	DurationMin int    `json:"duration_minutes"`
	Note        string `json:"note,omitempty"`
}

func ToJSON(sessions []store.FocusSession, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Task:        s.TaskTitle,
			TaskID:      s.TaskID,
			StartedAt:   s.StartedAt.Local().Format(time.RFC3339),
			EndedAt:     s.EndedAt.Local().Format(time.RFC3339),
			DurationMin: s.DurationMinutes,
			Note:        s.Note,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
