package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/remindr/internal/store"
)

func ToCSV(sessions []store.FocusSession, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Task", "Started", "Ended", "Duration (min)", "Note"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			fmt.Sprintf("%d", s.ID),
			s.TaskTitle,
			s.StartedAt.Local().Format(time.RFC3339),
			s.EndedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.DurationMinutes),
			s.Note,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
