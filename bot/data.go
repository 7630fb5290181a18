package bot

import (
	"encoding/json"
	"os"
	"path/filepath"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/helpers/pkg/file"
)

// Progress is the training state that outlives one game.
type Progress struct {
	Version string
	Episode int
	Epsilon float64
	Wins    int
}

func SaveProgress(path string, p Progress) error {
	if dir := filepath.Dir(path); !file.Exists(dir) {
		log.Warning("No data dir")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	p.Version = "1.0"
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProgress returns def when there is no saved progress or it can't be read.
func LoadProgress(path string, def Progress) Progress {
	if !file.Exists(path) {
		return def
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(err)
		return def
	}

	var p Progress
	if err = json.Unmarshal(data, &p); err != nil {
		log.Error(err)
		return def
	}
	return p
}
