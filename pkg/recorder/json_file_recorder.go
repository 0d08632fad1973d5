package recorder

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// JSON 文件记录器，按行追加，用作交易流水
type JSONFileRecorder struct {
	mu   sync.Mutex
	Path string
}

func NewJSONFileRecorder(path string) *JSONFileRecorder {
	return &JSONFileRecorder{Path: path}
}

// 一行流水记录
type entry struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  any       `json:"data,omitempty"`
}

// Record 追加一条记录，event 例如 entry_placed / stop_placed / entry_failed
func (r *JSONFileRecorder) Record(event string, result any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(entry{Time: time.Now().UTC(), Event: event, Data: result})
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}
