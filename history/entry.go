package history

import (
	"fmt"
	"time"
)

// Entry is one started playlist item.
type Entry struct {
	Target   string    `json:"target"`
	Item     int       `json:"item"`
	PlayedAt time.Time `json:"played_at"`
}

func (e *Entry) String() string {
	return fmt.Sprintf("#%d on %s", e.Item, e.Target)
}
