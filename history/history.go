// Package history remembers which playlist items were started on which player.
package history

import (
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/filesystem"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/where"
)

// cacher persists the history keyed by player target.
var cacher = gache.New[map[string][]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every recorded entry grouped by player target, most recent first.
func Get() (map[string][]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string][]*Entry), nil
	}
	return cached, nil
}

// Save records that item was started on target. Starting an item again moves
// it to the front; at most history.size entries are kept per target.
func Save(target string, item int) error {
	if !viper.GetBool(key.HistorySave) {
		return nil
	}

	saved, err := Get()
	if err != nil {
		return err
	}

	entries := lo.Reject(saved[target], func(e *Entry, _ int) bool {
		return e.Item == item
	})
	entries = append([]*Entry{{Target: target, Item: item, PlayedAt: time.Now()}}, entries...)

	if size := viper.GetInt(key.HistorySize); size > 0 && len(entries) > size {
		entries = entries[:size]
	}
	saved[target] = entries

	return cacher.Set(saved)
}

// Remove forgets everything recorded for target.
func Remove(target string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, target)
	return cacher.Set(saved)
}
