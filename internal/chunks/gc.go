package chunks

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StartGC стартует периодическую очистку незапечатанных загрузок.
func StartGC(d *Disk, ttl time.Duration, every time.Duration) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				if removed, err := d.Sweep(ttl); err != nil {
					log.Warn().Err(err).Str("root", d.root).Msg("chunk gc failed")
				} else if removed > 0 {
					log.Info().Int("removed", removed).Str("root", d.root).Msg("chunk gc removed stale uploads")
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// Sweep удаляет каталоги, которые так и не были запечатаны и не менялись дольше ttl.
// Возвращает число удалённых каталогов.
func (d *Disk) Sweep(ttl time.Duration) (int, error) {
	now := time.Now()
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		dir := filepath.Join(d.root, e.Name())
		stale, err := d.isStale(dir, now, ttl)
		if err != nil || !stale {
			continue
		}

		d.mu.Lock()
		err = os.RemoveAll(dir)
		d.mu.Unlock()
		if err == nil {
			removed++
		}
	}

	return removed, nil
}

func (d *Disk) isStale(dir string, now time.Time, ttl time.Duration) (bool, error) {
	metaPath := filepath.Join(dir, metaFileName)
	fi, err := os.Stat(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		// каталог создан, но ни один чанк не дописан до конца
		fi, err = os.Stat(dir)
		if err != nil {
			return false, err
		}
		return now.Sub(fi.ModTime()) >= ttl, nil
	}
	if err != nil {
		return false, err
	}
	if now.Sub(fi.ModTime()) < ttl {
		return false, nil
	}

	fm, err := readMeta(metaPath)
	if err != nil {
		return false, err
	}

	return !fm.Sealed, nil
}
