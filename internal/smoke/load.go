package smoke

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/okian/restdemo/pkg/logger"
)

// loadBooks appends cfg.Books uniquely named books from cfg.Workers
// goroutines, checks that every append is visible in one list, then
// deletes them again.
func loadBooks(ctx context.Context, cfg *Config, c *httpClient, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "appending books concurrently", logger.Int("books", cfg.Books), logger.Int("workers", cfg.Workers))

	type job struct {
		id   int
		name string
	}
	jobs := make(chan job, cfg.Workers*2)
	added := make(map[int]string, cfg.Books)
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed int64
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				draft := Book{Name: j.name, Author: "Smoke Runner", ISBN: "load", Price: 1}
				r, err := c.do(ctx, http.MethodPost, cfg.BookURL+"/book/"+strconv.Itoa(j.id), draft)
				if err != nil || r.Status != http.StatusOK {
					atomic.AddInt64(&failed, 1)
					continue
				}
				mu.Lock()
				added[j.id] = j.name
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Books; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{id: freshBookID(), name: "load-" + uuid.NewString()}:
			}
		}
	}()
	wg.Wait()

	stats.BooksAdded = len(added)
	if n := atomic.LoadInt64(&failed); n > 0 {
		return failf("%d appends failed", n)
	}

	books, err := listBooks(ctx, c, cfg.BookURL)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(books))
	for _, b := range books {
		seen[b.Name] = true
	}
	for _, name := range added {
		if !seen[name] {
			stats.BooksMissing++
		}
	}

	for id := range added {
		if _, err := c.do(ctx, http.MethodDelete, cfg.BookURL+"/book/"+strconv.Itoa(id), nil); err != nil {
			log.Warn(ctx, "cleanup failed", logger.Int("id", id), logger.Error(err))
		}
	}

	if stats.BooksMissing > 0 {
		return failf("%d of %d appended books missing from the list", stats.BooksMissing, stats.BooksAdded)
	}
	return nil
}
