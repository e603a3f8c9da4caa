package sync

import (
	stdsync "sync"
	"time"
)

const (
	// maxPageSize is the largest page the remote listing endpoints accept.
	maxPageSize = 100
	// pageWaveSize bounds the number of in-flight page requests per wave.
	pageWaveSize = 5
)

var (
	// waveDelay is the pause between waves, a self-imposed rate limit.
	waveDelay = 500 * time.Millisecond
	// sequentialPageDelay spaces the page requests of a rapid fetch.
	sequentialPageDelay = 250 * time.Millisecond
)

// pageFetch returns one page of records plus the total item and page counts
// reported by the remote platform.
type pageFetch[T any] func(page, perPage int) (records []T, total int, totalPages int, err error)

// fetchAllPages drives fetch across every page of a listing. Page 1 is
// fetched first to learn the page count; the rest are fetched in bounded
// concurrent waves with a pause in between. Record order across pages is not
// preserved. Any page failure aborts the whole invocation.
func fetchAllPages[T any](fetch pageFetch[T]) ([]T, error) {
	firstPage, _, totalPages, err := fetch(1, maxPageSize)
	if err != nil {
		return nil, err
	}
	// Copy into a fresh slice: appending into the fetch's return value could
	// overwrite storage the client still aliases.
	records := append([]T(nil), firstPage...)

	var mu stdsync.Mutex
	for start := 2; start <= totalPages; start += pageWaveSize {
		end := start + pageWaveSize - 1
		if end > totalPages {
			end = totalPages
		}

		var wg stdsync.WaitGroup
		var firstErr error
		for page := start; page <= end; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				pageRecords, _, _, err := fetch(page, maxPageSize)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				records = append(records, pageRecords...)
			}(page)
		}
		wg.Wait()

		if firstErr != nil {
			return nil, firstErr
		}
		if end < totalPages {
			time.Sleep(waveDelay)
		}
	}

	return records, nil
}

// fetchRecent accumulates the most recent limit records using sequential
// page requests of min(100, remaining), stopping early when a page comes
// back short, which signals the remote list is exhausted.
func fetchRecent[T any](fetch pageFetch[T], limit int) ([]T, error) {
	var records []T
	for page := 1; len(records) < limit; page++ {
		perPage := limit - len(records)
		if perPage > maxPageSize {
			perPage = maxPageSize
		}

		pageRecords, _, _, err := fetch(page, perPage)
		if err != nil {
			return nil, err
		}
		records = append(records, pageRecords...)

		if len(pageRecords) < perPage {
			break
		}
		if len(records) < limit {
			time.Sleep(sequentialPageDelay)
		}
	}
	return records, nil
}
