package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// LoadFiles reads paths into uploads with a small worker pool. The result keeps
// the order of paths; the first read error is returned. Uploads are named by base
// name unless two paths share one, in which case those keep their cleaned path.
func LoadFiles(paths []string, workers int) ([]Upload, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyBatch
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	type job struct {
		index int
		path  string
		name  string
	}
	names := uploadNames(paths)
	uploads := make([]Upload, len(paths))
	errs := make([]error, len(paths))
	jobs := make(chan job)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				raw, err := os.ReadFile(j.path)
				if err != nil {
					errs[j.index] = &DocumentError{Name: j.name, Err: fmt.Errorf("read file: %w", err)}
					continue
				}
				uploads[j.index] = Upload{Name: j.name, Data: raw}
			}
		}()
	}

	for i, path := range paths {
		jobs <- job{index: i, path: path, name: names[i]}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return uploads, nil
}

func uploadNames(paths []string) []string {
	seen := map[string]int{}
	for _, path := range paths {
		seen[filepath.Base(path)]++
	}
	names := make([]string, len(paths))
	for i, path := range paths {
		base := filepath.Base(path)
		if seen[base] > 1 {
			names[i] = filepath.ToSlash(filepath.Clean(path))
			continue
		}
		names[i] = base
	}
	return names
}
