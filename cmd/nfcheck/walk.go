package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
)

// stdinName stands for standard input in arguments and messages.
const stdinName = "-"

// collectFiles expands arguments into input files. Directories are walked
// for files with one of the given extensions, honouring .gitignore. Files
// named explicitly are kept whatever their extension. No arguments means
// standard input.
func collectFiles(args, extensions []string) ([]string, error) {
	if len(args) == 0 {
		return []string{stdinName}, nil
	}

	var files []string

	for _, arg := range args {
		if arg == stdinName {
			files = append(files, arg)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		found, err := walkDir(arg, extensions)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}

		files = append(files, found...)
	}

	return files, nil
}

// walkDir finds matching files under root, sorted for a stable run order.
func walkDir(root string, extensions []string) ([]string, error) {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = trimDots(extensions)

	var walkErrs walkErrors

	fileWalker.SetErrorHandler(walkErrs.add)

	var (
		wg    sync.WaitGroup
		files []string
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			files = append(files, f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return nil, err
	}

	wg.Wait()

	sort.Strings(files)

	return files, walkErrs.err()
}

// walkErrors collects errors from the walker's goroutines. Walking continues
// past them.
type walkErrors struct {
	mu   sync.Mutex
	errs []error
}

func (w *walkErrors) add(err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.errs = append(w.errs, err)

	return true
}

func (w *walkErrors) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return errors.Join(w.errs...)
}

func trimDots(extensions []string) []string {
	out := make([]string, len(extensions))
	for i, ext := range extensions {
		out[i] = strings.TrimPrefix(ext, ".")
	}

	return out
}

// readInput reads a file, or standard input for "-".
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == stdinName {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(filepath.Clean(name))
}
