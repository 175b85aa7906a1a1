// Package systemx process level helpers.
package systemx

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
)

// Cleanup - waits for one of the provided signals, or for the provided context's
// done event to be received. Once received the cleanup function is executed and
// blocks while it waits for everything to finish
func Cleanup(ctx context.Context, cancel func(), wg *sync.WaitGroup, sigs ...os.Signal) func(func()) {
	return func(cleanup func()) {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, sigs...)
		defer signal.Stop(signals)

		select {
		case <-ctx.Done():
		case <-signals:
			cancel()
		}

		cleanup()
		wg.Wait()
	}
}

// FileExists returns true IFF a non-directory file exists at the provided path.
func FileExists(path string) bool {
	info, err := os.Stat(path)

	if err != nil {
		return false
	}

	return !info.IsDir()
}

// DirExists returns true IFF a directory exists at the provided path.
func DirExists(path string) bool {
	info, err := os.Stat(path)

	if err != nil {
		return false
	}

	return info.IsDir()
}

// WorkingDirectoryOrDefault loads the working directory or fallsback to the provided
// path when an error occurs.
func WorkingDirectoryOrDefault(fallback string) (dir string) {
	var (
		err error
	)

	if dir, err = os.Getwd(); err != nil {
		log.Println("failed to get working directory", err)
		return fallback
	}

	return dir
}
