package enrich

import (
	"bufio"
	"io"
	"log"
	"strings"
	"sync/atomic"
)

// StopFlag is the single piece of shared state between the worker loop
// and the stdin listener. It is monotonic: once set it is never
// cleared, so a plain atomic bool is all the synchronization needed.
type StopFlag struct {
	flag atomic.Bool
}

// Request asks the runner to stop after the in-flight chunk.
func (f *StopFlag) Request() {
	f.flag.Store(true)
}

// Requested reports whether a stop has been requested.
func (f *StopFlag) Requested() bool {
	return f.flag.Load()
}

// ListenForQuit reads lines from r until the user types "q", then
// requests a graceful stop. Meant to run on its own goroutine with
// os.Stdin; end of input without a "q" is not an error.
func ListenForQuit(r io.Reader, flag *StopFlag) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "q") {
			log.Printf("Stop requested, will exit after the current chunk")
			flag.Request()
			return
		}
	}
}
