package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates on stderr while a blocking call is in flight. After a
// second it also shows the elapsed time, which matters while a transaction
// waits to be mined.
type Spinner struct {
	msg      string
	out      io.Writer
	interval time.Duration

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(msg string) *Spinner {
	return newSpinner(msg, os.Stderr, 80*time.Millisecond)
}

func newSpinner(msg string, out io.Writer, interval time.Duration) *Spinner {
	return &Spinner{
		msg:      msg,
		out:      out,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Spinner) Start() {
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)
	start := time.Now()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.out, "\r%s  %s%s", StyleChain.Render(spinnerFrames[i%len(spinnerFrames)]), s.msg, elapsed(time.Since(start)))
		select {
		case <-s.stop:
			fmt.Fprintf(s.out, "\r%-72s\r", "")
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func elapsed(d time.Duration) string {
	if d < time.Second {
		return ""
	}
	return StyleMeta.Render(fmt.Sprintf(" (%ds)", int(d.Seconds())))
}
