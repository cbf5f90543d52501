package minerva

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StartBlinkingPrompt writes prompt to w followed by a blinking block
// cursor, purely to make it obvious that input is expected. The returned
// stop function clears the block, leaves the prompt visible, and waits for
// the animator goroutine to exit. It is safe to call stop more than once;
// nothing downstream depends on the animator's termination.
func StartBlinkingPrompt(w io.Writer, prompt string, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		visible := true
		for {
			block := " "
			if visible {
				block = "█"
			}
			fmt.Fprintf(w, "\r%s%s", prompt, block)
			visible = !visible
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s", prompt)
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}
