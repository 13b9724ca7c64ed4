// Package channels contains small channel helpers shared by the
// concurrency packages.
package channels

// CloseIgnorePanic closes a channel, suppressing the panic that results
// when the channel has already been closed. Nil channels are ignored.
// Use this where two goroutines may legitimately race to close the same
// broadcast channel.
func CloseIgnorePanic[T any](ch chan<- T) {
	if ch == nil {
		return
	}

	defer func() {
		_ = recover()
	}()

	close(ch)
}
