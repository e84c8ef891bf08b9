package pooledwriter

// safeSend sends v on ch, converting the panic that Go raises when sending
// on a closed channel into a *PoolError with kind ErrChannelSend. Callers
// that must tolerate a channel closing out from under them (producers
// racing pool shutdown) recover from it here rather than at every call
// site.
func safeSend[T any](ch chan<- T, v T) (err error) {
	defer func() {
		if recover() != nil {
			err = channelSendErr()
		}
	}()
	ch <- v
	return nil
}
