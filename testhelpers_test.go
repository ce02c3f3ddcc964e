package async

import "time"

const (
	recvTimeout = 200 * time.Millisecond
	recvTick    = 5 * time.Millisecond
)

func timeoutCh() <-chan time.Time { return time.After(time.Second) }
