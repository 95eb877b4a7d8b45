package portal

import (
	"context"
	"sync"
)

// StatusList is the farmer's own-request view, newest first as the API
// returns it.
type StatusList struct {
	client *Client

	mu    sync.Mutex
	items []Request
}

func NewStatusList(client *Client) *StatusList {
	return &StatusList{client: client}
}

func (l *StatusList) Refresh(ctx context.Context) error {
	requests, err := l.client.MyRequests(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.items = requests
	l.mu.Unlock()
	return nil
}

func (l *StatusList) Items() []Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Request{}, l.items...)
}
