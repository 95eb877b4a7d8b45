package portal

import (
	"context"
	"sort"
	"strings"
	"sync"

	"smartagri/portal/internal/model"
)

// Console is the admin view over all power requests. Decisions are applied
// optimistically to the local list before the API call, then the list is
// reconciled with a full re-fetch so the server stays the source of truth.
type Console struct {
	client *Client

	// ConfirmDelete is asked before a delete proceeds. A nil callback
	// confirms everything.
	ConfirmDelete func(Request) bool

	mu    sync.Mutex
	items []Request
}

func NewConsole(client *Client) *Console {
	return &Console{client: client}
}

func (c *Console) Load(ctx context.Context) error {
	requests, err := c.client.AllRequests(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = requests
	c.mu.Unlock()
	return nil
}

// Items returns a snapshot of the current list.
func (c *Console) Items() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request{}, c.items...)
}

func (c *Console) Approve(ctx context.Context, requestID string) error {
	return c.decide(ctx, requestID, model.StatusApproved, c.client.ApproveRequest)
}

func (c *Console) Reject(ctx context.Context, requestID string) error {
	return c.decide(ctx, requestID, model.StatusRejected, c.client.RejectRequest)
}

func (c *Console) decide(ctx context.Context, requestID, status string, call func(context.Context, string) (Request, error)) error {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == requestID {
			c.items[i].Status = status
			break
		}
	}
	c.mu.Unlock()

	_, err := call(ctx, requestID)
	c.reconcile(ctx)
	return err
}

func (c *Console) Delete(ctx context.Context, requestID string) error {
	c.mu.Lock()
	var target *Request
	for i := range c.items {
		if c.items[i].ID == requestID {
			target = &c.items[i]
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return nil
	}
	request := *target
	c.mu.Unlock()

	if c.ConfirmDelete != nil && !c.ConfirmDelete(request) {
		return nil
	}

	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID != requestID {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	err := c.client.DeleteRequest(ctx, requestID)
	c.reconcile(ctx)
	return err
}

// reconcile replaces the optimistic list with the server's view. A failed
// re-fetch leaves the optimistic state in place until the next load.
func (c *Console) reconcile(ctx context.Context) {
	requests, err := c.client.AllRequests(ctx)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.items = requests
	c.mu.Unlock()
}

// Filter returns the requests in the given status. Empty or "all" keeps
// everything.
func (c *Console) Filter(status string) []Request {
	return c.View(status, "")
}

// Search matches the term against farmer name and area, case-insensitively.
func (c *Console) Search(term string) []Request {
	return c.View("", term)
}

// View combines the status filter and the search term; a request must
// satisfy both. The filter is an exact status match; only the chart
// breakdown normalizes unknown statuses.
func (c *Console) View(status, term string) []Request {
	term = strings.ToLower(strings.TrimSpace(term))
	all := status == "" || strings.EqualFold(status, "all")

	matched := []Request{}
	for _, item := range c.Items() {
		if !all && item.Status != status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(item.FarmerName), term) &&
			!strings.Contains(strings.ToLower(item.Area), term) {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}

type VolumePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// VolumeSeries counts requests per calendar day, oldest day first.
// Records without a createdAt fall back to their requestDate.
func (c *Console) VolumeSeries() []VolumePoint {
	counts := map[string]int{}
	for _, item := range c.Items() {
		day := requestDay(item)
		if day == "" {
			continue
		}
		counts[day]++
	}

	series := make([]VolumePoint, 0, len(counts))
	for day, count := range counts {
		series = append(series, VolumePoint{Date: day, Count: count})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// StatusBreakdown counts requests per status, treating anything
// unrecognized as pending.
func (c *Console) StatusBreakdown() map[string]int {
	breakdown := map[string]int{
		model.StatusPending:  0,
		model.StatusApproved: 0,
		model.StatusRejected: 0,
	}
	for _, item := range c.Items() {
		breakdown[normalizeStatus(item.Status)]++
	}
	return breakdown
}

func normalizeStatus(status string) string {
	switch {
	case strings.EqualFold(status, model.StatusApproved):
		return model.StatusApproved
	case strings.EqualFold(status, model.StatusRejected):
		return model.StatusRejected
	default:
		return model.StatusPending
	}
}

func requestDay(request Request) string {
	stamp := request.CreatedAt
	if stamp == "" {
		stamp = request.RequestDate
	}
	if len(stamp) >= 10 {
		return stamp[:10]
	}
	return stamp
}
