package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"treetodo/pkg/task"
)

// Watch follows the server's change stream and calls fn for every change.
// It returns nil once ctx is done, or an error when the stream fails.
func (c *Client) Watch(ctx context.Context, fn func(task.Change)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "api/tasks/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode}
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		var ch task.Change
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &ch); err != nil {
			return fmt.Errorf("decode change: %w", err)
		}
		fn(ch)
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return &NetworkError{Err: err}
	}
	return &NetworkError{Err: errors.New("change stream closed")}
}
