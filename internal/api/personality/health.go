package personality

import (
	"context"
	"fmt"
)

// Status asks the backend for its health marker, "UP" when healthy.
func (c *Client) Status(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/metric/status", "", nil)
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}

	var status string
	if err := c.parseResponse(data, &status); err != nil {
		return "", err
	}

	return status, nil
}
