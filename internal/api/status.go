package api

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GetSystemStatus aggregates node, active-node and head listings into a
// snapshot. The three fetches run concurrently and fail independently:
// a failed fetch counts as empty, and the snapshot is healthy only when
// both the node and active-node fetches succeeded. An error is returned
// only when every fetch failed.
func (c *Client) GetSystemStatus(ctx context.Context) (SystemStatus, error) {
	var (
		nodes     []Node
		active    []ActiveNode
		heads     []Head
		nodesErr  error
		activeErr error
		headsErr  error
	)

	// Each goroutine records its own error so one failure never cancels the others.
	var g errgroup.Group
	g.Go(func() error {
		nodes, nodesErr = c.listNodes(ctx, statusNodesLimit, "Failed to fetch system status")
		return nil
	})
	g.Go(func() error {
		active, activeErr = c.GetActiveNodes(ctx)
		return nil
	})
	g.Go(func() error {
		heads, headsErr = c.GetHeads(ctx)
		return nil
	})
	_ = g.Wait()

	if nodesErr != nil && activeErr != nil && headsErr != nil {
		return SystemStatus{}, nodesErr
	}

	for name, err := range map[string]error{"nodes": nodesErr, "active-nodes": activeErr, "heads": headsErr} {
		if err != nil {
			c.logger.Debug("status sub-fetch failed", "fetch", name, "error", err)
		}
	}

	return Summarize(nodes, active, heads, nodesErr == nil && activeErr == nil), nil
}

// Summarize computes a snapshot from raw listings.
func Summarize(nodes []Node, active []ActiveNode, heads []Head, healthy bool) SystemStatus {
	running := 0
	for _, n := range nodes {
		if n.Status == StatusActive {
			running++
		}
	}

	seen := make(map[ID]struct{})
	for _, a := range active {
		if a.IsActive {
			seen[a.HydraNodeID] = struct{}{}
		}
	}

	status := HealthError
	if healthy {
		status = HealthHealthy
	}

	return SystemStatus{
		RunningNodes: running,
		RunningHeads: len(seen),
		TotalHeads:   len(heads),
		Status:       status,
	}
}
