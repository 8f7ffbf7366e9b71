package runway

import (
	"context"
	"errors"
	"fmt"

	"reelsmith/internal/poll"
	"reelsmith/internal/services"
)

// Await polls the task until it reaches a terminal status and returns the
// generated clip URL.
func (c *Client) Await(ctx context.Context, taskID string, cfg poll.Config, opts ...poll.Option) (string, error) {
	check := func(ctx context.Context, attempt int) (string, bool, error) {
		task, err := c.Retrieve(ctx, taskID)
		if err != nil {
			return "", false, err
		}
		switch task.Status {
		case StatusSucceeded:
			videoURL := task.VideoURL()
			if videoURL == "" {
				return "", false, services.Wrap(services.ErrUpstream, stageName, "await",
					fmt.Sprintf("task %s succeeded without output", taskID), nil)
			}
			return videoURL, true, nil
		case StatusFailed, StatusCanceled:
			return "", false, services.Wrap(services.ErrUpstream, stageName, "await",
				fmt.Sprintf("task %s %s: %s", taskID, task.Status, failureDetail(task)), nil)
		default:
			return "", false, nil
		}
	}

	videoURL, attempts, err := poll.Until(ctx, cfg, check, opts...)
	if errors.Is(err, poll.ErrExhausted) {
		return "", services.Wrap(services.ErrTimeout, stageName, "await",
			fmt.Sprintf("task %s not finished after %d polls of %s", taskID, attempts, cfg.Interval), err)
	}
	if err != nil {
		return "", err
	}
	return videoURL, nil
}

func failureDetail(task Task) string {
	switch {
	case task.Failure != "" && task.FailureCode != "":
		return task.Failure + " (" + task.FailureCode + ")"
	case task.Failure != "":
		return task.Failure
	case task.FailureCode != "":
		return task.FailureCode
	default:
		return "no failure reason reported"
	}
}
