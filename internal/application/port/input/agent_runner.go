package input

import (
	"context"

	"agent-bridge/internal/domain/entity"
)

// AgentRunner plans and executes browser actions until the task is done.
type AgentRunner interface {
	Run(ctx context.Context) (*entity.AgentHistory, error)
}
