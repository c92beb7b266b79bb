package world

import (
	"errors"
	"strings"
)

// ResourceNode is a resource-bearing object placed in the world.
type ResourceNode struct {
	GenericType string  `json:"generic_type"`
	Amount      float64 `json:"amount"`
	MaxAmount   float64 `json:"max_amount"`
	Position    Point   `json:"position"`
}

var ErrInvalidResourceNode = errors.New("invalid resource node")

func (n ResourceNode) Validate() error {
	if strings.TrimSpace(n.GenericType) == "" || n.Amount < 0 || n.MaxAmount < n.Amount {
		return ErrInvalidResourceNode
	}
	return nil
}
