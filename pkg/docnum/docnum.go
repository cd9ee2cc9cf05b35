// Package docnum issues human-readable document numbers for transactions and invoices.
package docnum

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	PrefixTransaction = "TXN"
	PrefixInvoice     = "INV"
)

// Generator is safe for concurrent use. Numbers stay unique across nodes as long
// as every node is configured with a distinct node id.
type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

// Next returns PREFIX-YYYYMM-<id>.
func (g *Generator) Next(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("200601"), g.node.Generate().Base36())
}
