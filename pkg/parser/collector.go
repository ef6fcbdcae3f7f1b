package parser

import (
	"context"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

// Collector is a Handler that keeps every event
type Collector struct {
	Objects      []*epcis.ObjectEvent
	Aggregations []*epcis.AggregationEvent
	Transactions []*epcis.TransactionEvent
	// Events holds all events in document order
	Events []epcis.Eventer
}

func (c *Collector) OnObjectEvent(_ context.Context, ev *epcis.ObjectEvent) error {
	c.Objects = append(c.Objects, ev)
	c.Events = append(c.Events, ev)
	return nil
}

func (c *Collector) OnAggregationEvent(_ context.Context, ev *epcis.AggregationEvent) error {
	c.Aggregations = append(c.Aggregations, ev)
	c.Events = append(c.Events, ev)
	return nil
}

func (c *Collector) OnTransactionEvent(_ context.Context, ev *epcis.TransactionEvent) error {
	c.Transactions = append(c.Transactions, ev)
	c.Events = append(c.Events, ev)
	return nil
}
