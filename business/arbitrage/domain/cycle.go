// Package domain models the trade cycle and the durable state document
// for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	pricing "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/domain"
)

// CycleStatus tracks how far a trade cycle has progressed.
type CycleStatus string

const (
	CycleStarted           CycleStatus = "started"
	CycleAwaitingLiquidity CycleStatus = "awaiting_liquidity"
	CycleLegInFlight       CycleStatus = "leg_in_flight"
	CycleAwaitingTransfer  CycleStatus = "awaiting_transfer"
	CycleCompleted         CycleStatus = "completed"
	CycleFailed            CycleStatus = "failed"
)

// LegKind names one atomic action within a cycle.
type LegKind string

const (
	LegCEXBuy     LegKind = "cex_buy"
	LegCEXSell    LegKind = "cex_sell"
	LegDEXBuy     LegKind = "dex_buy"
	LegDEXSell    LegKind = "dex_sell"
	LegWithdrawal LegKind = "withdrawal"
	LegDeposit    LegKind = "deposit"
)

// Leg records one completed or attempted action of a cycle.
type Leg struct {
	Kind        LegKind
	Reference   string // venue order id, tx hash, or transfer id
	CompletedAt time.Time
}

// Cycle is one arbitrage attempt. At most one is active at a time; the
// orchestrator's single-threaded loop enforces that without locking.
type Cycle struct {
	Direction pricing.Direction
	Quantity  decimal.Decimal
	CreatedAt time.Time
	Status    CycleStatus
	Legs      []Leg
}

// NewCycle starts a cycle for a fixed quantity in the given direction.
func NewCycle(direction pricing.Direction, quantity decimal.Decimal, now time.Time) *Cycle {
	return &Cycle{
		Direction: direction,
		Quantity:  quantity,
		CreatedAt: now,
		Status:    CycleStarted,
	}
}

// RecordLeg appends a finished leg and advances the status.
func (c *Cycle) RecordLeg(kind LegKind, reference string, now time.Time) {
	c.Legs = append(c.Legs, Leg{Kind: kind, Reference: reference, CompletedAt: now})
	c.Status = CycleLegInFlight
}

// Complete marks the cycle as fully settled.
func (c *Cycle) Complete() { c.Status = CycleCompleted }

// Fail marks the cycle as aborted. Already-completed legs keep their
// venue-side state for the next tick's reconciliation.
func (c *Cycle) Fail() { c.Status = CycleFailed }
