// Package queue defines message payloads exchanged over the message broker.
package queue

// RosterBuildCompletedEvent is published when a roster build run finishes.
// It carries the run's headline counters so downstream consumers can log,
// notify, or trigger analytics without querying the primary database.
type RosterBuildCompletedEvent struct {
    RunID            string `json:"run_id"`
    OrdersProcessed  int    `json:"orders_processed"`
    Created          int    `json:"created"`
    Updated          int    `json:"updated"`
    SkippedOrders    int    `json:"skipped_orders"`
    ValidationErrors int    `json:"validation_errors"`
    PlayersProcessed int    `json:"players_processed"`
    StartedAt        string `json:"started_at"`
    FinishedAt       string `json:"finished_at"`
}
