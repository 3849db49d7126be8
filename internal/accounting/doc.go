// Package accounting holds the pure portfolio calculations: split adjustment,
// FIFO lot matching, position aggregation, value history reconstruction,
// risk metrics and allocation. Nothing in this package performs I/O; callers
// supply transactions, quotes and price series and receive structured rows.
package accounting
