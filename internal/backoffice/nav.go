// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backoffice

// Level is the depth of the navigation stack.
type Level int

// Navigation levels.
const (
	Level0 Level = iota // service list
	Level1              // extras of the selected service
	Level2              // detail of the selected extra
)

func (l Level) String() string {
	switch l {
	case Level0:
		return "services"
	case Level1:
		return "extras"
	case Level2:
		return "detail"
	default:
		return "unknown"
	}
}

// Direction tells a renderer which way the last transition moved.
type Direction int

// Directions.
const (
	Backward Direction = -1
	None     Direction = 0
	Forward  Direction = 1
)

func directionOf(from, to Level) Direction {
	switch {
	case to > from:
		return Forward
	case to < from:
		return Backward
	default:
		return None
	}
}

// Selection is a snapshot of the navigation state. Zero ids mean nothing
// is selected at that level.
type Selection struct {
	Level     Level
	ServiceID int64
	ExtraID   int64
	Direction Direction
}

// Navigator is the selection state machine. The zero value is at Level0.
type Navigator struct {
	sel Selection
}

// Selection returns the current state.
func (n *Navigator) Selection() Selection {
	return n.sel
}

func (n *Navigator) moveTo(level Level, serviceID, extraID int64) Direction {
	d := directionOf(n.sel.Level, level)
	n.sel = Selection{Level: level, ServiceID: serviceID, ExtraID: extraID, Direction: d}
	return d
}

// SelectService opens the extras of id. From Level1 or Level2 it is a
// lateral move that clears the selected extra.
func (n *Navigator) SelectService(id int64) Direction {
	return n.moveTo(Level1, id, 0)
}

// SelectExtra opens the detail of id. It reports None without moving when
// no service is selected.
func (n *Navigator) SelectExtra(id int64) Direction {
	if n.sel.ServiceID == 0 {
		n.sel.Direction = None
		return None
	}
	return n.moveTo(Level2, n.sel.ServiceID, id)
}

// Back moves one level up, clearing the selection of the level it leaves.
func (n *Navigator) Back() Direction {
	switch n.sel.Level {
	case Level2:
		return n.moveTo(Level1, n.sel.ServiceID, 0)
	case Level1:
		return n.moveTo(Level0, 0, 0)
	default:
		n.sel.Direction = None
		return None
	}
}

// ClearService returns to Level0 if id is the selected service.
func (n *Navigator) ClearService(id int64) bool {
	if id == 0 || n.sel.ServiceID != id {
		return false
	}
	n.moveTo(Level0, 0, 0)
	return true
}

// ClearExtra returns to Level1 if id is the selected extra.
func (n *Navigator) ClearExtra(id int64) bool {
	if id == 0 || n.sel.ExtraID != id {
		return false
	}
	n.moveTo(Level1, n.sel.ServiceID, 0)
	return true
}

// Reset returns to the initial state.
func (n *Navigator) Reset() {
	n.moveTo(Level0, 0, 0)
}
