package models

// OrderKind selects which sibling table an ordering operation targets.
type OrderKind int

const (
	// OrderColumns orders columns under a parent (or at top level) on a board.
	OrderColumns OrderKind = iota
	// OrderCards orders cards within a column.
	OrderCards
)

// OrderScope identifies one sibling set for the position engine.
// Siblings share a board and parent column for column scopes, or a
// column for card scopes.
type OrderScope struct {
	Kind OrderKind

	// BoardID and ParentID identify a column scope. A nil ParentID
	// means the board's top-level columns.
	BoardID  int64
	ParentID *int64

	// ColumnID identifies a card scope.
	ColumnID int64
}

// ColumnScope builds the sibling scope for columns under parentID on
// the board.
func ColumnScope(boardID int64, parentID *int64) OrderScope {
	return OrderScope{Kind: OrderColumns, BoardID: boardID, ParentID: parentID}
}

// CardScope builds the sibling scope for cards in the column.
func CardScope(columnID int64) OrderScope {
	return OrderScope{Kind: OrderCards, ColumnID: columnID}
}

// OrderedRow is one sibling row as seen by the position engine.
type OrderedRow struct {
	ID       int64
	Position int
	Deleted  bool
}
