package domain

// TxFilter narrows and sorts a live transaction query. Nil pointer fields
// mean "not constrained". SearchNote is applied client-side; everything else
// translates to the store's native query capabilities.
type TxFilter struct {
	Type             *TxType
	CategoryID       *string
	SearchNote       string
	Limit            int // 0 = no limit
	NewestFirst      bool
	StartEpochMillis *int64 // inclusive
	EndEpochMillis   *int64 // inclusive
}
