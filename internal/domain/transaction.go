package domain

// TxType classifies a transaction as money in or money out.
type TxType string

const (
	Income  TxType = "INCOME"
	Expense TxType = "EXPENSE"
)

// ParseTxType decodes the stored enum-name string. Unknown or missing tags
// default to Expense; stored data must never make decoding fail.
func ParseTxType(s string) TxType {
	if s == string(Income) {
		return Income
	}
	return Expense
}

// Transaction is one income or expense record.
//
// DateEpochMillis is the user-editable logical date of the transaction;
// CreatedAt is fixed at first creation and never overwritten on edit.
type Transaction struct {
	ID              string
	Amount          float64
	Type            TxType
	CategoryID      string
	Note            string
	DateEpochMillis int64
	CreatedAt       int64
}

// DecodeTransaction builds a Transaction from a raw stored document. Every
// field falls back independently so one malformed field never discards the
// rest of the record.
func DecodeTransaction(id string, data map[string]any) Transaction {
	return Transaction{
		ID:              id,
		Amount:          asFloat(data["amount"]),
		Type:            ParseTxType(asString(data["type"])),
		CategoryID:      asString(data["categoryId"]),
		Note:            asString(data["note"]),
		DateEpochMillis: asInt64(data["dateEpochMillis"]),
		CreatedAt:       asInt64(data["createdAt"]),
	}
}

// EncodeTransaction produces the stored document for tx. The document never
// embeds the id; the store key carries it.
func EncodeTransaction(tx Transaction) map[string]any {
	return map[string]any{
		"amount":          tx.Amount,
		"type":            string(tx.Type),
		"categoryId":      tx.CategoryID,
		"note":            tx.Note,
		"dateEpochMillis": tx.DateEpochMillis,
		"createdAt":       tx.CreatedAt,
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	}
	return 0
}
