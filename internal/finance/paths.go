package finance

// Per-user collection paths. Documents are keyed by store-assigned id.
func categoriesPath(uid string) string   { return "users/" + uid + "/categories" }
func transactionsPath(uid string) string { return "users/" + uid + "/transactions" }
