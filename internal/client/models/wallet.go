package models

// Account is an address the wallet can sign for.
type Account struct {
	Address string
	Label   string
}

// Receipt is what the wallet reports after executing a transaction.
type Receipt struct {
	Digest string
	// Status is "success" or "failure" as reported in the effects.
	Status  string
	Error   string
	Created []string
}

// Succeeded reports a successful execution.
func (r *Receipt) Succeeded() bool { return r.Status == "success" }
