package payments

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	EventType         string
	ProviderReference string
	RawPayload        string
	SignatureValid    bool
}

// ResolvedAccount is the destination of an inbound payment: the active
// virtual account plus the student and wallet behind it.
type ResolvedAccount struct {
	VirtualAccountID uint
	StudentID        uint
	WalletID         uint
	Currency         string
}

// ApplyInput describes one balance-changing credit keyed by the provider
// reference.
type ApplyInput struct {
	ProviderReference string
	StudentID         uint
	WalletID          uint
	VirtualAccountID  uint
	Amount            int64
	Category          string
	Channel           string
	RawPayload        string
}

// ApplyResult carries the ledger row and whether it already existed.
type ApplyResult struct {
	TransactionID uint
	Reference     string
	Duplicate     bool
}

// DeliveryResult is the outcome of one inbound provider delivery.
// Exactly one of Applied, Duplicate, Ignored is set on success.
type DeliveryResult struct {
	EventID   uint
	Applied   bool
	Duplicate bool
	Ignored   bool
	Apply     *ApplyResult
}
