package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldKind          = "kind"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldAction        = "action"
	FieldBackend       = "backend"
	FieldCount         = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStore   = "store"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpImport   = "import"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
