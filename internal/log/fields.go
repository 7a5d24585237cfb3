package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldSender    = "sender"
	FieldAccountID = "account_id"
	FieldCommand   = "command"
	FieldAmount    = "amount"
	FieldBalance   = "balance"
	FieldDays      = "days"
	FieldInvitee   = "invitee"
	FieldAttempt   = "attempt"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldBackend   = "backend"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentBot     = "bot"
	ComponentLedger  = "ledger"
	ComponentInvites = "invites"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpDelete   = "delete"
	OpResolve  = "resolve"
	OpRollover = "rollover"
	OpDispatch = "dispatch"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
