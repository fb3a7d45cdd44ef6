package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldProfile    = "profile"
	FieldMonth      = "month"
	FieldCategory   = "category"
	FieldExpenseID  = "expense_id"
	FieldOffline    = "offline"
)

// Components defines the standard component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentDispatcher = "dispatcher"
	ComponentMirror     = "mirror"
	ComponentRemote     = "remote"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentStore      = "store"
)
