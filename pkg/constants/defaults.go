package constants

// CustomSuffix is appended to every derived custom API name
const CustomSuffix = "__c"

// DefaultObjectIcon is assigned to custom objects created without an icon
const DefaultObjectIcon = "Box"

// Name field defaults, created atomically with every custom object
const (
	NameFieldAPIName = "Name"
	NameFieldLabel   = "Name"
)

// Start element defaults, created atomically with every flow definition
const (
	StartElementLabel     = "Start"
	StartElementPositionX = 400
	StartElementPositionY = 50
)

// HTTP conventions shared by the REST layer
const (
	HeaderAuthorization = "Authorization"
	ContextKeyUser      = "user"
	ResponseError       = "error"
	FieldMessage        = "message"
)
