package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Structural verdicts on a file are not errors and
// carry their own STR codes; this table covers everything around them.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large"
//	FILE002 - Empty file
//	          Patterns: "empty file"
//	FILE003 - No file selected
//	          Patterns: "no file provided"
//	FILE004 - Unreadable upload (multipart or I/O failure)
//	          Patterns: "multipart", "unexpected eof"
//
// # Column Configuration Errors (VAL001-VAL099)
//
//	VAL001 - Invalid column configuration
//	         Patterns: "invalid column config"
//	VAL002 - Unknown data type
//	         Patterns: "unknown data kind"
//	VAL003 - Unsupported report format
//	         Patterns: "unsupported report format"
//
// # Project Errors (PRJ001-PRJ099)
//
//	PRJ001 - Unknown project
//	         Patterns: "unknown project"
//	PRJ002 - No project selected
//	         Patterns: "no project provided"
//
// # Validation Run Errors (VLD001-VLD099)
//
//	VLD001 - System busy
//	         Patterns: "too many validations"
//	VLD002 - Request cancelled
//	         Patterns: "context canceled"
//	VLD003 - Validation timed out
//	         Patterns: "context deadline exceeded"
//	VLD004 - Run not found
//	         Patterns: "run not found"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Support staff should check the logs for
// the original technical error, keyed by request_id.
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "El archivo supera el tamaño máximo permitido",
			Action:  "Dividí el archivo en partes más chicas y validalas por separado",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "El archivo está vacío",
			Action:  "Subí un CSV con encabezado y registros",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No se seleccionó ningún archivo",
			Action:  "Elegí un archivo CSV para validar",
			Code:    "FILE003",
		},
	},
	{
		pattern: "multipart",
		msg: UserMessage{
			Message: "No se pudo leer el archivo enviado",
			Action:  "Volvé a subir el archivo",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unexpected eof",
		msg: UserMessage{
			Message: "No se pudo leer el archivo enviado",
			Action:  "Volvé a subir el archivo",
			Code:    "FILE004",
		},
	},

	// Column configuration errors
	{
		pattern: "invalid column config",
		msg: UserMessage{
			Message: "La configuración de columnas no es válida",
			Action:  "Revisá el tipo y la obligatoriedad elegidos para cada columna",
			Code:    "VAL001",
		},
	},
	{
		pattern: "unknown data kind",
		msg: UserMessage{
			Message: "Tipo de dato desconocido",
			Action:  "Usá Texto, Entero, Decimal, Booleano, Fecha (AAAA-MM-DD) o Email (@)",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unsupported report format",
		msg: UserMessage{
			Message: "Formato de reporte no soportado",
			Action:  "Pedí el reporte como csv, xlsx o json",
			Code:    "VAL003",
		},
	},

	// Project errors
	{
		pattern: "unknown project",
		msg: UserMessage{
			Message: "El proyecto destino no existe",
			Action:  "Elegí uno de los proyectos disponibles",
			Code:    "PRJ001",
		},
	},
	{
		pattern: "no project provided",
		msg: UserMessage{
			Message: "No se seleccionó un proyecto destino",
			Action:  "Elegí el proyecto al que se importará el archivo",
			Code:    "PRJ002",
		},
	},

	// Validation run errors
	{
		pattern: "too many validations",
		msg: UserMessage{
			Message: "Hay demasiadas validaciones en curso",
			Action:  "Esperá unos segundos y volvé a intentar",
			Code:    "VLD001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "La validación fue cancelada",
			Action:  "Volvé a intentar",
			Code:    "VLD002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "La validación tardó demasiado",
			Action:  "Probá con un archivo más chico o volvé a intentar más tarde",
			Code:    "VLD003",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "No se encontró la validación solicitada",
			Action:  "Verificá el identificador de la ejecución",
			Code:    "VLD004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Demasiadas solicitudes",
			Action:  "Esperá un momento antes de volver a intentar",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocurrió un error inesperado",
	Action:  "Volvé a intentar o contactá a soporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with the message
// shown to users.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
