package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found or is outside the
// principal's scope.
type ErrNotFound struct {
	Resource string
	ID       string
	Message  string
}

func (e *ErrNotFound) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrForbidden indicates the principal lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Unauthorized"
}

// ErrConflict indicates a unique field is already taken (e.g. duplicate CNPJ).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrRateLimited indicates the client exceeded its request budget.
type ErrRateLimited struct {
	RetryAfterSeconds int
}

func (e *ErrRateLimited) Error() string {
	return "Too many requests"
}

// ============================================================
// Storage constraint mapping
// ============================================================

// Unique and foreign key constraint names shared by every relational backend.
const (
	ConstraintUserUsername     = "system_user_username_key"
	ConstraintUserSecret       = "system_user_secret_key"
	ConstraintContatoEmail     = "contato_email_responsavel_key"
	ConstraintCompanyCNPJ      = "company_cnpj_key"
	ConstraintCompanyContatoFK = "company_contato_id_fkey"
)

// Messages shown to clients for duplicate and missing records.
const (
	MsgContatoExists     = "Contato já existe"
	MsgContatoNotFound   = "Contato não existe"
	MsgCompanyExists     = "Company já existe"
	MsgCompanyNotFound   = "Company não existe"
	MsgProcessoNotFound  = "Processo não existe"
	MsgProdutoNotFound   = "Produto não encontrado"
	MsgUserExists        = "Usuário já existe"
	MsgUserNotFound      = "Usuário não existe"
	MsgInvalidCredential = "Invalid Credentials"
)

// ConflictFromConstraint maps a violated unique constraint to a client error.
// The match is by substring so backends that only expose the raw message work.
func ConflictFromConstraint(constraint string) *ErrConflict {
	switch {
	case strings.Contains(constraint, ConstraintContatoEmail):
		return &ErrConflict{Message: MsgContatoExists}
	case strings.Contains(constraint, ConstraintCompanyCNPJ):
		return &ErrConflict{Message: MsgCompanyExists}
	case strings.Contains(constraint, ConstraintUserUsername),
		strings.Contains(constraint, ConstraintUserSecret):
		return &ErrConflict{Message: MsgUserExists}
	default:
		return &ErrConflict{Message: "registro já existe"}
	}
}

// NotFoundFromConstraint maps a violated foreign key to a client error.
func NotFoundFromConstraint(constraint string) *ErrNotFound {
	if strings.Contains(constraint, ConstraintCompanyContatoFK) {
		return &ErrNotFound{Resource: "contato", Message: MsgContatoNotFound}
	}
	return &ErrNotFound{Resource: "referência", Message: "registro referenciado não existe"}
}
