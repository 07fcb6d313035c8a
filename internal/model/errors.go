package model

import "errors"

// Виды ошибок, возвращаемых бизнес-логикой. Детали добавляются через fmt.Errorf("%w: ...").
var (
	// ErrNotFound возвращается, если запрошенная сущность не существует.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied возвращается, если политика доступа отказала.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTransition возвращается при недопустимой смене статуса.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrMissingRequiredField возвращается, если для перехода не хватает обязательного поля.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrValidation возвращается при некорректных входных данных.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized возвращается для неизвестного или деактивированного пользователя.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict возвращается при нарушении уникальности или устаревшем состоянии записи.
	ErrConflict = errors.New("conflict")
)
