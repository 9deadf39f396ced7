package settlement

import (
	"encoding/json"
	"errors"
	"fmt"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidMessage - сообщение нельзя обработать ни при каком повторе
var ErrInvalidMessage = errors.New("invalid settlement message")

var validate = validator.New()

// DecodeIntent разбирает сообщение очереди и проверяет его
func DecodeIntent(payload []byte) (*models.TransferIntent, error) {
	var intent models.TransferIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := ValidateIntent(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ValidateIntent проверяет обязательные поля и сумму
func ValidateIntent(intent *models.TransferIntent) error {
	if intent == nil {
		return fmt.Errorf("%w: empty message", ErrInvalidMessage)
	}
	if err := validate.Struct(intent); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	amount, err := money.FromDecimal(intent.Amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidMessage)
	}
	return nil
}
