package customvalidator

import (
	"github.com/go-playground/validator/v10"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/entities"
)

// RegisterCustomValidations регистрирует доменные правила для тегов validate.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("request_type", isRequestType); err != nil {
		return err
	}
	if err := v.RegisterValidation("request_category", isRequestCategory); err != nil {
		return err
	}
	if err := v.RegisterValidation("actor_role", isActorRole); err != nil {
		return err
	}
	return nil
}

func isRequestType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case entities.RequestTypeCorrective, entities.RequestTypePreventive:
		return true
	}
	return false
}

func isRequestCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case entities.CategoryEquipment, entities.CategoryWorkCenter:
		return true
	}
	return false
}

func isActorRole(fl validator.FieldLevel) bool {
	return authz.ParseRole(fl.Field().String()) != authz.RoleUnknown
}
