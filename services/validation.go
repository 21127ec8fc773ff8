package services

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	phoneFormatMessage = "Phone number must be in the format: '+1234567890' or '123-456-7890'"
	maxPriceDigits     = 10
	priceDecimalPlaces = 2
)

var (
	phoneInternational = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	phoneLocal         = regexp.MustCompile(`^\d{3}[-.]?\d{3}[-.]?\d{4}$`)
	minPrice           = decimal.RequireFromString("0.01")
)

// CustomerInput is the raw payload for creating a customer.
type CustomerInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,max=254,email"`
	Phone string `json:"phone" validate:"omitempty,max=20,phone"`
}

// ProductInput is the raw payload for creating a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"max_digits,decimal_places,min_price"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// InputValidator checks payloads and renders failures as "field: message".
type InputValidator struct {
	validate *validator.Validate
}

func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		return phoneInternational.MatchString(phone) || phoneLocal.MatchString(phone)
	})
	_ = v.RegisterValidation("min_price", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.GreaterThanOrEqual(minPrice)
	})
	_ = v.RegisterValidation("decimal_places", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.Equal(d.Round(priceDecimalPlaces))
	})
	_ = v.RegisterValidation("max_digits", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		whole := d.Abs().Truncate(0).String()
		return len(strings.TrimLeft(whole, "0")) <= maxPriceDigits-priceDecimalPlaces
	})
	return &InputValidator{validate: v}
}

// FieldError is one failed constraint on one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string { return e.Field + ": " + e.Message }

// FieldErrors keeps declaration order of the input struct.
type FieldErrors []FieldError

func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (fe FieldErrors) Strings() []string {
	out := make([]string, len(fe))
	for i, e := range fe {
		out[i] = e.String()
	}
	return out
}

// Customer normalizes in and returns its field errors.
func (iv *InputValidator) Customer(in CustomerInput) (CustomerInput, FieldErrors) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in, iv.fieldErrors(iv.validate.Struct(in))
}

// Product normalizes in and returns its field errors.
func (iv *InputValidator) Product(in ProductInput) (ProductInput, FieldErrors) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in, iv.fieldErrors(iv.validate.Struct(in))
}

func (iv *InputValidator) fieldErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Field: "__all__", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field cannot be blank."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "phone":
		return phoneFormatMessage
	case "min_price":
		return "Ensure this value is greater than or equal to 0.01."
	case "decimal_places":
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", priceDecimalPlaces)
	case "max_digits":
		return fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxPriceDigits-priceDecimalPlaces)
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
