package order

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCOD    PaymentMethod = "cod"
	PaymentMobile PaymentMethod = "mobile"
)

const DefaultCountry = "Bangladesh"

type ShippingInfo struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code" validate:"required"`
	Country  string `json:"country"`
}

// CardInfo is only checked when paying by card.
type CardInfo struct {
	Number     string `json:"card_number" validate:"required,len=16,numeric"`
	Name       string `json:"card_name" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required,mmyy"`
	CVV        string `json:"cvv" validate:"required,len=3,numeric"`
}

type Form struct {
	Shipping       ShippingInfo   `json:"shipping"`
	ShippingMethod ShippingMethod `json:"shipping_method" validate:"oneof=standard express"`
	PaymentMethod  PaymentMethod  `json:"payment_method" validate:"oneof=card cod mobile"`
	Card           CardInfo       `json:"card" validate:"-"`
	AgreedToTerms  bool           `json:"agreed_to_terms" validate:"required"`
}

// ValidationError maps a field name to the message shown next to it.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

var fieldMessages = map[string]string{
	"full_name.required":       "Full name is required",
	"email.required":           "Email is required",
	"email.email":              "Invalid email format",
	"phone.required":           "Phone is required",
	"address.required":         "Address is required",
	"city.required":            "City is required",
	"zip_code.required":        "ZIP code is required",
	"card_number.required":     "Card number is required",
	"card_number.len":          "Card number must be 16 digits",
	"card_number.numeric":      "Card number must be 16 digits",
	"card_name.required":       "Cardholder name is required",
	"expiry_date.required":     "Expiry date is required",
	"expiry_date.mmyy":         "Invalid format (MM/YY)",
	"cvv.required":             "CVV is required",
	"cvv.len":                  "CVV must be 3 digits",
	"cvv.numeric":              "CVV must be 3 digits",
	"agreed_to_terms.required": "You must agree to terms & conditions",
	"shipping_method.oneof":    "Unknown shipping method",
	"payment_method.oneof":     "Unknown payment method",
}

// terms errors are reported under "terms"
var fieldAliases = map[string]string{
	"agreed_to_terms": "terms",
}

var expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)

// FormValidator checks checkout forms.
type FormValidator struct {
	validate *validator.Validate
}

func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mmyy", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	return &FormValidator{validate: v}
}

// Normalize trims text fields, strips spaces from the card number and fills
// in defaults.
func (f *Form) Normalize() {
	s := &f.Shipping
	for _, p := range []*string{&s.FullName, &s.Email, &s.Phone, &s.Address, &s.City, &s.State, &s.ZipCode, &s.Country} {
		*p = strings.TrimSpace(*p)
	}
	if s.Country == "" {
		s.Country = DefaultCountry
	}
	if f.ShippingMethod == "" {
		f.ShippingMethod = ShippingStandard
	}
	if f.PaymentMethod == "" {
		f.PaymentMethod = PaymentCard
	}
	c := &f.Card
	c.Number = strings.ReplaceAll(c.Number, " ", "")
	c.Name = strings.TrimSpace(c.Name)
	c.ExpiryDate = strings.TrimSpace(c.ExpiryDate)
	c.CVV = strings.TrimSpace(c.CVV)
}

// Validate returns a ValidationError listing every failing field, or nil.
// The form should be normalized first.
func (v *FormValidator) Validate(f Form) error {
	fieldErrs := ValidationError{}
	if err := v.collect(f, fieldErrs); err != nil {
		return err
	}
	if f.PaymentMethod == PaymentCard {
		if err := v.collect(f.Card, fieldErrs); err != nil {
			return err
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

func (v *FormValidator) collect(s any, into ValidationError) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		field := fe.Field()
		key := field
		if alias, ok := fieldAliases[field]; ok {
			key = alias
		}
		if _, seen := into[key]; seen {
			continue
		}
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		into[key] = msg
	}
	return nil
}
